package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/contactbook/internal/apperror"
	"github.com/keyxmakerx/contactbook/internal/plugins/auth"
	"github.com/keyxmakerx/contactbook/internal/plugins/contacts"
)

// memUsers is an in-memory auth.UserRepository for end-to-end tests.
type memUsers struct {
	mu    sync.Mutex
	users map[string]auth.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]auth.User)}
}

func (m *memUsers) Create(ctx context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.NewConflict("Email in use")
		}
	}
	user.ID = uuid.NewString()
	m.users[user.ID] = *user
	return nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NewNotFound("user not found")
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) SetToken(ctx context.Context, id string, token *string) error {
	return m.modify(id, func(u *auth.User) { u.Token = token })
}

func (m *memUsers) UpdateSubscription(ctx context.Context, id string, sub auth.Subscription) error {
	return m.modify(id, func(u *auth.User) { u.Subscription = sub })
}

func (m *memUsers) modify(id string, fn func(u *auth.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperror.NewNotFound("user not found")
	}
	fn(&u)
	m.users[id] = u
	return nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// memContacts is an in-memory contacts.ContactRepository for end-to-end
// tests. Insertion order is kept with a sequence number.
type memContacts struct {
	mu       sync.Mutex
	seq      int
	contacts map[string]memContact
}

type memContact struct {
	contacts.Contact
	seq int
}

func newMemContacts() *memContacts {
	return &memContacts{contacts: make(map[string]memContact)}
}

func (m *memContacts) List(ctx context.Context, owner string, opts contacts.ListOptions) ([]contacts.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []memContact
	for _, c := range m.contacts {
		if c.Owner != owner {
			continue
		}
		if opts.Favorite != nil && c.Favorite != *opts.Favorite {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	out := []contacts.Contact{}
	for i := opts.Offset(); i < len(matched) && len(out) < opts.Limit; i++ {
		out = append(out, matched[i].Contact)
	}
	return out, nil
}

func (m *memContacts) FindByID(ctx context.Context, id string) (*contacts.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, apperror.NewNotFound("contact not found")
	}
	out := c.Contact
	return &out, nil
}

func (m *memContacts) Create(ctx context.Context, contact *contacts.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	contact.ID = uuid.NewString()
	contact.CreatedAt = time.Now().UTC()
	m.contacts[contact.ID] = memContact{Contact: *contact, seq: m.seq}
	return nil
}

func (m *memContacts) Update(ctx context.Context, id string, upd contacts.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return apperror.NewNotFound("contact not found")
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.Phone != nil {
		c.Phone = *upd.Phone
	}
	if upd.Favorite != nil {
		c.Favorite = *upd.Favorite
	}
	m.contacts[id] = c
	return nil
}

func (m *memContacts) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return apperror.NewNotFound("contact not found")
	}
	delete(m.contacts, id)
	return nil
}

// hasPasswordField reports whether a JSON body leaks a password key.
func hasPasswordField(body string) bool {
	return strings.Contains(strings.ToLower(body), "password")
}
