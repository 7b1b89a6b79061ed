// Package contacts manages each user's address book: listing with
// pagination and a favorite filter, single-contact reads, create, partial
// update, delete, and the favorite toggle. Every operation is scoped to the
// authenticated user; a contact owned by someone else is reported exactly
// like one that does not exist.
package contacts

import (
	"math"
	"time"

	"github.com/keyxmakerx/contactbook/internal/sanitize"
)

// Contact is a single address-book entry. Owner is fixed at creation.
type Contact struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Favorite  bool      `json:"favorite"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"-"`
}

// belongsTo is the single ownership predicate. Every id-addressed operation
// goes through it before reading or writing.
func belongsTo(c *Contact, actor string) bool {
	return c != nil && actor != "" && c.Owner == actor
}

// Update carries the fields of a partial update. Nil means "leave as is".
// Owner and ID are deliberately absent.
type Update struct {
	Name     *string
	Email    *string
	Phone    *string
	Favorite *bool
}

// Empty reports whether the update would change nothing.
func (u Update) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.Favorite == nil
}

// apply copies the set fields onto c.
func (u Update) apply(c *Contact) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Favorite != nil {
		c.Favorite = *u.Favorite
	}
}

// --- Pagination ---

// Pagination bounds for list queries.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListOptions holds pagination and filter parameters for list queries.
type ListOptions struct {
	Page  int
	Limit int

	// Favorite, when set, restricts the list to contacts whose favorite flag
	// equals it.
	Favorite *bool
}

// DefaultListOptions returns the first page with the default page size.
func DefaultListOptions() ListOptions {
	return ListOptions{Page: DefaultPage, Limit: DefaultLimit}
}

// normalize replaces out-of-range values with defaults and caps Limit.
func (o ListOptions) normalize() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	// Keep (Page-1)*Limit representable; such a page is simply empty.
	if maxPage := math.MaxInt / o.Limit; o.Page > maxPage {
		o.Page = maxPage
	}
	return o
}

// Offset returns the number of records to skip for the current page. It is
// never negative.
func (o ListOptions) Offset() int {
	o = o.normalize()
	return (o.Page - 1) * o.Limit
}

// --- Request DTOs (bound from HTTP requests) ---

// CreateRequest is the body of POST /contacts.
type CreateRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255,email"`
	Phone    string `json:"phone" validate:"required,max=64"`
	Favorite bool   `json:"favorite"`
}

// clean strips markup from the free-text fields.
func (r *CreateRequest) clean() {
	r.Name = sanitize.Text(r.Name)
	r.Phone = sanitize.Text(r.Phone)
	r.Email = sanitize.Text(r.Email)
}

// UpdateRequest is the body of PUT /contacts/:id. Only the fields present
// in the body are changed.
type UpdateRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=255"`
	Email    *string `json:"email" validate:"omitnil,max=255,email"`
	Phone    *string `json:"phone" validate:"omitnil,max=64"`
	Favorite *bool   `json:"favorite"`
}

// clean strips markup from the free-text fields that are present.
func (r *UpdateRequest) clean() {
	r.Name = sanitize.TextPtr(r.Name)
	r.Phone = sanitize.TextPtr(r.Phone)
	r.Email = sanitize.TextPtr(r.Email)
}

// toUpdate converts the request into a store-level Update.
func (r UpdateRequest) toUpdate() Update {
	return Update{Name: r.Name, Email: r.Email, Phone: r.Phone, Favorite: r.Favorite}
}

// FavoriteRequest is the body of PATCH /contacts/:id/favorite.
type FavoriteRequest struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

// DeleteResponse is returned after a successful delete.
type DeleteResponse struct {
	Message string `json:"message"`
}
