package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// ContactRepository defines the data access contract for contacts.
// Implementations exist for MariaDB (this file) and MongoDB
// (repository_mongo.go). Ownership is enforced by the service, not here.
type ContactRepository interface {
	// List returns one page of owner's contacts in insertion order. An empty
	// page is an empty (non-nil) slice.
	List(ctx context.Context, owner string, opts ListOptions) ([]Contact, error)

	// FindByID returns a 404 AppError when no contact has the id.
	FindByID(ctx context.Context, id string) (*Contact, error)

	// Create persists a new contact and assigns contact.ID.
	Create(ctx context.Context, contact *Contact) error

	// Update applies the non-nil fields of upd. Returns a 404 AppError when
	// the contact no longer exists.
	Update(ctx context.Context, id string, upd Update) error

	// Delete removes the contact. Returns a 404 AppError when nothing was
	// deleted.
	Delete(ctx context.Context, id string) error
}

// contactRepository implements ContactRepository with MariaDB queries.
type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new contact repository backed by the given
// DB pool.
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `id, owner_id, name, email, phone, favorite, created_at`

// List fetches a page of the owner's contacts, optionally filtered by
// favorite.
func (r *contactRepository) List(ctx context.Context, owner string, opts ListOptions) ([]Contact, error) {
	where := "WHERE owner_id = ?"
	args := []any{owner}

	if opts.Favorite != nil {
		where += " AND favorite = ?"
		args = append(args, *opts.Favorite)
	}

	query := fmt.Sprintf(`SELECT %s FROM contacts %s
	          ORDER BY created_at, id
	          LIMIT ? OFFSET ?`, contactColumns, where)

	args = append(args, opts.Limit, opts.Offset())
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// FindByID retrieves a contact by its UUID.
func (r *contactRepository) FindByID(ctx context.Context, id string) (*Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`
	c, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying contact by id: %w", err)
	}
	return c, nil
}

// Create inserts a new contact row.
func (r *contactRepository) Create(ctx context.Context, contact *Contact) error {
	id := uuid.NewString()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO contacts (id, owner_id, name, email, phone, favorite, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		id,
		contact.Owner,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Favorite,
		contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting contact: %w", err)
	}
	contact.ID = id
	return nil
}

// Update builds a SET clause from the fields present in upd.
func (r *contactRepository) Update(ctx context.Context, id string, upd Update) error {
	var (
		sets []string
		args []any
	)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *upd.Phone)
	}
	if upd.Favorite != nil {
		sets = append(sets, "favorite = ?")
		args = append(args, *upd.Favorite)
	}
	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE contacts SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating contact: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a contact by id.
func (r *contactRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}
	return requireAffected(result)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*Contact, error) {
	c := &Contact{}
	err := row.Scan(
		&c.ID,
		&c.Owner,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Favorite,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// requireAffected maps a zero-row write to a 404. The DSN enables
// CLIENT_FOUND_ROWS, so an UPDATE that matches but changes nothing still
// counts as one row.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("contact not found")
	}
	return nil
}
