package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// mysqlErrDuplicateEntry is MariaDB's ER_DUP_ENTRY.
const mysqlErrDuplicateEntry = 1062

// UserRepository defines the data access contract for user operations.
// Implementations exist for MariaDB (this file) and MongoDB
// (repository_mongo.go).
type UserRepository interface {
	// Create persists a new user and assigns user.ID. Returns a 409 AppError
	// if the email is already registered.
	Create(ctx context.Context, user *User) error

	// FindByID and FindByEmail return a 404 AppError when no user matches.
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	EmailExists(ctx context.Context, email string) (bool, error)

	// SetToken stores the user's session token; nil clears it.
	SetToken(ctx context.Context, id string, token *string) error

	UpdateSubscription(ctx context.Context, id string, sub Subscription) error
}

// userRepository implements UserRepository with hand-written MariaDB queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, subscription, token, created_at`

// Create inserts a new user row into the users table.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	id := uuid.NewString()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO users (id, email, password_hash, subscription, token, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		id,
		user.Email,
		user.PasswordHash,
		string(user.Subscription),
		user.Token,
		user.CreatedAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
			return apperror.NewConflict(msgEmailInUse)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	user.ID = id
	return nil
}

// FindByID retrieves a user by their UUID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by their email address.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return user, nil
}

// EmailExists returns true if a user with the given email already exists.
// Used during signup to check for duplicates before hashing the password.
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

// SetToken overwrites the stored session token.
func (r *userRepository) SetToken(ctx context.Context, id string, token *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET token = ? WHERE id = ?`, token, id)
	if err != nil {
		return fmt.Errorf("updating token: %w", err)
	}
	return requireAffected(result)
}

// UpdateSubscription sets the user's plan tier.
func (r *userRepository) UpdateSubscription(ctx context.Context, id string, sub Subscription) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET subscription = ? WHERE id = ?`, string(sub), id)
	if err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}
	return requireAffected(result)
}

// scanUser reads one users row. sql.ErrNoRows becomes a 404 AppError, which
// callers may wrap with %w.
func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	var sub string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&sub,
		&user.Token,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	user.Subscription = Subscription(sub)
	return user, nil
}

// requireAffected maps a zero-row UPDATE to a 404. The DSN enables
// CLIENT_FOUND_ROWS, so rows matched but left unchanged still count.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}
