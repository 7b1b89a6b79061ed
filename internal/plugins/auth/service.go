package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// Client-facing messages. Unknown email and wrong password share one message
// so login cannot be used to probe which emails are registered.
const (
	msgEmailInUse         = "Email in use"
	msgInvalidCredentials = "Email or password is wrong"
	msgNotAuthorized      = "Not authorized"
)

// AuthService defines the business logic contract for accounts and sessions.
// Handlers and RequireAuth call these methods -- they never touch the
// repository directly.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)
	Logout(ctx context.Context, user *User) error

	// Authenticate resolves the user a bearer token belongs to. Any failure
	// to authenticate is a 401 AppError with the same message.
	Authenticate(ctx context.Context, token string) (*User, error)

	ChangeSubscription(ctx context.Context, user *User, sub Subscription) (*User, error)
}

// SignupInput is the validated input for creating a new user.
type SignupInput struct {
	Email    string
	Password string
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}

// authService implements AuthService with bcrypt hashing and JWT tokens
// whose single live value is stored on the user record.
type authService struct {
	repo   UserRepository
	hasher *PasswordHasher
	tokens *TokenIssuer
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, hasher *PasswordHasher, tokens *TokenIssuer) AuthService {
	return &authService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Signup creates a new account on the starter tier. A taken email is a 409;
// signing up twice never merges into the existing account.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*User, error) {
	email := normalizeEmail(input.Email)

	// Check before doing expensive hashing. The store's unique index still
	// catches a concurrent duplicate.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict(msgEmailInUse)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		Subscription: SubscriptionStarter,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if apperror.SafeCode(err) == 409 {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Login verifies the credentials, issues a new token, and stores it on the
// user, replacing (and thereby revoking) any previous session.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", nil, apperror.NewUnauthorized(msgInvalidCredentials)
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return "", nil, apperror.NewUnauthorized(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	// Concurrent logins race here; whichever write lands last wins.
	if err := s.repo.SetToken(ctx, user.ID, &token); err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("storing token: %w", err))
	}
	user.Token = &token

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return token, user, nil
}

// Logout clears the stored token. Clearing an already-empty token is a no-op
// in effect.
func (s *authService) Logout(ctx context.Context, user *User) error {
	if err := s.repo.SetToken(ctx, user.ID, nil); err != nil {
		return apperror.NewInternal(fmt.Errorf("clearing token: %w", err))
	}
	user.Token = nil

	slog.Info("user logged out", slog.String("user_id", user.ID))
	return nil
}

// Authenticate checks the token's signature and expiry, then re-reads the
// user and requires the token to equal the one stored on the record. The
// second check is what makes logout and re-login revoke older tokens.
func (s *authService) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperror.NewUnauthorized(msgNotAuthorized)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized(msgNotAuthorized)
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !user.HasToken(token) {
		return nil, apperror.NewUnauthorized(msgNotAuthorized)
	}
	return user, nil
}

// ChangeSubscription moves the user to another tier.
func (s *authService) ChangeSubscription(ctx context.Context, user *User, sub Subscription) (*User, error) {
	if !sub.Valid() {
		return nil, apperror.NewValidation(`"subscription" must be one of [starter, pro, business]`)
	}

	if err := s.repo.UpdateSubscription(ctx, user.ID, sub); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("updating subscription: %w", err))
	}
	user.Subscription = sub

	slog.Info("subscription changed",
		slog.String("user_id", user.ID),
		slog.String("subscription", string(sub)),
	)
	return user, nil
}

// normalizeEmail trims and lowercases an email so lookups are
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
