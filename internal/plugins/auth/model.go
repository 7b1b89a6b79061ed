// Package auth handles user accounts and bearer-token authentication for
// contactbook: signup, login, logout, current-user lookup, and subscription
// changes. It also exports RequireAuth, the middleware every protected route
// group sits behind.
//
// A user holds at most one live session: login stores the freshly issued
// token on the user record and RequireAuth only admits a request whose token
// both verifies cryptographically and equals that stored value. Logout clears
// the stored token, which revokes it immediately even though the JWT itself
// has not expired.
package auth

import (
	"time"
)

// Subscription is a user's plan tier.
type Subscription string

// Supported subscription tiers.
const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// Valid reports whether s is one of the supported tiers.
func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User is a registered account. The password hash and session token never
// leave the server; responses are built from Profile instead.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Subscription Subscription

	// Token is the single live session token, nil when logged out.
	Token *string

	CreatedAt time.Time
}

// HasToken reports whether token is this user's current session token.
func (u *User) HasToken(token string) bool {
	return u.Token != nil && tokensEqual(*u.Token, token)
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	return Profile{Email: u.Email, Subscription: u.Subscription}
}

// Profile is the public representation of a user.
type Profile struct {
	Email        string       `json:"email"`
	Subscription Subscription `json:"subscription"`
}

// --- Request DTOs (bound from HTTP requests) ---

// SignupRequest is the body of POST /users/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SubscriptionRequest is the body of PATCH /users/subscription.
type SubscriptionRequest struct {
	Subscription Subscription `json:"subscription" validate:"required,oneof=starter pro business"`
}

// --- Responses ---

// SignupResponse wraps the created user's profile.
type SignupResponse struct {
	User Profile `json:"user"`
}

// LoginResponse carries the issued token and the user's profile.
type LoginResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}
