// Package identity manages email/password accounts, session tokens,
// and the signed-in state the rest of the client observes.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials covers wrong password and unknown email;
	// callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNoSession is returned by operations that require a signed-in
	// user when none is present.
	ErrNoSession = errors.New("not signed in")

	// ErrNotFound is returned when no account exists for the given id.
	ErrNotFound = errors.New("account not found")

	// ErrNoUploader is returned when an avatar change is requested but
	// no blob backend was wired in.
	ErrNoUploader = errors.New("no upload backend configured")
)

// Provider is the identity capability the adapter runs against. All
// credential checks happen inside the provider; the adapter never sees
// a password hash.
type Provider interface {
	CreateUser(ctx context.Context, email, password string) (userID string, err error)
	Authenticate(ctx context.Context, email, password string) (userID string, err error)
	Reauthenticate(ctx context.Context, userID, currentPassword string) error
	UpdateEmail(ctx context.Context, userID, newEmail string) error
	UpdateDisplayName(ctx context.Context, userID, name string) error
}

// User is the signed-in identity as seen by observers. A nil *User
// means signed out.
type User struct {
	ID    string
	Email string
}

// Session is the result of a successful sign-in.
type Session struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}
