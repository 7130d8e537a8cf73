// Package identity wraps the external identity provider. One session is
// active per process, mirroring the single-user installation the adapters
// serve.
package identity

import "context"

// User is the provider's view of an account.
type User struct {
	UID         string
	Email       string
	DisplayName string
}

// Provider is the identity provider contract.
type Provider interface {
	// SignIn checks credentials and makes the user the current session.
	SignIn(ctx context.Context, email, password string) (*User, error)
	// CreateUser registers a new account and makes it the current session.
	CreateUser(ctx context.Context, email, password string) (*User, error)
	// UpdateDisplayName sets the display name on an existing account.
	UpdateDisplayName(ctx context.Context, uid, name string) error
	// SignOut drops the current session.
	SignOut()
	// CurrentUser returns the active session's user, or nil.
	CurrentUser() *User
}
