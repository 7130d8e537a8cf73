package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Local implements Provider with bcrypt-hashed accounts held in memory. It
// backs offline/dev mode and the test suite; nothing persists across
// restarts.
type Local struct {
	mu       sync.Mutex
	accounts map[string]*localAccount // keyed by email
	current  *User
}

type localAccount struct {
	user User
	hash []byte
}

// NewLocal returns an empty local provider.
func NewLocal() *Local {
	return &Local{accounts: make(map[string]*localAccount)}
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[email]
	if !ok {
		return nil, errors.New("there is no user record corresponding to this identifier")
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, errors.New("the password is invalid")
	}
	u := acct.user
	l.current = &u
	out := u
	return &out, nil
}

func (l *Local) CreateUser(ctx context.Context, email, password string) (*User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.accounts[email]; exists {
		return nil, errors.New("the email address is already in use by another account")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := User{UID: uuid.New().String(), Email: email}
	l.accounts[email] = &localAccount{user: user, hash: hash}
	current := user
	l.current = &current
	out := user
	return &out, nil
}

func (l *Local) UpdateDisplayName(ctx context.Context, uid, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, acct := range l.accounts {
		if acct.user.UID == uid {
			acct.user.DisplayName = name
			if l.current != nil && l.current.UID == uid {
				l.current.DisplayName = name
			}
			return nil
		}
	}
	return errors.New("no user record found for the given identifier")
}

func (l *Local) SignOut() {
	l.mu.Lock()
	l.current = nil
	l.mu.Unlock()
}

func (l *Local) CurrentUser() *User {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil
	}
	u := *l.current
	return &u
}
