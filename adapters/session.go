package adapters

import (
	"context"
	"fmt"
	"log"
	"strings"

	"nevilwatch/identity"
	"nevilwatch/profile"
	"nevilwatch/store"
	"nevilwatch/validate"
	"nevilwatch/view"
)

// AuthState is the published authentication state:
// Initial -> Loading -> {Success | Error}. SignOut resets to Initial
// unconditionally; a failure is terminal until the next explicit call.
type AuthState struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// WelcomeMailer sends the post-registration welcome email. Sending is
// best-effort; a failure never affects the auth state.
type WelcomeMailer interface {
	SendWelcomeEmail(toEmail, name string) error
}

// Session wraps sign-in, registration and sign-out against the identity
// provider. On success the display name and contact number are merged into
// the local profile cache for offline display.
type Session struct {
	provider identity.Provider
	store    store.Store
	cache    *profile.Cache
	mailer   WelcomeMailer
	state    *view.State[AuthState]
}

// NewSession builds a session adapter. mailer may be nil.
func NewSession(provider identity.Provider, s store.Store, cache *profile.Cache, mailer WelcomeMailer) *Session {
	return &Session{
		provider: provider,
		store:    s,
		cache:    cache,
		mailer:   mailer,
		state:    view.NewState(AuthState{Phase: PhaseInitial}),
	}
}

// State returns the latest published auth state.
func (s *Session) State() AuthState { return s.state.Current() }

// Watch registers a watcher on published state changes.
func (s *Session) Watch() (<-chan AuthState, func()) { return s.state.Watch() }

// IsSignedIn reports whether a session is active.
func (s *Session) IsSignedIn() bool { return s.provider.CurrentUser() != nil }

// CurrentUser returns the active session's user, or nil.
func (s *Session) CurrentUser() *identity.User { return s.provider.CurrentUser() }

// SignIn delegates the credential check to the identity provider, merges the
// denormalized profile record into the local cache, and publishes a welcome
// message. The display name falls back from the profile record to the
// provider name to the email's local part.
func (s *Session) SignIn(ctx context.Context, email, password string) {
	s.state.Publish(AuthState{Phase: PhaseLoading})

	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.state.Publish(AuthState{Phase: PhaseError, Message: err.Error()})
		return
	}

	name, contact := s.lookupProfile(ctx, user)
	if name == "" {
		name = user.DisplayName
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	if err := s.cache.Save(name, contact); err != nil {
		log.Printf("session: failed to cache profile: %v", err)
	}

	s.state.Publish(AuthState{Phase: PhaseSuccess, Message: fmt.Sprintf("Welcome back, %s!", name)})
}

// Register validates the input client-side before any network call: invalid
// fields leave the published state untouched. On success the account is
// created, the display name set, the profile record written, and the local
// cache updated.
func (s *Session) Register(ctx context.Context, name, email, password, contactNumber string) error {
	if err := validate.Registration(name, email, password, contactNumber); err != nil {
		return err
	}

	s.state.Publish(AuthState{Phase: PhaseLoading})

	user, err := s.provider.CreateUser(ctx, email, password)
	if err != nil {
		s.state.Publish(AuthState{Phase: PhaseError, Message: err.Error()})
		return nil
	}
	if err := s.provider.UpdateDisplayName(ctx, user.UID, name); err != nil {
		s.state.Publish(AuthState{Phase: PhaseError, Message: err.Error()})
		return nil
	}

	record := map[string]any{
		"name":          name,
		"email":         email,
		"contactNumber": contactNumber,
	}
	if err := s.store.Put(ctx, "users", user.UID, record); err != nil {
		s.state.Publish(AuthState{Phase: PhaseError, Message: err.Error()})
		return nil
	}

	if err := s.cache.Save(name, contactNumber); err != nil {
		log.Printf("session: failed to cache profile: %v", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(email, name); err != nil {
			log.Printf("session: failed to send welcome email: %v", err)
		}
	}

	s.state.Publish(AuthState{Phase: PhaseSuccess, Message: "Successfully registered!"})
	return nil
}

// SignOut drops the provider session, wipes the local profile cache, and
// resets the state to Initial.
func (s *Session) SignOut() {
	s.provider.SignOut()
	if err := s.cache.Clear(); err != nil {
		log.Printf("session: failed to clear profile cache: %v", err)
	}
	s.state.Publish(AuthState{Phase: PhaseInitial})
}

// lookupProfile fetches the denormalized profile record keyed by uid. An
// absent record is not an error; it just means falling back to the
// provider's display name.
func (s *Session) lookupProfile(ctx context.Context, user *identity.User) (name, contact string) {
	data, err := s.store.Get(ctx, "users", user.UID)
	if err != nil {
		if err != store.ErrNotFound {
			log.Printf("session: failed to fetch profile record: %v", err)
		}
		return "", ""
	}
	if v, ok := data["name"].(string); ok {
		name = v
	}
	if v, ok := data["contactNumber"].(string); ok {
		contact = v
	}
	return name, contact
}
