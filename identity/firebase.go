package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// Firebase implements Provider on Firebase Authentication. Account creation
// and profile updates go through the Admin SDK; password sign-in goes
// through the Identity Toolkit REST endpoint, which is the only surface that
// verifies passwords.
type Firebase struct {
	auth   *firebaseauth.Client
	apiKey string
	http   *http.Client

	mu      sync.Mutex
	current *User
}

// NewFirebase initializes the provider. apiKey is the web API key used by
// the sign-in endpoint. With an empty credentialsFile Application Default
// Credentials are used.
func NewFirebase(ctx context.Context, projectID, credentialsFile, apiKey string) (*Firebase, error) {
	conf := &firebase.Config{ProjectID: projectID}
	var (
		app *firebase.App
		err error
	)
	if credentialsFile != "" {
		app, err = firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsFile))
	} else {
		app, err = firebase.NewApp(ctx, conf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	log.Printf("Firebase auth initialized (project: %s)", projectID)
	return &Firebase{auth: authClient, apiKey: apiKey, http: http.DefaultClient}, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (*User, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInEndpoint+"?key="+f.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign in request failed: %w", err)
	}
	defer resp.Body.Close()

	var out signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode sign in response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return nil, fmt.Errorf("sign in failed: %s", out.Error.Message)
		}
		return nil, fmt.Errorf("sign in failed: status %d", resp.StatusCode)
	}

	user := &User{UID: out.LocalID, Email: out.Email, DisplayName: out.DisplayName}
	f.setCurrent(user)
	return user, nil
}

func (f *Firebase) CreateUser(ctx context.Context, email, password string) (*User, error) {
	params := (&firebaseauth.UserToCreate{}).Email(email).Password(password)
	record, err := f.auth.CreateUser(ctx, params)
	if err != nil {
		return nil, err
	}
	user := &User{UID: record.UID, Email: record.Email, DisplayName: record.DisplayName}
	f.setCurrent(user)
	return user, nil
}

func (f *Firebase) UpdateDisplayName(ctx context.Context, uid, name string) error {
	params := (&firebaseauth.UserToUpdate{}).DisplayName(name)
	if _, err := f.auth.UpdateUser(ctx, uid, params); err != nil {
		return err
	}
	f.mu.Lock()
	if f.current != nil && f.current.UID == uid {
		f.current.DisplayName = name
	}
	f.mu.Unlock()
	return nil
}

func (f *Firebase) SignOut() {
	f.setCurrent(nil)
}

func (f *Firebase) CurrentUser() *User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil
	}
	u := *f.current
	return &u
}

func (f *Firebase) setCurrent(u *User) {
	f.mu.Lock()
	f.current = u
	f.mu.Unlock()
}
