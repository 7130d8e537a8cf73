package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"nevilwatch/adapters"
	"nevilwatch/profile"
	"nevilwatch/utils"
	"nevilwatch/validate"
)

// UserController handles authentication and profile requests. It also owns
// the user-scoped subscription lifecycle: the cart and payment adapters
// attach their backend listeners once a session exists and detach on
// sign-out.
type UserController struct {
	Session *adapters.Session
	Cache   *profile.Cache
	Cart    *adapters.Cart
	Payment *adapters.Payment
}

// NewUserController creates a new UserController
func NewUserController(session *adapters.Session, cache *profile.Cache, cart *adapters.Cart, payment *adapters.Payment) *UserController {
	return &UserController{Session: session, Cache: cache, Cart: cart, Payment: payment}
}

// startUserAdapters attaches the signed-in user's cart and payment
// subscriptions. The subscriptions outlive the request, so they run on the
// background context until SignOut stops them.
func (uc *UserController) startUserAdapters() {
	// a failure is already published on the respective adapter state
	_ = uc.Cart.Start(context.Background())
	_ = uc.Payment.Start(context.Background())
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		ContactNumber   string `json:"contactNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	// The confirmation field is part of the registration form; API clients
	// that omit it skip the check.
	if body.ConfirmPassword != "" {
		if err := validate.ConfirmPassword(body.Password, body.ConfirmPassword); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	// Client-side validation happens before any provider call; rejected
	// input leaves the auth state untouched.
	if err := uc.Session.Register(r.Context(), body.Name, body.Email, body.Password, body.ContactNumber); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := uc.Session.State()
	if state.Phase == adapters.PhaseError {
		http.Error(w, state.Message, http.StatusBadRequest)
		return
	}

	uc.startUserAdapters()

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(state)
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	uc.Session.SignIn(r.Context(), creds.Email, creds.Password)

	state := uc.Session.State()
	if state.Phase != adapters.PhaseSuccess {
		http.Error(w, state.Message, http.StatusUnauthorized)
		return
	}

	uc.startUserAdapters()

	user := uc.Session.CurrentUser()
	token, err := utils.GenerateJWT(user.UID, user.Email)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"token":   token,
		"message": state.Message,
	})
}

// SignOut drops the active session, detaches the user-scoped subscriptions,
// and wipes the local profile cache
func (uc *UserController) SignOut(w http.ResponseWriter, r *http.Request) {
	uc.Cart.Stop()
	uc.Payment.Stop()
	uc.Session.SignOut()
	json.NewEncoder(w).Encode("Signed out")
}

// GetProfile returns the locally cached display profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := uc.Cache.Load()
	if err != nil {
		http.Error(w, "Error loading profile", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "No profile found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}
