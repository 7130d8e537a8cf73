package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"nevilwatch/adapters"
	"nevilwatch/devicestatus"
	"nevilwatch/geo"
	"nevilwatch/identity"
	"nevilwatch/kvstore"
	"nevilwatch/middleware"
	"nevilwatch/models"
	"nevilwatch/profile"
	"nevilwatch/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()

	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	mem := store.NewMemory()
	provider := identity.NewLocal()
	cache := profile.NewCache(kv)

	session := adapters.NewSession(provider, mem, cache, nil)
	catalog := adapters.NewCatalog(mem, adapters.DefaultFeaturedBrand)
	cart := adapters.NewCart(mem, provider)
	payment := adapters.NewPayment(mem, provider)
	t.Cleanup(catalog.Stop)
	t.Cleanup(cart.Stop)
	t.Cleanup(payment.Stop)

	router := mux.NewRouter()
	registerTestRoutes(router,
		NewUserController(session, cache, cart, payment),
		NewCatalogController(catalog),
		NewCartController(cart, catalog),
		NewPaymentController(payment),
		NewShippingController(geo.NewClient("http://127.0.0.1:1", ""), []models.Country{{Code: "US", Name: "United States"}}),
		NewStatusController(devicestatus.NewMonitor(nil, nil, nil)),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, mem
}

func registerTestRoutes(router *mux.Router,
	user *UserController, catalog *CatalogController, cart *CartController,
	payment *PaymentController, shipping *ShippingController, status *StatusController) {
	router.HandleFunc("/register", user.Register).Methods("POST")
	router.HandleFunc("/login", user.Login).Methods("POST")
	router.HandleFunc("/categories", catalog.GetCategories).Methods("GET")
	router.HandleFunc("/status", status.GetStatus).Methods("GET")
	router.HandleFunc("/countries", shipping.GetCountries).Methods("GET")

	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/signout", user.SignOut).Methods("POST")
	protected.HandleFunc("/profile", user.GetProfile).Methods("GET")
	protected.HandleFunc("/cart", cart.GetCart).Methods("GET")
	protected.HandleFunc("/cart", cart.AddToCart).Methods("POST")
	protected.HandleFunc("/payments", payment.GetPaymentMethods).Methods("GET")
	protected.HandleFunc("/payments", payment.AddPaymentMethod).Methods("POST")
	protected.HandleFunc("/payments/{id}/default", payment.SetDefaultPaymentMethod).Methods("PUT")
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func authedRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// registerAndLogin creates an account through the router and returns a
// session token.
func registerAndLogin(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/register", map[string]string{
		"name": "Jane Doe", "email": "jane@example.com",
		"password": "Str0ng!pass", "contactNumber": "+12025550147",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/login", map[string]string{
		"email": "jane@example.com", "password": "Str0ng!pass",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out["token"])
	return out["token"]
}

// pollState re-requests an endpoint until cond holds on the decoded state;
// snapshots are delivered asynchronously after a mutation.
func pollState[T any](t *testing.T, srv *httptest.Server, path, token string, cond func(T) bool) T {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var last T
	for time.Now().Before(deadline) {
		resp := authedRequest(t, http.MethodGet, srv.URL+path, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&last))
		resp.Body.Close()
		if cond(last) {
			return last
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out polling %s, last: %+v", path, last)
	return last
}

type cartStateJSON struct {
	Phase string            `json:"phase"`
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
}

type paymentStateJSON struct {
	Phase   string                 `json:"phase"`
	Methods []models.PaymentMethod `json:"methods"`
}

func TestRegisterAndLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/register", map[string]string{
		"name": "Jane Doe", "email": "jane@example.com",
		"password": "Str0ng!pass", "contactNumber": "+12025550147",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/login", map[string]string{
		"email": "jane@example.com", "password": "Str0ng!pass",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out["token"])
	require.Equal(t, "Welcome back, Jane Doe!", out["message"])
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/register", map[string]string{
		"name": "Jane Doe", "email": "jane@example.com",
		"password": "weak", "contactNumber": "+12025550147",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterRejectsMismatchedConfirmation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/register", map[string]string{
		"name": "Jane Doe", "email": "jane@example.com",
		"password": "Str0ng!pass", "confirmPassword": "Str0ng!pas",
		"contactNumber": "+12025550147",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON(t, srv.URL+"/register", map[string]string{
		"name": "Jane Doe", "email": "jane@example.com",
		"password": "Str0ng!pass", "contactNumber": "+12025550147",
	}).Body.Close()

	resp := postJSON(t, srv.URL+"/login", map[string]string{
		"email": "jane@example.com", "password": "wrong password",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/profile")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteWithToken(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv)

	resp := authedRequest(t, http.MethodGet, srv.URL+"/profile", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p models.UserProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	require.Equal(t, "Jane Doe", p.Name)
}

func TestCartThroughRouter(t *testing.T) {
	srv, mem := newTestServer(t)
	require.NoError(t, mem.Put(context.Background(), "watches", "w1",
		map[string]any{"name": "Diver Pro", "brand": "Nevil sport", "category": "sport", "price": 449.0}))

	token := registerAndLogin(t, srv)

	// the sign-in attached the cart subscription, so the empty cart settles
	pollState(t, srv, "/cart", token, func(s cartStateJSON) bool { return s.Phase == "success" })

	resp := authedRequest(t, http.MethodPost, srv.URL+"/cart", token, map[string]string{"watchId": "w1"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state := pollState(t, srv, "/cart", token, func(s cartStateJSON) bool { return len(s.Items) == 1 })
	require.Equal(t, "success", state.Phase)
	require.Equal(t, "w1", state.Items[0].WatchID)
	require.Equal(t, 1, state.Items[0].Quantity)
	require.Equal(t, 449.0, state.Total)
}

func TestPaymentDefaultThroughRouter(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv)

	for _, card := range []map[string]string{
		{"cardNumber": "4242424242424242", "cardHolderName": "Jane Doe", "expiryDate": "12/27", "cardType": "visa"},
		{"cardNumber": "5500005555555559", "cardHolderName": "Jane Doe", "expiryDate": "03/28", "cardType": "mastercard"},
	} {
		resp := authedRequest(t, http.MethodPost, srv.URL+"/payments", token, card)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	state := pollState(t, srv, "/payments", token, func(s paymentStateJSON) bool { return len(s.Methods) == 2 })
	for _, m := range state.Methods {
		require.False(t, m.IsDefault)
	}

	target := state.Methods[1].ID
	resp := authedRequest(t, http.MethodPut, srv.URL+"/payments/"+target+"/default", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state = pollState(t, srv, "/payments", token, func(s paymentStateJSON) bool {
		defaults := 0
		for _, m := range s.Methods {
			if m.IsDefault {
				defaults++
			}
		}
		return defaults == 1
	})
	for _, m := range state.Methods {
		require.Equal(t, m.ID == target, m.IsDefault)
	}
}

func TestSignOutDetachesUserState(t *testing.T) {
	srv, mem := newTestServer(t)
	require.NoError(t, mem.Put(context.Background(), "watches", "w1",
		map[string]any{"name": "Diver Pro", "brand": "Nevil sport", "price": 449.0}))

	token := registerAndLogin(t, srv)
	pollState(t, srv, "/cart", token, func(s cartStateJSON) bool { return s.Phase == "success" })

	resp := authedRequest(t, http.MethodPost, srv.URL+"/signout", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the token still verifies, but the profile cache was wiped
	resp = authedRequest(t, http.MethodGet, srv.URL+"/profile", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/categories")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var categories []models.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	require.Len(t, categories, 5)
}
