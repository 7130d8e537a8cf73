package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nevilwatch/adapters"
	"nevilwatch/models"
)

// CartController handles cart requests
type CartController struct {
	Cart    *adapters.Cart
	Catalog *adapters.Catalog
}

// NewCartController creates a new CartController
func NewCartController(cart *adapters.Cart, catalog *adapters.Catalog) *CartController {
	return &CartController{Cart: cart, Catalog: catalog}
}

// GetCart returns the current cart state including the derived total
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cc.Cart.State())
}

// AddToCart creates a new line for the given watch
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WatchID string `json:"watchId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	watch, err := cc.Catalog.LoadByID(r.Context(), body.WatchID)
	if err != nil {
		http.Error(w, "Watch not found", http.StatusNotFound)
		return
	}

	cc.Cart.Add(r.Context(), watch)
	json.NewEncoder(w).Encode("Item added to cart")
}

// UpdateQuantity sets one line's quantity
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	cc.Cart.SetQuantity(r.Context(), models.CartItem{ID: params["id"]}, body.Quantity)
	json.NewEncoder(w).Encode("Quantity updated")
}

// RemoveFromCart deletes one line
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	cc.Cart.Remove(r.Context(), models.CartItem{ID: params["id"]})
	json.NewEncoder(w).Encode("Item removed from cart")
}

// ClearCart removes every line
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	cc.Cart.Clear(r.Context())
	json.NewEncoder(w).Encode("Cart cleared")
}
