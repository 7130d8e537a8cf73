package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nevilwatch/adapters"
)

// PaymentController handles payment-method requests
type PaymentController struct {
	Payment *adapters.Payment
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(payment *adapters.Payment) *PaymentController {
	return &PaymentController{Payment: payment}
}

// GetPaymentMethods returns the current payment-methods state
func (pc *PaymentController) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pc.Payment.State())
}

// AddPaymentMethod stores a new instrument
func (pc *PaymentController) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CardNumber     string `json:"cardNumber"`
		CardHolderName string `json:"cardHolderName"`
		ExpiryDate     string `json:"expiryDate"`
		CardType       string `json:"cardType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	pc.Payment.Add(r.Context(), body.CardNumber, body.CardHolderName, body.ExpiryDate, body.CardType)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode("Payment method added")
}

// RemovePaymentMethod deletes one instrument
func (pc *PaymentController) RemovePaymentMethod(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	pc.Payment.Remove(r.Context(), params["id"])
	json.NewEncoder(w).Encode("Payment method removed")
}

// SetDefaultPaymentMethod flags one instrument as the default
func (pc *PaymentController) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	pc.Payment.SetDefault(r.Context(), params["id"])
	json.NewEncoder(w).Encode("Default payment method updated")
}
