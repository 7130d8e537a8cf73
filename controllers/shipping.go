package controllers

import (
	"encoding/json"
	"net/http"

	"nevilwatch/geo"
	"nevilwatch/models"
)

// ShippingController handles shipping-address form requests
type ShippingController struct {
	Geo       *geo.Client
	Countries []models.Country
}

// NewShippingController creates a new ShippingController
func NewShippingController(client *geo.Client, countries []models.Country) *ShippingController {
	return &ShippingController{Geo: client, Countries: countries}
}

type prefillResponse struct {
	Address models.ShippingAddress `json:"address"`
	Error   string                 `json:"error,omitempty"`
}

// PrefillAddress pre-fills the location fields of the shipping form from a
// geolocation lookup. A failed lookup returns blank fields plus a banner
// message; the form stays editable either way.
func (sc *ShippingController) PrefillAddress(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		ip = "8.8.8.8"
	}

	resp := prefillResponse{}
	info, err := sc.Geo.Lookup(ip)
	if err != nil {
		resp.Error = "Failed to fetch location data: " + err.Error()
	} else {
		resp.Address = geo.Prefill(info)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetCountries returns the bundled country list for the country picker
func (sc *ShippingController) GetCountries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sc.Countries)
}
