package models

// ShippingAddress holds the shipping form fields. Location-derived fields
// may be pre-filled from a geolocation lookup; all fields stay editable.
type ShippingAddress struct {
	ID                     string `json:"id,omitempty"`
	FullName               string `json:"fullName"`
	StreetAddress          string `json:"streetAddress"`
	City                   string `json:"city"`
	State                  string `json:"state"`
	PostalCode             string `json:"postalCode"`
	Country                string `json:"country"`
	CountryCode            string `json:"countryCode"`
	PhoneNumber            string `json:"phoneNumber"`
	AdditionalInstructions string `json:"additionalInstructions,omitempty"`
	IsDefault              bool   `json:"isDefault,omitempty"`
}

// Complete reports whether every required shipping field is filled in.
func (a ShippingAddress) Complete() bool {
	return a.FullName != "" &&
		a.StreetAddress != "" &&
		a.City != "" &&
		a.State != "" &&
		a.PostalCode != "" &&
		a.Country != "" &&
		a.CountryCode != "" &&
		a.PhoneNumber != ""
}

// Country is one entry of the bundled country list.
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// UserProfile is the locally cached display profile.
type UserProfile struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
}
