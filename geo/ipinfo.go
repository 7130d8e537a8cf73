// Package geo looks up coarse location data for an IP address and uses it to
// pre-fill the shipping-address form. A failed lookup is a form banner, not
// an error: the dependent fields stay blank and editable.
package geo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nevilwatch/models"
)

const defaultBaseURL = "https://api.ipinfo.io"

// IPInfo is the lookup response.
type IPInfo struct {
	IP       string `json:"ip"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`
}

// Client queries the geolocation-by-IP service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a lookup client. baseURL may be empty to use the hosted
// service.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup fetches location data for the given IP.
func (c *Client) Lookup(ip string) (*IPInfo, error) {
	url := fmt.Sprintf("%s/lite/%s?token=%s", c.baseURL, ip, c.token)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch location data: status %d", resp.StatusCode)
	}
	var info IPInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode location data: %w", err)
	}
	return &info, nil
}

// Prefill maps a lookup result onto shipping-address form fields. The
// country code is taken from the first token of the org field.
func Prefill(info *IPInfo) models.ShippingAddress {
	addr := models.ShippingAddress{
		City:       info.City,
		State:      info.Region,
		PostalCode: info.Postal,
		Country:    info.Country,
	}
	if parts := strings.Fields(info.Org); len(parts) > 0 {
		addr.CountryCode = parts[0]
	}
	return addr
}
