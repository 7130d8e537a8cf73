package models

// Category represents a catalog category. Categories are static and not
// backend-sourced.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Categories returns the fixed category set.
func Categories() []Category {
	return []Category{
		{ID: "luxury", Name: "Luxury Watches", Description: "Premium timepieces for the discerning collector"},
		{ID: "sport", Name: "Sport Watches", Description: "Durable watches for active lifestyles"},
		{ID: "smart", Name: "Smart Watches", Description: "Connected watches with modern features"},
		{ID: "classic", Name: "Classic Watches", Description: "Timeless designs for everyday wear"},
		{ID: "fashion", Name: "Fashion Watches", Description: "Stylish watches to complement your look"},
	}
}
