package models

// CartItem represents one line in a user's cart. The price and name are
// snapshots taken at add time, not live references into the catalog.
type CartItem struct {
	ID         string  `json:"id"`
	WatchID    string  `json:"watchId"`
	UserID     string  `json:"userId"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	WatchName  string  `json:"watchName"`
	WatchImage string  `json:"watchImage"`
}

// CartItemFromDoc decodes a backend document into a CartItem.
func CartItemFromDoc(id string, data map[string]any) CartItem {
	item := CartItem{
		ID:         stringField(data, "id"),
		WatchID:    stringField(data, "watchId"),
		UserID:     stringField(data, "userId"),
		Quantity:   intField(data, "quantity"),
		Price:      floatField(data, "price"),
		WatchName:  stringField(data, "watchName"),
		WatchImage: stringField(data, "watchImage"),
	}
	if item.ID == "" {
		item.ID = id
	}
	return item
}

// Doc encodes the cart item for the backend.
func (c CartItem) Doc() map[string]any {
	return map[string]any{
		"id":         c.ID,
		"watchId":    c.WatchID,
		"userId":     c.UserID,
		"quantity":   c.Quantity,
		"price":      c.Price,
		"watchName":  c.WatchName,
		"watchImage": c.WatchImage,
	}
}

// CartTotal is the derived cart total: the sum of price*quantity over all
// lines. It is recomputed from every snapshot and never stored.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
