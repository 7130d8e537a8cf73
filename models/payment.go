package models

// PaymentMethod represents a stored payment instrument. At most one method
// per user carries IsDefault=true.
type PaymentMethod struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	CardNumber     string `json:"cardNumber"`
	CardHolderName string `json:"cardHolderName"`
	ExpiryDate     string `json:"expiryDate"`
	IsDefault      bool   `json:"isDefault"`
	CardType       string `json:"cardType"` // visa, mastercard, etc.
}

// PaymentMethodFromDoc decodes a backend document into a PaymentMethod.
func PaymentMethodFromDoc(id string, data map[string]any) PaymentMethod {
	m := PaymentMethod{
		ID:             stringField(data, "id"),
		UserID:         stringField(data, "userId"),
		CardNumber:     stringField(data, "cardNumber"),
		CardHolderName: stringField(data, "cardHolderName"),
		ExpiryDate:     stringField(data, "expiryDate"),
		IsDefault:      boolField(data, "isDefault"),
		CardType:       stringField(data, "cardType"),
	}
	if m.ID == "" {
		m.ID = id
	}
	return m
}

// Doc encodes the payment method for the backend.
func (m PaymentMethod) Doc() map[string]any {
	return map[string]any{
		"id":             m.ID,
		"userId":         m.UserID,
		"cardNumber":     m.CardNumber,
		"cardHolderName": m.CardHolderName,
		"expiryDate":     m.ExpiryDate,
		"isDefault":      m.IsDefault,
		"cardType":       m.CardType,
	}
}
