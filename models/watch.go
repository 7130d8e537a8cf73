package models

// Default attribute values applied when a catalog record omits a field.
const (
	DefaultMovement        = "Automatic"
	DefaultWaterResistance = "50M"
	DefaultPowerReserve    = "48 Hours"
	DefaultCaseMaterial    = "Stainless Steel"
)

// Watch represents a product in the catalog. Watches are owned and mutated
// only by the backend; clients treat them as read-only.
type Watch struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand"`
	Price           float64 `json:"price"`
	Description     string  `json:"description"`
	Movement        string  `json:"movement"`
	WaterResistance string  `json:"waterResistance"`
	PowerReserve    string  `json:"powerReserve"`
	CaseMaterial    string  `json:"caseMaterial"`
	Category        string  `json:"category,omitempty"`
}

// WatchFromDoc decodes a backend document into a Watch, applying attribute
// defaults for absent fields.
func WatchFromDoc(id string, data map[string]any) Watch {
	w := Watch{
		ID:              stringField(data, "id"),
		Name:            stringField(data, "name"),
		Brand:           stringField(data, "brand"),
		Price:           floatField(data, "price"),
		Description:     stringField(data, "description"),
		Movement:        stringFieldDefault(data, "movement", DefaultMovement),
		WaterResistance: stringFieldDefault(data, "waterResistance", DefaultWaterResistance),
		PowerReserve:    stringFieldDefault(data, "powerReserve", DefaultPowerReserve),
		CaseMaterial:    stringFieldDefault(data, "caseMaterial", DefaultCaseMaterial),
		Category:        stringField(data, "category"),
	}
	if w.ID == "" {
		w.ID = id
	}
	return w
}

// Doc encodes the watch for the backend.
func (w Watch) Doc() map[string]any {
	return map[string]any{
		"id":              w.ID,
		"name":            w.Name,
		"brand":           w.Brand,
		"price":           w.Price,
		"description":     w.Description,
		"movement":        w.Movement,
		"waterResistance": w.WaterResistance,
		"powerReserve":    w.PowerReserve,
		"caseMaterial":    w.CaseMaterial,
		"category":        w.Category,
	}
}
