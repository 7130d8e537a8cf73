package geo

import (
	"encoding/json"
	"fmt"
	"os"

	"nevilwatch/models"
)

// LoadCountries reads the bundled country list used by the shipping form's
// country picker.
func LoadCountries(path string) ([]models.Country, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read country list: %w", err)
	}
	var countries []models.Country
	if err := json.Unmarshal(data, &countries); err != nil {
		return nil, fmt.Errorf("failed to parse country list: %w", err)
	}
	return countries, nil
}
