// Package catalogfile persists an offline copy of the product catalog as a
// single JSON file: an object with a "watches" key mapping product IDs to
// records. The file is written and read wholesale; when it is absent a
// bundled sample copy is used instead.
package catalogfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"nevilwatch/models"
)

const localFileName = "local_watches.json"

// Store reads and writes the offline catalog copy.
type Store struct {
	dir       string
	assetPath string
}

// NewStore stores the local copy under dir, falling back to the bundled
// sample at assetPath when no local copy exists.
func NewStore(dir, assetPath string) *Store {
	return &Store{dir: dir, assetPath: assetPath}
}

type watchRecord struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand"`
	Price           float64 `json:"price"`
	Description     string  `json:"description"`
	Movement        string  `json:"movement,omitempty"`
	WaterResistance string  `json:"waterResistance,omitempty"`
	PowerReserve    string  `json:"powerReserve,omitempty"`
	CaseMaterial    string  `json:"caseMaterial,omitempty"`
}

type catalogFile struct {
	Watches map[string]watchRecord `json:"watches"`
}

// Save overwrites the local copy with the given set.
func (s *Store) Save(watches []models.Watch) error {
	file := catalogFile{Watches: make(map[string]watchRecord, len(watches))}
	for _, w := range watches {
		file.Watches[w.ID] = watchRecord{
			ID:              w.ID,
			Name:            w.Name,
			Brand:           w.Brand,
			Price:           w.Price,
			Description:     w.Description,
			Movement:        w.Movement,
			WaterResistance: w.WaterResistance,
			PowerReserve:    w.PowerReserve,
			CaseMaterial:    w.CaseMaterial,
		}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, localFileName), data, 0o644)
}

// Load reads the local copy, or the bundled sample when no local copy
// exists. Absent attribute fields get their defaults.
func (s *Store) Load() ([]models.Watch, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, localFileName))
	if err != nil {
		data, err = os.ReadFile(s.assetPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read bundled catalog: %w", err)
		}
	}
	return parse(data)
}

func parse(data []byte) ([]models.Watch, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	watches := make([]models.Watch, 0, len(file.Watches))
	for id, rec := range file.Watches {
		w := models.Watch{
			ID:              rec.ID,
			Name:            rec.Name,
			Brand:           rec.Brand,
			Price:           rec.Price,
			Description:     rec.Description,
			Movement:        rec.Movement,
			WaterResistance: rec.WaterResistance,
			PowerReserve:    rec.PowerReserve,
			CaseMaterial:    rec.CaseMaterial,
		}
		if w.ID == "" {
			w.ID = id
		}
		if w.Movement == "" {
			w.Movement = models.DefaultMovement
		}
		if w.WaterResistance == "" {
			w.WaterResistance = models.DefaultWaterResistance
		}
		if w.PowerReserve == "" {
			w.PowerReserve = models.DefaultPowerReserve
		}
		if w.CaseMaterial == "" {
			w.CaseMaterial = models.DefaultCaseMaterial
		}
		watches = append(watches, w)
	}
	sort.Slice(watches, func(i, j int) bool { return watches[i].ID < watches[j].ID })
	return watches, nil
}
