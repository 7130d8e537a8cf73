package catalogfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nevilwatch/models"
)

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, filepath.Join(dir, "absent.json"))

	in := []models.Watch{
		{ID: "w1", Name: "Diver Pro", Brand: "Nevil sport", Price: 449,
			Movement: "Quartz", WaterResistance: "100M", PowerReserve: "72 Hours", CaseMaterial: "Titanium"},
		{ID: "w2", Name: "Heritage Classic", Brand: "Heritage", Price: 899},
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "w1", out[0].ID)
	require.Equal(t, "Quartz", out[0].Movement)
	// absent attributes come back as defaults
	require.Equal(t, models.DefaultMovement, out[1].Movement)
	require.Equal(t, models.DefaultWaterResistance, out[1].WaterResistance)
	require.Equal(t, models.DefaultPowerReserve, out[1].PowerReserve)
	require.Equal(t, models.DefaultCaseMaterial, out[1].CaseMaterial)
}

func TestLoadFallsBackToBundledAsset(t *testing.T) {
	dir := t.TempDir()
	asset := filepath.Join(dir, "asset.json")
	require.NoError(t, os.WriteFile(asset, []byte(`{
		"watches": {
			"w9": {"name": "Bundled", "brand": "Nevil sport", "price": 100}
		}
	}`), 0o644))

	s := NewStore(filepath.Join(dir, "data"), asset)
	out, err := s.Load()
	require.NoError(t, err)
	require.Len(t, out, 1)
	// the map key supplies the ID when the record omits one
	require.Equal(t, "w9", out[0].ID)
	require.Equal(t, "Bundled", out[0].Name)
}

func TestLoadMissingEverywhere(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, filepath.Join(dir, "absent.json"))

	_, err := s.Load()
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local_watches.json"), []byte("not json"), 0o644))

	s := NewStore(dir, "")
	_, err := s.Load()
	require.Error(t, err)
}

func TestLoadSortsByID(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "")
	require.NoError(t, s.Save([]models.Watch{
		{ID: "c", Name: "C"}, {ID: "a", Name: "A"}, {ID: "b", Name: "B"},
	}))

	out, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "a", out[0].ID)
	require.Equal(t, "b", out[1].ID)
	require.Equal(t, "c", out[2].ID)
}
