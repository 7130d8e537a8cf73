package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nevilwatch/kvstore"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return NewCache(kv)
}

func TestLoadEmptyCache(t *testing.T) {
	cache := newTestCache(t)

	p, err := cache.Load()
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestSaveAndLoad(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Save("Jane Doe", "+12025550147"))

	p, err := cache.Load()
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "Jane Doe", p.Name)
	require.Equal(t, "+12025550147", p.ContactNumber)
}

func TestPartialRecordIsAbsent(t *testing.T) {
	// only the name was written; the record does not count as present
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	require.NoError(t, kv.Put("name", "Jane Doe"))

	cache := NewCache(kv)
	p, err := cache.Load()
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestSaveOverwritesWholesale(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Save("Jane Doe", "+12025550147"))
	require.NoError(t, cache.Save("Janet Doe", "+12025550148"))

	p, err := cache.Load()
	require.NoError(t, err)
	require.Equal(t, "Janet Doe", p.Name)
	require.Equal(t, "+12025550148", p.ContactNumber)
}

func TestClearRemovesRecord(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Save("Jane Doe", "+12025550147"))
	require.NoError(t, cache.Clear())

	p, err := cache.Load()
	require.NoError(t, err)
	require.Nil(t, p)
}
