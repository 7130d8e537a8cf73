package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func nextSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap := <-sub.Snapshots:
		return snap
	case err := <-sub.Errors:
		t.Fatalf("subscription error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestMemoryPutGetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "watches", "w1", map[string]any{"name": "Diver"}))

	doc, err := m.Get(ctx, "watches", "w1")
	require.NoError(t, err)
	require.Equal(t, "Diver", doc["name"])

	require.NoError(t, m.Delete(ctx, "watches", "w1"))
	_, err = m.Get(ctx, "watches", "w1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "watches", "w1", map[string]any{"name": "Diver"}))
	doc, err := m.Get(ctx, "watches", "w1")
	require.NoError(t, err)
	doc["name"] = "mutated"

	doc, err = m.Get(ctx, "watches", "w1")
	require.NoError(t, err)
	require.Equal(t, "Diver", doc["name"])
}

func TestMemoryPatchMergesFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "items", "i1", map[string]any{"quantity": 1, "price": 9.5}))
	require.NoError(t, m.Patch(ctx, "items", "i1", map[string]any{"quantity": 3}))

	doc, err := m.Get(ctx, "items", "i1")
	require.NoError(t, err)
	require.Equal(t, 3, doc["quantity"])
	require.Equal(t, 9.5, doc["price"])
}

func TestMemorySubscribeDeliversInitialAndUpdates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	sub, err := m.Subscribe(ctx, "watches")
	require.NoError(t, err)
	defer sub.Close()

	require.Empty(t, nextSnapshot(t, sub))

	require.NoError(t, m.Put(ctx, "watches", "w1", map[string]any{"name": "Diver"}))
	snap := nextSnapshot(t, sub)
	require.Len(t, snap, 1)
	require.Equal(t, "w1", snap[0].ID)
}

func TestMemorySubscribeQueryFilter(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "watches", "w1", map[string]any{"category": "sport"}))
	require.NoError(t, m.Put(ctx, "watches", "w2", map[string]any{"category": "classic"}))

	sub, err := m.Subscribe(ctx, "watches", WhereEq("category", "sport"))
	require.NoError(t, err)
	defer sub.Close()

	snap := nextSnapshot(t, sub)
	require.Len(t, snap, 1)
	require.Equal(t, "w1", snap[0].ID)
}

func TestMemorySnapshotsSortedByID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "watches", "b", map[string]any{}))
	require.NoError(t, m.Put(ctx, "watches", "a", map[string]any{}))
	require.NoError(t, m.Put(ctx, "watches", "c", map[string]any{}))

	snap, err := m.GetAll(ctx, "watches")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, []string{snap[0].ID, snap[1].ID, snap[2].ID})
}

func TestMemoryDeleteAll(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "carts/u1/items", "i1", map[string]any{}))
	require.NoError(t, m.Put(ctx, "carts/u1/items", "i2", map[string]any{}))
	require.NoError(t, m.DeleteAll(ctx, "carts/u1/items"))

	snap, err := m.GetAll(ctx, "carts/u1/items")
	require.NoError(t, err)
	require.Empty(t, snap)
}

func TestMemoryFailWrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("backend unavailable")

	m.FailWrites(boom)
	require.ErrorIs(t, m.Put(ctx, "watches", "w1", map[string]any{}), boom)
	require.ErrorIs(t, m.Delete(ctx, "watches", "w1"), boom)

	m.FailWrites(nil)
	require.NoError(t, m.Put(ctx, "watches", "w1", map[string]any{}))
}

func TestMemoryTransactionCommitsAtomically(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "methods", "m1", map[string]any{"isDefault": true}))
	require.NoError(t, m.Put(ctx, "methods", "m2", map[string]any{"isDefault": false}))

	err := m.RunTransaction(ctx, func(tx Tx) error {
		snap, err := tx.GetAll("methods")
		if err != nil {
			return err
		}
		for _, doc := range snap {
			tx.Patch("methods", doc.ID, map[string]any{"isDefault": doc.ID == "m2"})
		}
		return nil
	})
	require.NoError(t, err)

	snap, err := m.GetAll(ctx, "methods")
	require.NoError(t, err)
	require.Equal(t, false, snap[0].Data["isDefault"])
	require.Equal(t, true, snap[1].Data["isDefault"])
}

func TestMemoryTransactionErrorDiscardsWrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "methods", "m1", map[string]any{"isDefault": false}))

	err := m.RunTransaction(ctx, func(tx Tx) error {
		tx.Patch("methods", "m1", map[string]any{"isDefault": true})
		return errors.New("abort")
	})
	require.Error(t, err)

	doc, err := m.Get(ctx, "methods", "m1")
	require.NoError(t, err)
	require.Equal(t, false, doc["isDefault"])
}
