// Package store defines the realtime document backend contract. A backend is
// a tree of collections addressed by slash-separated paths ("watches",
// "carts/<uid>/items"); subscribers receive a full point-in-time copy of a
// collection every time any document in it changes.
package store

import "context"

// Document is one record of a collection snapshot.
type Document struct {
	ID   string
	Data map[string]any
}

// Snapshot is a full point-in-time copy of a collection, ordered by ID.
type Snapshot []Document

// Query restricts a subscription or read to documents whose field equals a
// value. Equality is the only supported filter.
type Query struct {
	Field string
	Value any
}

// WhereEq builds an equality filter.
func WhereEq(field string, value any) Query {
	return Query{Field: field, Value: value}
}

// Subscription is a live listener on one collection. Snapshots delivers the
// full collection on every change, starting with the current contents.
// Errors carries at most one terminal error; after it fires no further
// snapshots arrive. Close must be called to release the listener.
type Subscription struct {
	Snapshots <-chan Snapshot
	Errors    <-chan error
	close     func()
}

// NewSubscription wires a subscription around implementation channels.
func NewSubscription(snapshots <-chan Snapshot, errs <-chan error, close func()) *Subscription {
	return &Subscription{Snapshots: snapshots, Errors: errs, close: close}
}

// Close deregisters the listener. Safe to call more than once.
func (s *Subscription) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

// Tx is the view of the store inside a transaction. Reads must precede
// writes; writes are buffered and applied atomically on commit.
type Tx interface {
	GetAll(path string, queries ...Query) (Snapshot, error)
	Put(path, id string, value map[string]any)
	Patch(path, id string, fields map[string]any)
	Delete(path, id string)
}

// Store is the document backend contract.
type Store interface {
	// Subscribe opens a live listener on the collection at path.
	Subscribe(ctx context.Context, path string, queries ...Query) (*Subscription, error)
	// Put writes a whole document, replacing any existing one.
	Put(ctx context.Context, path, id string, value map[string]any) error
	// Patch updates individual fields of an existing document.
	Patch(ctx context.Context, path, id string, fields map[string]any) error
	// Delete removes one document. Deleting an absent document is not an error.
	Delete(ctx context.Context, path, id string) error
	// DeleteAll removes every document in the collection.
	DeleteAll(ctx context.Context, path string) error
	// Get reads one document. Returns ErrNotFound if absent.
	Get(ctx context.Context, path, id string) (map[string]any, error)
	// GetAll reads the whole collection once.
	GetAll(ctx context.Context, path string, queries ...Query) (Snapshot, error)
	// RunTransaction executes fn atomically against the store.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	// Close releases the backend connection.
	Close() error
}
