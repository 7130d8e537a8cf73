package store

import "errors"

// ErrNotFound is returned by Get when no document exists at the given path.
var ErrNotFound = errors.New("store: document not found")
