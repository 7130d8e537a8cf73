// Package kvstore is the local key-value persistence layer: a single SQLite
// table of string pairs, standing in for the platform preference store.
package kvstore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// KV is a SQLite-backed key-value store.
type KV struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*KV, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("failed to open key-value store: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize key-value store: %w", err)
	}
	return &KV{db: db}, nil
}

// Get returns the value for key. The second result is false if absent.
func (kv *KV) Get(key string) (string, bool, error) {
	var value string
	err := kv.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores value under key, replacing any existing value.
func (kv *KV) Put(key, value string) error {
	_, err := kv.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Clear removes every key.
func (kv *KV) Clear() error {
	_, err := kv.db.Exec(`DELETE FROM kv`)
	return err
}

// Close closes the underlying database.
func (kv *KV) Close() error {
	return kv.db.Close()
}
