// Package profile caches the signed-in user's display profile locally so the
// name and contact number stay available offline. The cache is a pure
// display cache with last-write-wins semantics; it is never synchronized
// back to the backend profile.
package profile

import (
	"log"

	"nevilwatch/kvstore"
	"nevilwatch/models"
)

const (
	keyName          = "name"
	keyContactNumber = "contact_number"
)

// Cache stores a single user profile record.
type Cache struct {
	kv *kvstore.KV
}

// NewCache wraps a key-value store.
func NewCache(kv *kvstore.KV) *Cache {
	return &Cache{kv: kv}
}

// Save overwrites the cached profile wholesale.
func (c *Cache) Save(name, contactNumber string) error {
	if err := c.kv.Put(keyName, name); err != nil {
		log.Printf("profile: error saving name: %v", err)
		return err
	}
	if err := c.kv.Put(keyContactNumber, contactNumber); err != nil {
		log.Printf("profile: error saving contact number: %v", err)
		return err
	}
	return nil
}

// Load returns the cached profile. A record is only present when both name
// and contact number exist; partial records are treated as no record.
func (c *Cache) Load() (*models.UserProfile, error) {
	name, haveName, err := c.kv.Get(keyName)
	if err != nil {
		log.Printf("profile: error loading name: %v", err)
		return nil, err
	}
	contact, haveContact, err := c.kv.Get(keyContactNumber)
	if err != nil {
		log.Printf("profile: error loading contact number: %v", err)
		return nil, err
	}
	if !haveName || !haveContact {
		return nil, nil
	}
	return &models.UserProfile{Name: name, ContactNumber: contact}, nil
}

// Clear wipes the cache unconditionally.
func (c *Cache) Clear() error {
	if err := c.kv.Clear(); err != nil {
		log.Printf("profile: error clearing cache: %v", err)
		return err
	}
	return nil
}
