// Package msg implements the Instant->Secure->Reliable transformation
// pipeline (spec §4.4) and the per-(sender,destination) cipher-key
// cache that backs it (spec C5).
package msg

import (
	"sync"

	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/mkm"
)

// KeyCache resolves the symmetric key used to encrypt content between a
// sender and a destination (a user or a group), generating one on first
// use and reusing it until the host explicitly rotates it (spec C5:
// "get-or-generate per (sender, destination), write-through").
type KeyCache struct {
	mu      sync.Mutex
	factory crypto.SymmetricKeyFactory
	store   KeyStore
}

// KeyStore is the persistence collaborator a KeyCache writes through to;
// stores.MemoryKeyStore is the in-memory reference implementation.
type KeyStore interface {
	Get(sender, destination mkm.ID) (crypto.SymmetricKey, bool)
	Put(sender, destination mkm.ID, key crypto.SymmetricKey)
	Delete(sender, destination mkm.ID)
}

func NewKeyCache(factory crypto.SymmetricKeyFactory, store KeyStore) *KeyCache {
	return &KeyCache{factory: factory, store: store}
}

// CipherKey returns the cached key for (sender, destination), generating
// and storing a fresh one if none exists yet.
func (c *KeyCache) CipherKey(sender, destination mkm.ID) (crypto.SymmetricKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, ok := c.store.Get(sender, destination); ok {
		return key, nil
	}
	key, err := c.factory.Generate("AES")
	if err != nil {
		return nil, err
	}
	c.store.Put(sender, destination, key)
	return key, nil
}

// Cached returns the key on file for (sender, destination) without
// generating one, for messages that reuse a previously exchanged key
// instead of carrying a fresh 'key'/'keys' field (spec §4.4.4 step 3).
func (c *KeyCache) Cached(sender, destination mkm.ID) (crypto.SymmetricKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(sender, destination)
}

// Rotate discards the cached key for (sender, destination), forcing the
// next CipherKey call to generate a fresh one — used after a recipient
// reports it can no longer decrypt (spec §4.4.3 "key not found" retry).
func (c *KeyCache) Rotate(sender, destination mkm.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(sender, destination)
}

// UpdateKey caches an explicit key for (sender, destination), used after
// decrypting an inbound message whose 'key' field carries one meant for
// a future reply (spec §4.4.3 "extract and cache inbound keys").
func (c *KeyCache) UpdateKey(sender, destination mkm.ID, key crypto.SymmetricKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Put(sender, destination, key)
}
