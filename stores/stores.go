// Package stores holds in-memory reference implementations of the
// collaborator interfaces msg.KeyCache and the messenger facade depend
// on — entity metadata/documents, private keys, and cipher keys. These
// are reference stand-ins for a production persistence layer (SQLite,
// etc.), which is out of scope (spec Non-goals).
package stores

import (
	"sync"

	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/dimerr"
	"github.com/dimchat/dim-go/mkm"
)

// EntityArchivist resolves an ID's meta and visa, the two pieces of
// public identity data every encrypt/verify step may need to fetch, plus
// a group's member list for fan-out encryption.
type EntityArchivist interface {
	Meta(id mkm.ID) (*mkm.Meta, bool)
	Visa(id mkm.ID) (*mkm.Visa, bool)
	Members(group mkm.ID) ([]mkm.ID, bool)
	SaveMeta(id mkm.ID, meta *mkm.Meta) error
	SaveVisa(id mkm.ID, visa *mkm.Visa) error
	SaveBulletin(id mkm.ID, bulletin *mkm.Bulletin) error
}

// MemoryArchivist is a goroutine-safe in-memory EntityArchivist.
type MemoryArchivist struct {
	mu        sync.RWMutex
	metas     map[string]*mkm.Meta
	visas     map[string]*mkm.Visa
	bulletins map[string]*mkm.Bulletin
}

func NewMemoryArchivist() *MemoryArchivist {
	return &MemoryArchivist{
		metas:     map[string]*mkm.Meta{},
		visas:     map[string]*mkm.Visa{},
		bulletins: map[string]*mkm.Bulletin{},
	}
}

func (a *MemoryArchivist) Meta(id mkm.ID) (*mkm.Meta, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.metas[id.Address().String()]
	return m, ok
}

func (a *MemoryArchivist) Visa(id mkm.ID) (*mkm.Visa, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.visas[id.String()]
	return v, ok
}

// SaveMeta binds a meta to the address it generates; a meta that
// re-derives a different address than one already on file is rejected,
// since meta is immutable once bound (spec §3 TAI invariant).
func (a *MemoryArchivist) SaveMeta(id mkm.ID, meta *mkm.Meta) error {
	if !meta.IsValid() {
		return dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrInvalidMeta)
	}
	derived, err := meta.GenerateAddress(id.Address().Network())
	if err != nil {
		return err
	}
	if !derived.Equal(id.Address()) {
		return dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrInvalidMeta)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	key := id.Address().String()
	if _, ok := a.metas[key]; !ok {
		a.metas[key] = meta
	}
	return nil
}

func (a *MemoryArchivist) SaveVisa(id mkm.ID, visa *mkm.Visa) error {
	if !visa.IsSigned() {
		return dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrInvalidDocument)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visas[id.String()] = visa
	return nil
}

// SaveBulletin records a group's owner/member announcement, the source
// Members() fans encryption out against (spec §4.4.1 step 8).
func (a *MemoryArchivist) SaveBulletin(id mkm.ID, bulletin *mkm.Bulletin) error {
	if !bulletin.IsSigned() {
		return dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrInvalidDocument)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bulletins[id.String()] = bulletin
	return nil
}

// Members returns a group's known member list, or false if no bulletin
// has been recorded for it yet.
func (a *MemoryArchivist) Members(group mkm.ID) ([]mkm.ID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.bulletins[group.String()]
	if !ok {
		return nil, false
	}
	return b.Members, true
}

// PrivateKeyStore holds the local user's own signing/decryption keys —
// never another entity's, which only ever has public keys in the
// archivist above.
type PrivateKeyStore interface {
	SignKey(id mkm.ID) (crypto.PrivateKey, bool)
	DecryptKeys(id mkm.ID) ([]crypto.PrivateKey, bool)
	SavePrivateKey(id mkm.ID, key crypto.PrivateKey)
}

// MemoryPrivateKeyStore is a goroutine-safe in-memory PrivateKeyStore.
// Multiple decrypt keys accumulate (oldest last) so key rotation can
// still decrypt messages encrypted under a retired key.
type MemoryPrivateKeyStore struct {
	mu   sync.RWMutex
	keys map[string][]crypto.PrivateKey
}

func NewMemoryPrivateKeyStore() *MemoryPrivateKeyStore {
	return &MemoryPrivateKeyStore{keys: map[string][]crypto.PrivateKey{}}
}

func (s *MemoryPrivateKeyStore) SignKey(id mkm.ID) (crypto.PrivateKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ks, ok := s.keys[id.String()]
	if !ok || len(ks) == 0 {
		return nil, false
	}
	return ks[0], true
}

func (s *MemoryPrivateKeyStore) DecryptKeys(id mkm.ID) ([]crypto.PrivateKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ks, ok := s.keys[id.String()]
	return ks, ok
}

func (s *MemoryPrivateKeyStore) SavePrivateKey(id mkm.ID, key crypto.PrivateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := id.String()
	s.keys[name] = append([]crypto.PrivateKey{key}, s.keys[name]...)
}

// MemoryKeyStore is a goroutine-safe in-memory msg.KeyStore, keying
// cipher keys by the "sender->destination" pair (spec C5).
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]crypto.SymmetricKey
}

func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: map[string]crypto.SymmetricKey{}}
}

func cipherKeyID(sender, destination mkm.ID) string {
	return sender.String() + "->" + destination.String()
}

func (s *MemoryKeyStore) Get(sender, destination mkm.ID) (crypto.SymmetricKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[cipherKeyID(sender, destination)]
	return key, ok
}

func (s *MemoryKeyStore) Put(sender, destination mkm.ID, key crypto.SymmetricKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[cipherKeyID(sender, destination)] = key
}

func (s *MemoryKeyStore) Delete(sender, destination mkm.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, cipherKeyID(sender, destination))
}
