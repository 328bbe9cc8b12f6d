package mkm

import (
	"strings"

	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/dimerr"
)

// MetaType enumerates the supported identity algorithms.
type MetaType uint8

const (
	MetaMKM MetaType = 1
	MetaBTC MetaType = 2
	MetaETH MetaType = 4
)

// ParseMetaType accepts the numeric type or its case-insensitive alias.
func ParseMetaType(s string) (MetaType, bool) {
	switch strings.ToUpper(s) {
	case "1", "MKM", "DEFAULT":
		return MetaMKM, true
	case "2", "BTC":
		return MetaBTC, true
	case "4", "ETH":
		return MetaETH, true
	default:
		return 0, false
	}
}

// Meta is immutable identity material binding a public key to an
// optional seed (name) and fingerprint (spec §3).
type Meta struct {
	Type        MetaType
	Key         crypto.PublicKey
	Seed        string
	Fingerprint []byte
}

// NewMeta constructs a Meta and validates the seed/fingerprint pairing.
func NewMeta(metaType MetaType, key crypto.PublicKey, seed string, fingerprint []byte) (*Meta, error) {
	m := &Meta{Type: metaType, Key: key, Seed: seed, Fingerprint: fingerprint}
	if !m.IsValid() {
		return nil, dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrInvalidMeta)
	}
	return m, nil
}

// GenerateMeta creates a Meta by signing the seed with the owner's
// private key to produce the fingerprint (spec §4.1).
func GenerateMeta(metaType MetaType, priv crypto.PrivateKey, seed string) (*Meta, error) {
	var fingerprint []byte
	if seed != "" {
		sig, err := priv.Sign([]byte(seed))
		if err != nil {
			return nil, err
		}
		fingerprint = sig
	}
	return NewMeta(metaType, priv.PublicKey(), seed, fingerprint)
}

// IsValid enforces: empty seed implies empty fingerprint; otherwise the
// fingerprint must verify against the seed and the public key.
func (m *Meta) IsValid() bool {
	if m == nil || m.Key == nil {
		return false
	}
	if m.Seed == "" {
		return len(m.Fingerprint) == 0
	}
	if len(m.Fingerprint) == 0 {
		return false
	}
	return m.Key.Verify([]byte(m.Seed), m.Fingerprint)
}

// GenerateAddress derives an Address for the given network byte using
// this meta's algorithm (spec: deterministic for fixed (meta, network)).
func (m *Meta) GenerateAddress(network EntityType) (Address, error) {
	return GenerateAddress(m, network)
}
