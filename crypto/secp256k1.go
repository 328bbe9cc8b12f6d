package crypto

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ECCPublicKey wraps a secp256k1 public key, the curve the pack's
// wallet/blockchain SDKs (blockberries, orbas1-Synnergy, SAGE-X) all
// standardize on for identity signatures.
type ECCPublicKey struct {
	key *secp256k1.PublicKey
}

func NewECCPublicKey(compressed []byte) (*ECCPublicKey, error) {
	key, err := secp256k1.ParsePubKey(compressed)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &ECCPublicKey{key: key}, nil
}

func (k *ECCPublicKey) Algorithm() string { return "ECC" }

func (k *ECCPublicKey) Bytes() []byte {
	return k.key.SerializeCompressed()
}

func (k *ECCPublicKey) Verify(data, signature []byte) bool {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(data)
	return sig.Verify(digest[:], k.key)
}

// Encrypt implements a minimal ECIES-style scheme: an ephemeral key is
// combined with the recipient's public key via ECDH, the shared secret
// seeds AES-256-CBC, and the ephemeral public key is prefixed to the
// ciphertext. This is the same shape the packer treats as "asymmetric
// encrypt" for wrapping a symmetric message key.
func (k *ECCPublicKey) Encrypt(plaintext []byte) ([]byte, error) {
	ephemeralPriv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	shared := ecdh(ephemeralPriv, k.key)
	aesKey := sha256.Sum256(shared)
	cipherBlock, err := newAESCBC(aesKey[:], plaintext)
	if err != nil {
		return nil, err
	}
	ephemeralPub := ephemeralPriv.PubKey().SerializeCompressed()
	out := make([]byte, 0, len(ephemeralPub)+len(cipherBlock))
	out = append(out, ephemeralPub...)
	out = append(out, cipherBlock...)
	return out, nil
}

// ECCPrivateKey wraps a secp256k1 private key.
type ECCPrivateKey struct {
	key *secp256k1.PrivateKey
}

func GenerateECCPrivateKey() (*ECCPrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &ECCPrivateKey{key: key}, nil
}

func NewECCPrivateKey(raw []byte) *ECCPrivateKey {
	priv := secp256k1.PrivKeyFromBytes(raw)
	return &ECCPrivateKey{key: priv}
}

func (k *ECCPrivateKey) Algorithm() string { return "ECC" }

func (k *ECCPrivateKey) Bytes() []byte {
	return k.key.Serialize()
}

func (k *ECCPrivateKey) PublicKey() PublicKey {
	return &ECCPublicKey{key: k.key.PubKey()}
}

func (k *ECCPrivateKey) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	sig := ecdsa.Sign(k.key, digest[:])
	return sig.Serialize(), nil
}

func (k *ECCPrivateKey) Decrypt(ciphertext []byte) ([]byte, error) {
	const pubKeyLen = 33 // compressed secp256k1 point
	if len(ciphertext) < pubKeyLen {
		return nil, fmt.Errorf("ciphertext too short")
	}
	ephemeralPub, err := secp256k1.ParsePubKey(ciphertext[:pubKeyLen])
	if err != nil {
		return nil, err
	}
	shared := ecdh(k.key, ephemeralPub)
	aesKey := sha256.Sum256(shared)
	return openAESCBC(aesKey[:], ciphertext[pubKeyLen:])
}

func ecdh(priv *secp256k1.PrivateKey, pub *secp256k1.PublicKey) []byte {
	var point secp256k1.JacobianPoint
	pub.AsJacobian(&point)
	var result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()
	shared := result.X.Bytes()
	return shared[:]
}

// seedMeta is the {algorithm, data} shape MarshalPublicKey uses to
// serialize a public key's bytes alongside its algorithm name.
type seedMeta struct {
	Algorithm string `json:"algorithm"`
	Data      []byte `json:"data"`
}

func MarshalPublicKey(pub PublicKey) ([]byte, error) {
	return json.Marshal(seedMeta{Algorithm: pub.Algorithm(), Data: pub.Bytes()})
}
