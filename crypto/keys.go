// Package crypto defines the delegate algorithm interfaces the message
// pipeline (package msg) needs from the host application: symmetric
// encryption, asymmetric encryption and signing (spec §4.4). Content
// serialization is not abstracted here; package msg uses encoding/json
// directly. A default secp256k1/AES implementation is provided for
// tests and the example CLI; production key management (secure storage,
// hardware-backed keys) is the host's responsibility.
package crypto

// SymmetricKey is a per-(sender,destination) content-encryption key
// (spec C5). Algorithm and raw key material are both serializable so
// they can be wrapped (asymmetric-encrypted) and cached.
type SymmetricKey interface {
	Algorithm() string
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
	// Serialize returns the JSON-able key dictionary, or nil when the
	// key must not travel on the wire (broadcast / reused-key cases).
	Serialize() ([]byte, error)
}

// PublicKey is an identity or visa public key, used to verify
// signatures and to encrypt a symmetric key for a receiver.
type PublicKey interface {
	Algorithm() string
	Bytes() []byte
	Verify(data, signature []byte) bool
	Encrypt(plaintext []byte) ([]byte, error)
}

// PrivateKey is the counterpart to PublicKey, held only by its owner.
type PrivateKey interface {
	Algorithm() string
	PublicKey() PublicKey
	Sign(data []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// SymmetricKeyFactory generates a fresh random symmetric key for a
// given algorithm name, used by the key cache (msg.KeyCache) on first
// send to a new (sender, destination) pair.
type SymmetricKeyFactory interface {
	Generate(algorithm string) (SymmetricKey, error)
	Parse(serialized []byte) (SymmetricKey, error)
}
