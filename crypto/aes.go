package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
)

// AESKey is the default SymmetricKey: AES-256-CBC with PKCS#7 padding
// and a random per-message IV prefixed to the ciphertext, the same
// construction golang.org/x/crypto consumers across the pack use for
// at-rest/in-flight payload encryption.
type AESKey struct {
	Raw []byte `json:"data"`
}

func NewAESKey() (*AESKey, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, err
	}
	return &AESKey{Raw: raw}, nil
}

func ParseAESKey(serialized []byte) (*AESKey, error) {
	var key AESKey
	if err := json.Unmarshal(serialized, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func (k *AESKey) Algorithm() string { return "AES" }

func (k *AESKey) Serialize() ([]byte, error) {
	return json.Marshal(k)
}

func (k *AESKey) Encrypt(plaintext []byte) ([]byte, error) {
	return newAESCBC(k.Raw, plaintext)
}

func (k *AESKey) Decrypt(ciphertext []byte) ([]byte, error) {
	return openAESCBC(k.Raw, ciphertext)
}

func newAESCBC(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, block.BlockSize())
	iv := make([]byte, block.BlockSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	out := make([]byte, len(iv)+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(iv):], padded)
	return out, nil
}

func openAESCBC(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	blockSize := block.BlockSize()
	if len(ciphertext) < blockSize || (len(ciphertext)-blockSize)%blockSize != 0 {
		return nil, fmt.Errorf("invalid ciphertext length")
	}
	iv, body := ciphertext[:blockSize], ciphertext[blockSize:]
	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)
	return pkcs7Unpad(out)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	return data[:len(data)-padLen], nil
}

// AESKeyFactory is the default crypto.SymmetricKeyFactory.
type AESKeyFactory struct{}

func (AESKeyFactory) Generate(algorithm string) (SymmetricKey, error) {
	if algorithm != "AES" && algorithm != "" {
		return nil, fmt.Errorf("unsupported symmetric algorithm %q", algorithm)
	}
	return NewAESKey()
}

func (AESKeyFactory) Parse(serialized []byte) (SymmetricKey, error) {
	return ParseAESKey(serialized)
}
