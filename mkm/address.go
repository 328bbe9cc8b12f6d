package mkm

import (
	"crypto/sha256"
	"strings"

	"github.com/dimchat/dim-go/dimerr"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // BTC-style address derivation needs RIPEMD160
	"golang.org/x/crypto/sha3"
)

// Address is an immutable string bearing a network byte. Two literals,
// "anywhere" and "everywhere", are reserved for broadcast.
type Address struct {
	value   string
	network EntityType
}

const (
	AnywhereLiteral   = "anywhere"
	EverywhereLiteral = "everywhere"
)

var (
	Anywhere   = Address{value: AnywhereLiteral, network: Any}
	Everywhere = Address{value: EverywhereLiteral, network: Every}
)

func (a Address) String() string {
	return a.value
}

func (a Address) Network() EntityType {
	return a.network
}

func (a Address) IsUser() bool {
	return IsUser(a.network)
}

func (a Address) IsGroup() bool {
	return IsGroup(a.network)
}

func (a Address) IsBroadcast() bool {
	return IsBroadcast(a.network)
}

func (a Address) Equal(other Address) bool {
	return a.value == other.value
}

func (a Address) IsEmpty() bool {
	return a.value == ""
}

// ParseAddress recognizes the broadcast literals case-insensitively,
// otherwise accepts any 4..64 character string as an "unknown" address
// with network=User. Strings outside that length range fail to parse.
func ParseAddress(s string) (Address, bool) {
	if s == "" {
		return Address{}, false
	}
	switch strings.ToLower(s) {
	case AnywhereLiteral:
		return Anywhere, true
	case EverywhereLiteral:
		return Everywhere, true
	}
	if len(s) < 4 || len(s) > 64 {
		return Address{}, false
	}
	return Address{value: s, network: User}, true
}

// GenerateAddress derives an address deterministically from a Meta and a
// requested network byte, dispatching on the meta's algorithm.
func GenerateAddress(meta *Meta, network EntityType) (Address, error) {
	if meta == nil || !meta.IsValid() {
		return Address{}, dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrInvalidMeta)
	}
	switch meta.Type {
	case MetaMKM:
		return generateMKMAddress(meta.Key.Bytes(), network), nil
	case MetaBTC:
		return generateBTCAddress(meta.Key.Bytes(), network), nil
	case MetaETH:
		return generateETHAddress(meta.Key.Bytes()), nil
	default:
		return Address{}, dimerr.Wrap(dimerr.KindProtocol, dimerr.ErrUnsupportedAlgorithm)
	}
}

// generateMKMAddress: network || ripemd160(sha256(key)), followed by the
// first 4 bytes of sha256(sha256(network || digest)) as a checksum and
// base58 encoded, matching the classic MKM/BTC-flavoured scheme used
// throughout the pack's secp256k1 based wallets.
func generateMKMAddress(pub []byte, network EntityType) Address {
	digest := btcHash160(pub)
	payload := append([]byte{byte(network)}, digest...)
	checksum := doubleSHA256(payload)[:4]
	full := append(payload, checksum...)
	return Address{value: base58.Encode(full), network: network}
}

func generateBTCAddress(pub []byte, network EntityType) Address {
	// BTC-style addresses use the same hash160/base58 construction as
	// MKM and keep the requested network byte.
	return generateMKMAddress(pub, network)
}

func generateETHAddress(pub []byte) Address {
	hash := keccak256(pub)
	tail := hash[len(hash)-20:]
	return Address{value: "0x" + hexEncode(tail), network: User}
}

func btcHash160(pub []byte) []byte {
	sha := sha256.Sum256(pub)
	ripe := ripemd160.New()
	ripe.Write(sha[:])
	return ripe.Sum(nil)
}

func doubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
