// Package format implements the Transportable Encoded Data (TED) and
// Portable Network File (PNF) envelopes (spec §4.2) used to carry
// arbitrary binary payloads — keys, signatures, media — inside every
// serialized message.
package format

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dimchat/dim-go/dimerr"
	"github.com/mr-tron/base58"
)

// ParseTEDTypeError is returned by callers that expect a TED-bearing
// wire field to be a JSON string and find something else instead.
var ParseTEDTypeError = dimerr.Wrap(dimerr.KindProtocol, dimerr.ErrBadShape)

// Algorithm names recognized by TED.
const (
	Base64 = "base64"
	Base58 = "base58"
	Hex    = "hex"
)

// TED is a tagged envelope for binary data: {algorithm, data}. The
// default algorithm is base64.
type TED struct {
	Algorithm string
	Data      []byte
}

func NewTED(data []byte) TED {
	return TED{Algorithm: Base64, Data: data}
}

// Encode returns the algorithm-dispatched text encoding of Data.
func (t TED) Encode() (string, error) {
	switch t.Algorithm {
	case Base64, "":
		return stdBase64Encode(t.Data), nil
	case Base58:
		return base58.Encode(t.Data), nil
	case Hex:
		return hex.EncodeToString(t.Data), nil
	default:
		return "", dimerr.Wrap(dimerr.KindProtocol, dimerr.ErrUnsupportedAlgorithm)
	}
}

// Decode is the algorithm-dispatched inverse of Encode; it is a
// package-level function rather than a TED method because Decode
// produces a TED, not consumes one.
func Decode(algorithm, text string) (TED, error) {
	var data []byte
	var err error
	switch algorithm {
	case Base64, "":
		data, err = stdBase64Decode(text)
	case Base58:
		data, err = base58.Decode(text)
	case Hex:
		data, err = hex.DecodeString(text)
	default:
		return TED{}, dimerr.Wrap(dimerr.KindProtocol, dimerr.ErrUnsupportedAlgorithm)
	}
	if err != nil {
		return TED{}, dimerr.Wrap(dimerr.KindProtocol, fmt.Errorf("%w: %v", dimerr.ErrBadEncoding, err))
	}
	if algorithm == "" {
		algorithm = Base64
	}
	return TED{Algorithm: algorithm, Data: data}, nil
}

// String renders the canonical printable form:
//
//	"{text}"                 for the default base64 algorithm
//	"{alg},{text}"            for a named algorithm
//	"data:{mime};{alg},{text}" when a MIME type is known (see WithMIME)
func (t TED) String() string {
	text, err := t.Encode()
	if err != nil {
		return ""
	}
	if t.Algorithm == "" || t.Algorithm == Base64 {
		return text
	}
	return t.Algorithm + "," + text
}

// WithMIME renders the "data:{mime};{alg},{text}" form.
func (t TED) WithMIME(mime string) string {
	text, err := t.Encode()
	if err != nil {
		return ""
	}
	alg := t.Algorithm
	if alg == "" {
		alg = Base64
	}
	return "data:" + mime + ";" + alg + "," + text
}

// ParseTED normalizes any of the three printable forms back to a TED.
func ParseTED(s string) (TED, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		rest := s[len("data:"):]
		semi := strings.IndexByte(rest, ';')
		if semi < 0 {
			return TED{}, dimerr.New(dimerr.KindProtocol, "malformed data: URI")
		}
		rest = rest[semi+1:]
		return parseAlgText(rest)
	}
	if comma := strings.IndexByte(s, ','); comma >= 0 {
		return parseAlgText(s)
	}
	return Decode(Base64, s)
}

func parseAlgText(s string) (TED, error) {
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return Decode(Base64, s)
	}
	return Decode(s[:comma], s[comma+1:])
}
