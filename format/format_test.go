package format_test

import (
	"testing"

	"github.com/dimchat/dim-go/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTEDRoundTripAllAlgorithms(t *testing.T) {
	payload := []byte("hello, dim")
	for _, alg := range []string{format.Base64, format.Base58, format.Hex} {
		ted := format.TED{Algorithm: alg, Data: payload}
		text := ted.String()
		parsed, err := format.ParseTED(text)
		require.NoError(t, err, alg)
		assert.Equal(t, payload, parsed.Data, alg)
	}
}

func TestTEDPrintableForms(t *testing.T) {
	ted := format.NewTED([]byte("x"))
	assert.NotContains(t, ted.String(), ",", "default base64 form omits algorithm prefix")

	b58 := format.TED{Algorithm: format.Base58, Data: []byte("x")}
	assert.Contains(t, b58.String(), "base58,")

	mime := ted.WithMIME("image/png")
	assert.Contains(t, mime, "data:image/png;")
}

func TestPNFCanonicalizationOmitsAbsentFields(t *testing.T) {
	p := format.NewPNF()
	p.SetURL("https://example.com/f")
	m := p.ToMap()
	_, hasData := m["data"]
	_, hasKey := m["key"]
	assert.False(t, hasData)
	assert.False(t, hasKey)
	assert.Equal(t, "https://example.com/f", m["URL"])
}

func TestPNFFromMapRoundTrip(t *testing.T) {
	p := format.NewPNF()
	p.SetURL("https://example.com/f")
	p.SetKey([]byte("0123456789abcdef0123456789abcdef"))
	p.SetFilename("f.bin")

	back, err := format.PNFFromMap(p.ToMap())
	require.NoError(t, err)
	assert.Equal(t, p.URL(), back.URL())
	assert.Equal(t, p.Filename(), back.Filename())
	assert.Equal(t, p.Key(), back.Key())
}
