package mkm_test

import (
	"testing"

	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/mkm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddressBroadcast(t *testing.T) {
	addr, ok := mkm.ParseAddress("Anywhere")
	require.True(t, ok)
	assert.True(t, addr.IsBroadcast())
	assert.Equal(t, mkm.Any, addr.Network())
}

func TestParseAddressLengthBounds(t *testing.T) {
	_, ok := mkm.ParseAddress("abc")
	assert.False(t, ok, "3-char address must fail")

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	_, ok = mkm.ParseAddress(string(long))
	assert.False(t, ok, "65-char address must fail")
}

func TestGenerateAddressDeterministic(t *testing.T) {
	priv, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)
	meta, err := mkm.GenerateMeta(mkm.MetaMKM, priv, "alice")
	require.NoError(t, err)

	a1, err := mkm.GenerateAddress(meta, mkm.User)
	require.NoError(t, err)
	a2, err := mkm.GenerateAddress(meta, mkm.User)
	require.NoError(t, err)
	assert.True(t, a1.Equal(a2), "same (meta, network) must generate the same address")
}

func TestMetaValidity(t *testing.T) {
	priv, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)

	// valid: seed + matching fingerprint
	meta, err := mkm.GenerateMeta(mkm.MetaMKM, priv, "bob")
	require.NoError(t, err)
	assert.True(t, meta.IsValid())

	// valid: no seed, no fingerprint
	bare, err := mkm.NewMeta(mkm.MetaMKM, priv.PublicKey(), "", nil)
	require.NoError(t, err)
	assert.True(t, bare.IsValid())

	// invalid: seed present, fingerprint empty
	bad := &mkm.Meta{Type: mkm.MetaMKM, Key: priv.PublicKey(), Seed: "bob"}
	assert.False(t, bad.IsValid())
}

func TestParseID(t *testing.T) {
	id, ok := mkm.ParseID("alice@anywhere/device1")
	require.True(t, ok)
	assert.Equal(t, "alice", id.Name())
	assert.Equal(t, "device1", id.Terminal())
	assert.Equal(t, "alice@anywhere/device1", id.String())

	well, ok := mkm.ParseID("anyone@anywhere")
	require.True(t, ok)
	assert.True(t, well.Equal(mkm.Anyone))
}

func TestDocumentSignVerifyRoundTrip(t *testing.T) {
	priv, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)
	meta, err := mkm.GenerateMeta(mkm.MetaMKM, priv, "carol")
	require.NoError(t, err)
	addr, err := mkm.GenerateAddress(meta, mkm.User)
	require.NoError(t, err)
	id := mkm.IDFromAddress("carol", addr)

	visa := mkm.NewVisa(id, priv.PublicKey())
	visa.SetProperty("name", "Carol")
	require.NoError(t, visa.Sign(priv))
	assert.True(t, visa.Verify(priv.PublicKey()))

	// mutating a property without resigning must invalidate verification.
	visa.SetProperty("name", "Mallory")
	assert.False(t, visa.IsSigned(), "mutation must clear cached signature")
}
