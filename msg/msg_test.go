package msg

import (
	"testing"
	"time"

	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/dkd"
	"github.com/dimchat/dim-go/mkm"
	"github.com/dimchat/dim-go/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	alice, bob     mkm.ID
	aliceKey       *crypto.ECCPrivateKey
	bobKey         *crypto.ECCPrivateKey
	archivist      *stores.MemoryArchivist
	privateKeys    *stores.MemoryPrivateKeyStore
	packer         *Packer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	aliceKey, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)
	bobKey, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)

	aliceMeta, err := mkm.GenerateMeta(mkm.MetaMKM, aliceKey, "alice")
	require.NoError(t, err)
	bobMeta, err := mkm.GenerateMeta(mkm.MetaMKM, bobKey, "bob")
	require.NoError(t, err)

	aliceAddr, err := aliceMeta.GenerateAddress(mkm.User)
	require.NoError(t, err)
	bobAddr, err := bobMeta.GenerateAddress(mkm.User)
	require.NoError(t, err)

	alice := mkm.IDFromAddress("alice", aliceAddr)
	bob := mkm.IDFromAddress("bob", bobAddr)

	archivist := stores.NewMemoryArchivist()
	require.NoError(t, archivist.SaveMeta(alice, aliceMeta))
	require.NoError(t, archivist.SaveMeta(bob, bobMeta))

	bobVisa := mkm.NewVisa(bob, bobKey.PublicKey())
	require.NoError(t, bobVisa.Sign(bobKey))
	require.NoError(t, archivist.SaveVisa(bob, bobVisa))

	privateKeys := stores.NewMemoryPrivateKeyStore()
	privateKeys.SavePrivateKey(alice, aliceKey)
	privateKeys.SavePrivateKey(bob, bobKey)

	keyCache := NewKeyCache(crypto.AESKeyFactory{}, stores.NewMemoryKeyStore())
	packer := NewPacker(keyCache, archivist, privateKeys, crypto.AESKeyFactory{})

	return &fixture{
		alice: alice, bob: bob,
		aliceKey: aliceKey, bobKey: bobKey,
		archivist: archivist, privateKeys: privateKeys,
		packer: packer,
	}
}

func TestPackerRoundTrip(t *testing.T) {
	f := newFixture(t)

	env := dkd.NewEnvelope(f.alice, f.bob, time.Now())
	content := dkd.NewContent(dkd.TEXT)
	content.Body["text"] = "hi bob"
	instant := dkd.NewInstant(env, content)

	secure, err := f.packer.Encrypt(instant)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("hi bob"), secure.Data)

	reliable, err := f.packer.Sign(secure, f.alice)
	require.NoError(t, err)
	assert.NotEmpty(t, reliable.Signature)

	verified, err := f.packer.Verify(reliable)
	require.NoError(t, err)

	back, err := f.packer.Decrypt(verified, f.bob)
	require.NoError(t, err)
	assert.Equal(t, "hi bob", back.Content.Body["text"])
}

func TestPackerVerifyRejectsTamperedData(t *testing.T) {
	f := newFixture(t)

	env := dkd.NewEnvelope(f.alice, f.bob, time.Now())
	content := dkd.NewContent(dkd.TEXT)
	content.Body["text"] = "hi bob"
	instant := dkd.NewInstant(env, content)

	secure, err := f.packer.Encrypt(instant)
	require.NoError(t, err)
	reliable, err := f.packer.Sign(secure, f.alice)
	require.NoError(t, err)

	reliable.Data = append([]byte{0xff}, reliable.Data...)
	_, err = f.packer.Verify(reliable)
	assert.Error(t, err)
}

func TestPackerDecryptWithoutKeyFails(t *testing.T) {
	f := newFixture(t)
	env := dkd.NewEnvelope(f.alice, f.bob, time.Now())
	secure := &dkd.Secure{Envelope: env, Data: []byte("ciphertext")}
	_, err := f.packer.Decrypt(secure, f.bob)
	assert.Error(t, err)
}

func TestPackerEncryptReusesCipherKeyUntilRotated(t *testing.T) {
	f := newFixture(t)
	env := dkd.NewEnvelope(f.alice, f.bob, time.Now())

	content1 := dkd.NewContent(dkd.TEXT)
	content1.Body["text"] = "first"
	secure1, err := f.packer.Encrypt(dkd.NewInstant(env, content1))
	require.NoError(t, err)
	key1, ok := f.packer.Keys.Cached(f.alice, f.bob)
	require.True(t, ok)

	content2 := dkd.NewContent(dkd.TEXT)
	content2.Body["text"] = "second"
	secure2, err := f.packer.Encrypt(dkd.NewInstant(env, content2))
	require.NoError(t, err)
	key2, ok := f.packer.Keys.Cached(f.alice, f.bob)
	require.True(t, ok)

	// Same cipher key reused for both messages; each still carries it
	// wrapped for the receiver.
	assert.Same(t, key1, key2)
	assert.NotNil(t, secure1.Key)
	assert.NotNil(t, secure2.Key)

	// Rotate drops the cached key, so the next encrypt generates a new one.
	f.packer.Keys.Rotate(f.alice, f.bob)
	content3 := dkd.NewContent(dkd.TEXT)
	content3.Body["text"] = "third"
	_, err = f.packer.Encrypt(dkd.NewInstant(env, content3))
	require.NoError(t, err)
	key3, ok := f.packer.Keys.Cached(f.alice, f.bob)
	require.True(t, ok)
	assert.NotSame(t, key1, key3)
}

func TestPackerEncryptBroadcastSkipsEncryptionAndKey(t *testing.T) {
	f := newFixture(t)

	env := dkd.NewEnvelope(f.alice, mkm.Everyone, time.Now())
	content := dkd.NewContent(dkd.TEXT)
	content.Body["text"] = "hi everyone"
	instant := dkd.NewInstant(env, content)

	secure, err := f.packer.Encrypt(instant)
	require.NoError(t, err)
	assert.Nil(t, secure.Key)
	assert.Nil(t, secure.Keys)

	wire := secure.ToMap()
	raw, ok := wire["data"].(string)
	require.True(t, ok)
	assert.Contains(t, raw, "hi everyone")

	reliable, err := f.packer.Sign(secure, f.alice)
	require.NoError(t, err)
	_, err = f.packer.Verify(reliable)
	require.NoError(t, err)
}

func TestPackerEncryptGroupFansOutKeysToKnownMembersOnly(t *testing.T) {
	f := newFixture(t)

	carolKey, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)
	carolMeta, err := mkm.GenerateMeta(mkm.MetaMKM, carolKey, "carol")
	require.NoError(t, err)
	carolAddr, err := carolMeta.GenerateAddress(mkm.User)
	require.NoError(t, err)
	carol := mkm.IDFromAddress("carol", carolAddr)
	// carol has no visa on file: she must be silently skipped.

	groupKey, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)
	groupMeta, err := mkm.GenerateMeta(mkm.MetaMKM, groupKey, "devs")
	require.NoError(t, err)
	groupAddr, err := groupMeta.GenerateAddress(mkm.Group)
	require.NoError(t, err)
	group := mkm.IDFromAddress("devs", groupAddr)

	bulletin := mkm.NewBulletin(group, f.alice, []mkm.ID{f.bob, carol})
	require.NoError(t, bulletin.Sign(groupKey))
	require.NoError(t, f.archivist.SaveBulletin(group, bulletin))

	env := dkd.NewEnvelope(f.alice, group, time.Now())
	content := dkd.NewContent(dkd.TEXT)
	content.Body["text"] = "standup at 10"
	instant := dkd.NewInstant(env, content)

	secure, err := f.packer.Encrypt(instant)
	require.NoError(t, err)
	require.NotNil(t, secure.Keys)
	assert.Contains(t, secure.Keys, f.bob.String())
	assert.NotContains(t, secure.Keys, carol.String())

	back, err := f.packer.Decrypt(secure, f.bob)
	require.NoError(t, err)
	assert.Equal(t, "standup at 10", back.Content.Body["text"])
}
