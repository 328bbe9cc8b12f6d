package messenger

import (
	"testing"
	"time"

	"github.com/dimchat/dim-go/clock"
	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/dedup"
	"github.com/dimchat/dim-go/dkd"
	"github.com/dimchat/dim-go/fsm"
	"github.com/dimchat/dim-go/gate"
	"github.com/dimchat/dim-go/mkm"
	"github.com/dimchat/dim-go/msg"
	"github.com/dimchat/dim-go/queue"
	"github.com/dimchat/dim-go/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loopbackConn struct {
	received [][]byte
}

func (c *loopbackConn) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	c.received = append(c.received, cp)
	return len(p), nil
}

type party struct {
	id        mkm.ID
	priv      *crypto.ECCPrivateKey
	archivist *stores.MemoryArchivist
	private   *stores.MemoryPrivateKeyStore
}

func newParty(t *testing.T, name string) *party {
	t.Helper()
	priv, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)
	meta, err := mkm.GenerateMeta(mkm.MetaMKM, priv, name)
	require.NoError(t, err)
	addr, err := meta.GenerateAddress(mkm.User)
	require.NoError(t, err)
	id := mkm.IDFromAddress(name, addr)

	archivist := stores.NewMemoryArchivist()
	require.NoError(t, archivist.SaveMeta(id, meta))
	visa := mkm.NewVisa(id, priv.PublicKey())
	require.NoError(t, visa.Sign(priv))
	require.NoError(t, archivist.SaveVisa(id, visa))

	private := stores.NewMemoryPrivateKeyStore()
	private.SavePrivateKey(id, priv)

	return &party{id: id, priv: priv, archivist: archivist, private: private}
}

// sharedArchivist lets two parties each resolve the other's public
// meta/visa, as a real deployment's shared entity archivist would.
type sharedArchivist struct {
	parties []*party
}

func (s *sharedArchivist) Meta(id mkm.ID) (*mkm.Meta, bool) {
	for _, p := range s.parties {
		if m, ok := p.archivist.Meta(id); ok {
			return m, ok
		}
	}
	return nil, false
}

func (s *sharedArchivist) Visa(id mkm.ID) (*mkm.Visa, bool) {
	for _, p := range s.parties {
		if v, ok := p.archivist.Visa(id); ok {
			return v, ok
		}
	}
	return nil, false
}

func (s *sharedArchivist) Members(group mkm.ID) ([]mkm.ID, bool) {
	for _, p := range s.parties {
		if m, ok := p.archivist.Members(group); ok {
			return m, ok
		}
	}
	return nil, false
}

func TestMessengerSendEnqueuesOnGateAndReceiverDecodes(t *testing.T) {
	alice := newParty(t, "alice")
	bob := newParty(t, "bob")
	shared := &sharedArchivist{parties: []*party{alice, bob}}

	keyCache := msg.NewKeyCache(crypto.AESKeyFactory{}, stores.NewMemoryKeyStore())
	packer := msg.NewPacker(keyCache, shared, alice.private, crypto.AESKeyFactory{})

	session := fsm.NewSession(clock.NewFixed(time.Now()))
	var received *dkd.Content
	g := gate.NewGate(nil)
	local := gate.SocketAddress{Host: "127.0.0.1", Port: 9000}
	remote := gate.SocketAddress{Host: "127.0.0.1", Port: 9001}
	conn := &loopbackConn{}
	g.Bind(local, remote, conn, false)

	m := New(alice.id, shared, packer, session, g, local, remote, dedup.NewPool(clock.NewFixed(time.Now())), func(c *dkd.Content, _ dkd.Envelope) {
		received = c
	})

	content := dkd.NewContent(dkd.TEXT)
	content.Body["text"] = "hello bob"

	_, reliable, err := m.Send(content, bob.id, queue.PriorityNormal)
	require.NoError(t, err)
	require.NotNil(t, reliable)

	g.Tick()
	require.Len(t, conn.received, 1)

	bobKeyCache := msg.NewKeyCache(crypto.AESKeyFactory{}, stores.NewMemoryKeyStore())
	bobPacker := msg.NewPacker(bobKeyCache, shared, bob.private, crypto.AESKeyFactory{})
	bobMessenger := New(bob.id, shared, bobPacker, fsm.NewSession(clock.NewFixed(time.Now())), gate.NewGate(nil), local, remote, dedup.NewPool(clock.NewFixed(time.Now())), func(c *dkd.Content, _ dkd.Envelope) {
		received = c
	})

	require.NoError(t, bobMessenger.Receive(conn.received[0]))
	require.NotNil(t, received)
	assert.Equal(t, "hello bob", received.Body["text"])
}

func TestMessengerParksMessageWhenVisaMissing(t *testing.T) {
	alice := newParty(t, "alice")
	strangerArchivist := stores.NewMemoryArchivist()
	strangerPriv, err := crypto.GenerateECCPrivateKey()
	require.NoError(t, err)
	strangerMeta, err := mkm.GenerateMeta(mkm.MetaMKM, strangerPriv, "stranger")
	require.NoError(t, err)
	strangerAddr, err := strangerMeta.GenerateAddress(mkm.User)
	require.NoError(t, err)
	stranger := mkm.IDFromAddress("stranger", strangerAddr)

	keyCache := msg.NewKeyCache(crypto.AESKeyFactory{}, stores.NewMemoryKeyStore())
	packer := msg.NewPacker(keyCache, strangerArchivist, alice.private, crypto.AESKeyFactory{})

	g := gate.NewGate(nil)
	local := gate.SocketAddress{Host: "127.0.0.1", Port: 9000}
	remote := gate.SocketAddress{Host: "127.0.0.1", Port: 9001}
	conn := &loopbackConn{}
	g.Bind(local, remote, conn, false)

	m := New(alice.id, strangerArchivist, packer, fsm.NewSession(clock.NewFixed(time.Now())), g, local, remote, dedup.NewPool(clock.NewFixed(time.Now())), nil)

	content := dkd.NewContent(dkd.TEXT)
	content.Body["text"] = "hi stranger"
	_, reliable, err := m.Send(content, stranger, queue.PriorityNormal)
	require.NoError(t, err)
	assert.Nil(t, reliable)

	require.NoError(t, strangerArchivist.SaveMeta(stranger, strangerMeta))
	strangerVisa := mkm.NewVisa(stranger, strangerPriv.PublicKey())
	require.NoError(t, strangerVisa.Sign(strangerPriv))
	require.NoError(t, strangerArchivist.SaveVisa(stranger, strangerVisa))

	m.RetryParked()
	g.Tick()
	assert.Len(t, conn.received, 1)
}
