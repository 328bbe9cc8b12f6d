// Package messenger assembles the Packer (C4), key cache (C5), session
// FSM (C9) and gate (C10) into the single façade applications drive
// (spec §4.6): it owns the local user and the entity archivist, and is
// the only thing allowed to mutate the shared cipher-key and archivist
// stores (spec §5 "shared-resource policy").
package messenger

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dimchat/dim-go/dedup"
	"github.com/dimchat/dim-go/dimerr"
	"github.com/dimchat/dim-go/dkd"
	"github.com/dimchat/dim-go/fsm"
	"github.com/dimchat/dim-go/gate"
	"github.com/dimchat/dim-go/mkm"
	"github.com/dimchat/dim-go/msg"
	"github.com/dimchat/dim-go/queue"
)

// ContentHandler dispatches verified, decrypted content to the
// application layer.
type ContentHandler func(content *dkd.Content, envelope dkd.Envelope)

// Parked is an outbound message waiting on a receiver's visa to
// arrive before it can be encrypted.
type Parked struct {
	Instant  *dkd.Instant
	Priority int
}

// Messenger is the send/receive façade.
type Messenger struct {
	mu sync.Mutex

	LocalUser mkm.ID
	Archivist msg.Archivist
	Packer    *msg.Packer
	Session   *fsm.Session
	Gate      *gate.Gate
	Local     gate.SocketAddress
	Remote    gate.SocketAddress

	dedup   *dedup.Pool
	handler ContentHandler
	parked  []Parked
}

func New(localUser mkm.ID, archivist msg.Archivist, packer *msg.Packer, session *fsm.Session, g *gate.Gate, local, remote gate.SocketAddress, dedupPool *dedup.Pool, handler ContentHandler) *Messenger {
	return &Messenger{
		LocalUser: localUser,
		Archivist: archivist,
		Packer:    packer,
		Session:   session,
		Gate:      g,
		Local:     local,
		Remote:    remote,
		dedup:     dedupPool,
		handler:   handler,
	}
}

// Send encrypts, signs and enqueues application content addressed to
// receiver. If the receiver's visa is not yet on file, the message is
// parked (returned Reliable is nil) until a later RetryParked call
// finds the visa (spec §4.6 "parks the message and re-attempts after
// visa arrival").
func (m *Messenger) Send(content *dkd.Content, receiver mkm.ID, priority int) (*dkd.Instant, *dkd.Reliable, error) {
	env := dkd.NewEnvelope(m.LocalUser, receiver, time.Now())
	instant := dkd.NewInstant(env, content)
	return m.SendInstant(instant, priority)
}

// SendInstant is the pipeline entry point for a caller that already
// built the Instant message itself.
func (m *Messenger) SendInstant(instant *dkd.Instant, priority int) (*dkd.Instant, *dkd.Reliable, error) {
	if !instant.IsBroadcast() {
		if _, ok := m.Archivist.Visa(instant.Receiver); !ok {
			m.mu.Lock()
			m.parked = append(m.parked, Parked{Instant: instant, Priority: priority})
			m.mu.Unlock()
			return instant, nil, nil
		}
	}

	secure, err := m.Packer.Encrypt(instant)
	if err != nil {
		return instant, nil, err
	}
	reliable, err := m.Packer.Sign(secure, instant.Sender)
	if err != nil {
		return instant, nil, err
	}
	if err := m.SendReliable(reliable, priority); err != nil {
		return instant, reliable, err
	}
	return instant, reliable, nil
}

// SendReliable serializes an already-packed Reliable message and
// enqueues it on the priority queue of the gate's porter for
// (Local, Remote) (spec §4.6).
func (m *Messenger) SendReliable(reliable *dkd.Reliable, priority int) error {
	payload, err := json.Marshal(reliable.ToMap())
	if err != nil {
		return dimerr.Wrap(dimerr.KindProtocol, err)
	}
	item := queue.Item{
		Priority:  priority,
		Payload:   payload,
		Signature: reliable.Signature,
		Receiver:  reliable.Receiver,
	}
	return m.Gate.SendShip(item, m.Local, m.Remote)
}

// RetryParked attempts to send every message parked on a missing visa;
// messages whose visa is now available are dequeued and re-entered
// through SendInstant, others remain parked.
func (m *Messenger) RetryParked() {
	m.mu.Lock()
	pending := m.parked
	m.parked = nil
	m.mu.Unlock()

	for _, p := range pending {
		if _, _, err := m.SendInstant(p.Instant, p.Priority); err != nil {
			m.mu.Lock()
			m.parked = append(m.parked, p)
			m.mu.Unlock()
		}
	}
}

// Receive deserializes one inbound wire payload, verifies and decrypts
// it, drops it if already seen, and dispatches the resulting content
// to the registered handler (spec §4.6 "on receive").
func (m *Messenger) Receive(payload []byte) error {
	var wire map[string]interface{}
	if err := json.Unmarshal(payload, &wire); err != nil {
		return dimerr.Wrap(dimerr.KindProtocol, err)
	}
	reliable, ok := dkd.ReliableFromMap(wire)
	if !ok {
		return dimerr.Wrap(dimerr.KindProtocol, dimerr.ErrBadShape)
	}

	if m.dedup.Seen(reliable.Signature, reliable.Receiver) {
		return nil
	}

	secure, err := m.Packer.Verify(reliable)
	if err != nil {
		return err
	}
	instant, err := m.Packer.Decrypt(secure, m.LocalUser)
	if err != nil {
		return err
	}

	if m.handler != nil {
		m.handler(instant.Content, instant.Envelope)
	}
	return nil
}
