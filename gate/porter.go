// Package gate implements the Porter/Gate framing and multiplexing
// layer (spec §4.10 / C10): newline-delimited JSON messages over a byte
// stream, an ACK reply mechanism, and a heartbeat on connection expiry.
package gate

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dimchat/dim-go/fsm"
	"github.com/dimchat/dim-go/log"
	"github.com/dimchat/dim-go/queue"
	"github.com/google/uuid"
)

var logger = log.For("gate")

// ConnectionState is the underlying connection's own state, which
// collapses into a fsm.PorterStatus (maintaining/expired both read as
// ready — spec §4.10).
type ConnectionState int

const (
	ConnInit ConnectionState = iota
	ConnPreparing
	ConnReady
	ConnMaintaining
	ConnExpired
	ConnError
)

// DerivePorterStatus maps a connection state down to the four-state
// porter status the session FSM observes.
func DerivePorterStatus(cs ConnectionState) fsm.PorterStatus {
	switch cs {
	case ConnInit:
		return fsm.PorterInit
	case ConnPreparing:
		return fsm.PorterPreparing
	case ConnReady, ConnMaintaining, ConnExpired:
		return fsm.PorterReady
	default:
		return fsm.PorterError
	}
}

// Delegate receives porter lifecycle events (spec §4.10).
type Delegate interface {
	OnPorterStatusChanged(prev, cur fsm.PorterStatus, porter *Porter)
	OnPorterReceived(message []byte, porter *Porter)
	OnPorterSent(departure queue.Item, porter *Porter)
	OnPorterFailed(err error, departure queue.Item, porter *Porter)
	OnPorterError(err error, departure queue.Item, porter *Porter)
}

// Conn is the minimal byte-stream the porter frames and writes to; a
// net.Conn satisfies it directly, and transport.WSConn adapts a
// *websocket.Conn to it.
type Conn interface {
	Write(p []byte) (int, error)
}

// Porter owns one connection: inbound framing/ACK and the outbound
// priority-queue drain loop.
type Porter struct {
	mu       sync.Mutex
	id       uuid.UUID
	conn     Conn
	status   fsm.PorterStatus
	connState ConnectionState
	outbox   *queue.PriorityQueue
	delegate Delegate
	ackEnabled bool
}

func NewPorter(conn Conn, outbox *queue.PriorityQueue, delegate Delegate, ackEnabled bool) *Porter {
	return &Porter{
		id:       uuid.New(),
		conn:     conn,
		outbox:   outbox,
		delegate: delegate,
		ackEnabled: ackEnabled,
		status:   fsm.PorterInit,
		connState: ConnInit,
	}
}

// ID is a process-unique identifier for this porter, used to correlate
// log lines across its lifetime.
func (p *Porter) ID() uuid.UUID {
	return p.id
}

func (p *Porter) Status() fsm.PorterStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetConnectionState updates the underlying connection state, deriving
// and — if changed — reporting the collapsed porter status.
func (p *Porter) SetConnectionState(cs ConnectionState) {
	p.mu.Lock()
	next := DerivePorterStatus(cs)
	prev := p.status
	p.connState = cs
	p.status = next
	delegate := p.delegate
	p.mu.Unlock()

	if next != prev && delegate != nil {
		delegate.OnPorterStatusChanged(prev, next, p)
	}
	if cs == ConnExpired {
		p.sendHeartbeat()
	}
}

func (p *Porter) sendHeartbeat() {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return
	}
	_, _ = conn.Write([]byte("\n")) // smallest possible keep-alive frame
}

var ackFieldPattern = regexp.MustCompile(`["']?(signature|time)["']?\s*:\s*["']?([^,"'}\s]+)["']?`)

// Receive applies the inbound framing rule to one arrival and, for an
// ACK-enabled porter, replies before delivering to the delegate
// (spec §4.10 "Inbound framing" / "ACK variant").
func (p *Porter) Receive(payload []byte) {
	if len(payload) == 0 {
		return
	}

	var messages [][]byte
	if payload[0] == '{' {
		for _, line := range bytes.Split(payload, []byte{'\n'}) {
			if len(bytes.TrimSpace(line)) > 0 {
				messages = append(messages, line)
			}
		}
	} else {
		messages = [][]byte{payload}
	}

	p.mu.Lock()
	ackEnabled := p.ackEnabled
	conn := p.conn
	delegate := p.delegate
	p.mu.Unlock()

	for _, m := range messages {
		if ackEnabled {
			if reply, ok := buildAck(m); ok && conn != nil {
				_, _ = conn.Write([]byte(reply))
			}
		}
		if delegate != nil {
			delegate.OnPorterReceived(m, p)
		}
	}
}

// buildAck extracts "signature" and "time" fields (tolerating ' or "
// quoting and surrounding whitespace) and renders the ASCII ACK reply.
func buildAck(payload []byte) (string, bool) {
	fields := map[string]string{}
	for _, match := range ackFieldPattern.FindAllStringSubmatch(string(payload), -1) {
		fields[match[1]] = strings.Trim(match[2], `"'`)
	}
	sig, hasSig := fields["signature"]
	t, hasTime := fields["time"]
	if !hasSig || !hasTime {
		return "", false
	}
	return fmt.Sprintf(`ACK:{"time":%s,"signature":"%s"}`, t, sig), true
}

// Drain services one tick of the outbound loop: it pops the head of
// the priority queue, if any, and writes it to the connection,
// reporting success or failure via the delegate (spec §4.10 "Outbound
// loop"; retry/timeout semantics live in a departure hall above this,
// out of this package's scope).
func (p *Porter) Drain() {
	item, ok := p.outbox.Dequeue()
	if !ok {
		return
	}
	p.mu.Lock()
	conn := p.conn
	delegate := p.delegate
	p.mu.Unlock()

	if conn == nil {
		return
	}
	_, err := conn.Write(item.Payload)
	if err != nil {
		logger.WithError(err).WithField("porter", p.id.String()).Warn("porter write failed")
	}
	if delegate == nil {
		return
	}
	if err != nil {
		delegate.OnPorterFailed(err, item, p)
		return
	}
	delegate.OnPorterSent(item, p)
}
