package gate

import (
	"fmt"
	"sync"

	"github.com/dimchat/dim-go/dimerr"
	"github.com/dimchat/dim-go/queue"
)

// SocketAddress is a minimal "host:port" pair used as a multiplexing
// key; the transport package's websocket dialer fills these in from
// the actual net.Addr.
type SocketAddress struct {
	Host string
	Port uint16
}

func (a SocketAddress) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

func pairKey(local, remote SocketAddress) string {
	return local.String() + "->" + remote.String()
}

// Gate owns a pool of Porters keyed by (local, remote) address pairs,
// creating them on demand and forwarding every porter's events to one
// shared delegate (spec §4.10 "Gate").
type Gate struct {
	mu       sync.Mutex
	porters  map[string]*Porter
	delegate Delegate
}

func NewGate(delegate Delegate) *Gate {
	return &Gate{porters: map[string]*Porter{}, delegate: delegate}
}

// Bind registers (or replaces) the porter for a (local, remote) pair,
// called once a connection is established.
func (g *Gate) Bind(local, remote SocketAddress, conn Conn, ackEnabled bool) *Porter {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := NewPorter(conn, queue.NewPriorityQueue(), g.delegate, ackEnabled)
	g.porters[pairKey(local, remote)] = p
	return p
}

func (g *Gate) porterFor(local, remote SocketAddress) (*Porter, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.porters[pairKey(local, remote)]
	return p, ok
}

// Send locates the porter for (local, remote) and enqueues the payload
// at normal priority, erroring if no porter is bound yet.
func (g *Gate) Send(payload []byte, local, remote SocketAddress) error {
	return g.SendShip(queue.Item{Priority: queue.PriorityNormal, Payload: payload}, local, remote)
}

// SendShip accepts a preformed outgoing item (with explicit priority
// and dedup signature) and enqueues it on the matching porter.
func (g *Gate) SendShip(item queue.Item, local, remote SocketAddress) error {
	p, ok := g.porterFor(local, remote)
	if !ok {
		return dimerr.Wrap(dimerr.KindTransport, dimerr.ErrConnectionClosed)
	}
	p.outbox.Enqueue(item)
	return nil
}

// Tick drives every bound porter's outbound drain once; called by the
// metronome alongside the session FSM tickers (spec §5).
func (g *Gate) Tick() {
	g.mu.Lock()
	porters := make([]*Porter, 0, len(g.porters))
	for _, p := range g.porters {
		porters = append(porters, p)
	}
	g.mu.Unlock()

	for _, p := range porters {
		p.Drain()
	}
}

// Close removes a porter from the pool, e.g. after its connection
// closes.
func (g *Gate) Close(local, remote SocketAddress) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.porters, pairKey(local, remote))
}
