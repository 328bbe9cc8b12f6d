package gate

import (
	"sync"
	"testing"

	"github.com/dimchat/dim-go/fsm"
	"github.com/dimchat/dim-go/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := append([]byte(nil), p...)
	c.written = append(c.written, cp)
	return len(p), nil
}

func (c *fakeConn) lines() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

type recordingDelegate struct {
	mu        sync.Mutex
	received  [][]byte
	sent      []queue.Item
	statusLog [][2]fsm.PorterStatus
}

func (d *recordingDelegate) OnPorterStatusChanged(prev, cur fsm.PorterStatus, _ *Porter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statusLog = append(d.statusLog, [2]fsm.PorterStatus{prev, cur})
}
func (d *recordingDelegate) OnPorterReceived(message []byte, _ *Porter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.received = append(d.received, message)
}
func (d *recordingDelegate) OnPorterSent(item queue.Item, _ *Porter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, item)
}
func (d *recordingDelegate) OnPorterFailed(error, queue.Item, *Porter) {}
func (d *recordingDelegate) OnPorterError(error, queue.Item, *Porter)  {}

func TestPorterReceiveEmptyPayloadDropped(t *testing.T) {
	delegate := &recordingDelegate{}
	p := NewPorter(&fakeConn{}, queue.NewPriorityQueue(), delegate, false)
	p.Receive(nil)
	assert.Empty(t, delegate.received)
}

func TestPorterReceiveOpaquePayloadDeliveredWhole(t *testing.T) {
	delegate := &recordingDelegate{}
	p := NewPorter(&fakeConn{}, queue.NewPriorityQueue(), delegate, false)
	p.Receive([]byte{0x01, 0x02, 0x03})
	require.Len(t, delegate.received, 1)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, delegate.received[0])
}

func TestPorterReceiveSplitsJSONLinesOnNewline(t *testing.T) {
	delegate := &recordingDelegate{}
	p := NewPorter(&fakeConn{}, queue.NewPriorityQueue(), delegate, false)
	payload := []byte("{\"a\":1}\n{\"b\":2}\n\n")
	p.Receive(payload)
	require.Len(t, delegate.received, 2)
	assert.Equal(t, `{"a":1}`, string(delegate.received[0]))
	assert.Equal(t, `{"b":2}`, string(delegate.received[1]))
}

func TestPorterAckRepliesBeforeDelivering(t *testing.T) {
	conn := &fakeConn{}
	delegate := &recordingDelegate{}
	p := NewPorter(conn, queue.NewPriorityQueue(), delegate, true)

	p.Receive([]byte(`{"signature": "abc123", "time": 1584186742}`))

	require.Len(t, conn.lines(), 1)
	assert.Equal(t, `ACK:{"time":1584186742,"signature":"abc123"}`, string(conn.lines()[0]))
	require.Len(t, delegate.received, 1)
}

func TestPorterAckToleratesSingleQuotes(t *testing.T) {
	conn := &fakeConn{}
	delegate := &recordingDelegate{}
	p := NewPorter(conn, queue.NewPriorityQueue(), delegate, true)

	p.Receive([]byte(`{'signature' : 'xyz', 'time' : 42}`))
	require.Len(t, conn.lines(), 1)
	assert.Equal(t, `ACK:{"time":42,"signature":"xyz"}`, string(conn.lines()[0]))
}

func TestPorterStatusChangeNotifiesDelegateOnlyOnChange(t *testing.T) {
	delegate := &recordingDelegate{}
	p := NewPorter(&fakeConn{}, queue.NewPriorityQueue(), delegate, false)

	p.SetConnectionState(ConnPreparing)
	p.SetConnectionState(ConnReady)
	p.SetConnectionState(ConnMaintaining) // collapses to ready again: no change

	require.Len(t, delegate.statusLog, 2)
	assert.Equal(t, fsm.PorterReady, delegate.statusLog[1][1])
}

func TestPorterExpiredTriggersHeartbeat(t *testing.T) {
	conn := &fakeConn{}
	delegate := &recordingDelegate{}
	p := NewPorter(conn, queue.NewPriorityQueue(), delegate, false)
	p.SetConnectionState(ConnReady)
	p.SetConnectionState(ConnExpired)
	assert.NotEmpty(t, conn.lines())
}

func TestGateSendRequiresBoundPorter(t *testing.T) {
	g := NewGate(&recordingDelegate{})
	local := SocketAddress{Host: "127.0.0.1", Port: 9000}
	remote := SocketAddress{Host: "127.0.0.1", Port: 9001}
	err := g.Send([]byte("hello"), local, remote)
	assert.Error(t, err)
}

func TestGateDrainsBoundPorterOnTick(t *testing.T) {
	delegate := &recordingDelegate{}
	g := NewGate(delegate)
	conn := &fakeConn{}
	local := SocketAddress{Host: "127.0.0.1", Port: 9000}
	remote := SocketAddress{Host: "127.0.0.1", Port: 9001}
	g.Bind(local, remote, conn, false)

	require.NoError(t, g.Send([]byte("hello"), local, remote))
	g.Tick()

	require.Len(t, conn.lines(), 1)
	assert.Equal(t, "hello", string(conn.lines()[0]))
	assert.Len(t, delegate.sent, 1)
}
