// Package transport adapts the gate package's minimal Conn interface
// to a real network transport: a gorilla/websocket connection,
// matching the pack's standard choice for this concern (spec §4.10
// Porter sits on top of whatever Conn this package hands it).
package transport

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/dimchat/dim-go/gate"
	"github.com/gorilla/websocket"
)

// WSConn wraps a *websocket.Conn so it satisfies gate.Conn by sending
// every payload as one binary message instead of raw stream bytes.
type WSConn struct {
	conn *websocket.Conn
}

func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

func (w *WSConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WSConn) Close() error {
	return w.conn.Close()
}

// Dial connects to a ws(s):// URL and returns the wrapped connection
// along with the local/remote socket addresses gate.Gate keys porters
// by.
func Dial(rawURL string, handshakeTimeout time.Duration) (*WSConn, gate.SocketAddress, gate.SocketAddress, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(rawURL, nil)
	if err != nil {
		return nil, gate.SocketAddress{}, gate.SocketAddress{}, err
	}
	local := addrToSocket(conn.LocalAddr())
	remote := addrToSocket(conn.RemoteAddr())
	return NewWSConn(conn), local, remote, nil
}

func addrToSocket(addr net.Addr) gate.SocketAddress {
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return gate.SocketAddress{Host: addr.String()}
	}
	port, _ := strconv.Atoi(portStr)
	return gate.SocketAddress{Host: host, Port: uint16(port)}
}

// ParseStationURL normalizes a station's advertised host:port into a
// ws:// (or, when secure, wss://) dial target, as cmd/dimcli does for
// the first configured station.
func ParseStationURL(host string, port uint16, secure bool) string {
	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: net.JoinHostPort(host, strconv.Itoa(int(port)))}
	return u.String()
}

// ReadLoop blocks reading binary/text messages from the connection and
// hands each to the porter's Receive until the connection errs or
// closes; intended to run in its own goroutine per connection, since
// gorilla/websocket's ReadMessage is itself blocking.
func ReadLoop(conn *websocket.Conn, onMessage func([]byte), onClose func(error)) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			onClose(err)
			return
		}
		onMessage(data)
	}
}
