// Package fsm implements the session transport state machine (spec
// C9): six states coordinating with a four-state porter status, driven
// by a metronome tick rather than blocking I/O.
package fsm

import (
	"sync"
	"time"

	"github.com/dimchat/dim-go/clock"
	"github.com/dimchat/dim-go/log"
	"github.com/dimchat/dim-go/mkm"
)

var logger = log.For("fsm")

// State is the session's own lifecycle state. It is intentionally not
// comparable with PorterStatus — the teacher's original design used one
// shared enum for both concerns and a caller could accidentally compare
// a State to a PorterStatus and get a false positive from equal
// underlying ints; two distinct types make that a compile error.
type State int

const (
	StateDefault State = iota
	StateConnecting
	StateConnected
	StateHandshaking
	StateRunning
	StateError
)

func (s State) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateHandshaking:
		return "handshaking"
	case StateRunning:
		return "running"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// PorterStatus is the lower-level connection status the FSM observes;
// see package gate for the underlying connection states that collapse
// into it (maintaining/expired both read as ready).
type PorterStatus int

const (
	PorterInit PorterStatus = iota
	PorterPreparing
	PorterReady
	PorterError
)

// Expiration is the wall-clock duration after which a non-terminal
// state is considered stuck and eligible for a guard that checks
// "expired" (spec §4.9: 30s).
const Expiration = 30 * time.Second

// Delegate observes state transitions synchronously, during the tick
// that causes them; it must not re-enter the FSM (spec §5 ordering
// guarantee).
type Delegate interface {
	OnStateChanged(prev, cur State, session *Session)
}

// Session is the six-state session FSM. State transitions happen only
// in Tick; the setters and reads (State, SessionReady) are guarded by
// the same mutex and safe to call from other goroutines.
type Session struct {
	mu       sync.RWMutex
	state    State
	enteredAt time.Time
	clock    clock.Clock
	delegate Delegate

	userID           *mkm.ID
	portStatus       PorterStatus
	sessionKey       []byte
	handshakeAccepted bool
	active           bool

	paused bool
}

func NewSession(c clock.Clock) *Session {
	s := &Session{clock: c, state: StateDefault, active: true}
	s.enteredAt = c.Now()
	return s
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetUserID records the locally authenticated user, the guard input
// every outbound transition after "default" depends on.
func (s *Session) SetUserID(id mkm.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = &id
}

// SetPorterStatus feeds the connection's derived status in. Package gate
// does not call it; the caller passes along the status a gate.Delegate
// receives in OnPorterStatusChanged.
func (s *Session) SetPorterStatus(status PorterStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portStatus = status
}

// SetSessionKey records (or clears, with nil) the handshake-negotiated
// session key.
func (s *Session) SetSessionKey(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionKey = key
}

// SetHandshakeAccepted records whether the remote has accepted our
// handshake.
func (s *Session) SetHandshakeAccepted(accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handshakeAccepted = accepted
}

// SessionReady is "active ∧ handshakeAccepted ∧ userId≠null ∧
// sessionKey≠null" (spec §4.9).
func (s *Session) SessionReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionReadyLocked()
}

func (s *Session) sessionReadyLocked() bool {
	return s.active && s.handshakeAccepted && s.userID != nil && len(s.sessionKey) > 0
}

func (s *Session) expiredLocked(now time.Time) bool {
	return now.Sub(s.enteredAt) > Expiration
}

// Start begins ticking with the given delegate; delegate may be nil.
func (s *Session) Start(delegate Delegate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegate = delegate
	s.paused = false
}

func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// Pause stops evaluating transitions on Tick without discarding state;
// the caller is expected to pause the underlying connection next
// (spec §4.9 lifecycle ordering).
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume reverses Pause; the caller is expected to resume the
// underlying connection first.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Tick evaluates the transition table once against the current guard
// inputs. It is meant to be called by a clock.Metronome-driven ticker,
// never directly from a delegate callback.
func (s *Session) Tick() {
	s.mu.Lock()
	now := s.clock.Now()
	if s.paused {
		s.mu.Unlock()
		return
	}
	prev := s.state
	next := s.transition(now)
	if next == prev {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.enteredAt = now
	delegate := s.delegate
	s.mu.Unlock()

	logger.WithField("from", prev.String()).WithField("to", next.String()).Debug("session state transition")
	if delegate != nil {
		delegate.OnStateChanged(prev, next, s)
	}
}

// transition implements the table in spec §4.9; callers hold s.mu.
func (s *Session) transition(now time.Time) State {
	hasUser := s.userID != nil
	status := s.portStatus
	expired := s.expiredLocked(now)

	switch s.state {
	case StateDefault:
		if hasUser && (status == PorterPreparing || status == PorterReady) {
			return StateConnecting
		}
	case StateConnecting:
		if status == PorterReady {
			return StateConnected
		}
		if expired || (status != PorterPreparing && status != PorterReady) {
			return StateError
		}
	case StateConnected:
		if hasUser && status == PorterReady {
			return StateHandshaking
		}
		if !hasUser || status != PorterReady {
			return StateError
		}
	case StateHandshaking:
		if hasUser && status == PorterReady && len(s.sessionKey) > 0 {
			return StateRunning
		}
		if hasUser && status == PorterReady && len(s.sessionKey) == 0 && expired {
			return StateConnected
		}
		if !hasUser || status != PorterReady {
			return StateError
		}
	case StateRunning:
		if status == PorterReady && !s.sessionReadyLocked() {
			return StateDefault
		}
		if status != PorterReady {
			return StateError
		}
	case StateError:
		if status != PorterError {
			return StateDefault
		}
	}
	return s.state
}
