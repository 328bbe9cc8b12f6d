// Package dedup implements the signature-pool duplicate suppression the
// messenger uses to drop a Reliable message it has already processed
// (spec C7): keyed by the last 16 bytes of the signature plus the
// receiver's address, with a one-hour sliding window and a lazy sweep.
package dedup

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/dimchat/dim-go/clock"
	"github.com/dimchat/dim-go/mkm"
)

const (
	// Window is how long a signature is remembered before it may be
	// seen again without being treated as a duplicate.
	Window = time.Hour
	// SweepInterval bounds how often Seen lazily evicts expired
	// entries, so a busy pool doesn't pay the sweep cost on every call.
	SweepInterval = 300 * time.Second
)

// Pool tracks recently seen (signature tail, receiver) pairs.
type Pool struct {
	mu        sync.Mutex
	clock     clock.Clock
	seen      map[string]time.Time
	lastSweep time.Time
}

func NewPool(c clock.Clock) *Pool {
	return &Pool{clock: c, seen: map[string]time.Time{}}
}

func key(signature []byte, receiver mkm.ID) string {
	tail := signature
	if len(tail) > 16 {
		tail = tail[len(tail)-16:]
	}
	return hex.EncodeToString(tail) + ":" + receiver.Address().String()
}

// Seen records (signature, receiver) and reports whether it had already
// been seen within the last hour. A duplicate's timestamp is refreshed,
// extending its window, matching a client that keeps retrying the same
// send (spec C7: "sliding window").
func (p *Pool) Seen(signature []byte, receiver mkm.ID) bool {
	now := p.clock.Now()
	k := key(signature, receiver)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.sweep(now)

	if expiry, ok := p.seen[k]; ok && now.Before(expiry) {
		p.seen[k] = now.Add(Window)
		return true
	}
	p.seen[k] = now.Add(Window)
	return false
}

// sweep evicts expired entries at most once per SweepInterval; callers
// already hold p.mu.
func (p *Pool) sweep(now time.Time) {
	if !p.lastSweep.IsZero() && now.Sub(p.lastSweep) < SweepInterval {
		return
	}
	p.lastSweep = now
	for k, expiry := range p.seen {
		if !now.Before(expiry) {
			delete(p.seen, k)
		}
	}
}

// Len reports the number of entries currently tracked, for tests and
// diagnostics; it does not trigger a sweep.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}
