/* license: https://mit-license.org
 *
 *  Dao-Ke-Dao: Universal Message Module
 *
 *                                Written in 2026
 *
 * ==============================================================================
 * The MIT License (MIT)
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 * ==============================================================================
 */
package dkd

import (
	"time"

	"github.com/dimchat/dim-go/mkm"
)

/**
 *  Envelope for message
 *  ~~~~~~~~~~~~~~~~~~~~
 *  Carries 'sender', 'receiver' and 'time'; 'group' is set when a group
 *  message has been split/trimmed to a single member to hide the group
 *  ID, and 'type' lets intermediaries see the content type even though
 *  the content itself is normally opaque after encryption.
 */
type Envelope struct {
	Sender   mkm.ID
	Receiver mkm.ID
	When     time.Time
	Group    *mkm.ID
	Type     uint8
}

func NewEnvelope(sender, receiver mkm.ID, when time.Time) Envelope {
	if when.IsZero() {
		when = time.Now()
	}
	return Envelope{Sender: sender, Receiver: receiver, When: when}
}

// Clone returns a shallow copy. Every Instant->Secure->Reliable
// transition copies the envelope instead of mutating it in place.
func (e Envelope) Clone() Envelope {
	clone := e
	if e.Group != nil {
		g := *e.Group
		clone.Group = &g
	}
	return clone
}

func (e Envelope) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"sender":   e.Sender.String(),
		"receiver": e.Receiver.String(),
		"time":     e.When.Unix(),
	}
	if e.Group != nil {
		m["group"] = e.Group.String()
	}
	if e.Type != 0 {
		m["type"] = e.Type
	}
	return m
}

// EnvelopeFromMap parses the envelope fields out of a wire dictionary.
func EnvelopeFromMap(m map[string]interface{}) (Envelope, bool) {
	senderStr, _ := m["sender"].(string)
	receiverStr, _ := m["receiver"].(string)
	sender, ok1 := mkm.ParseID(senderStr)
	receiver, ok2 := mkm.ParseID(receiverStr)
	if !ok1 || !ok2 {
		return Envelope{}, false
	}
	env := Envelope{Sender: sender, Receiver: receiver}
	if ts, ok := asInt64(m["time"]); ok {
		env.When = time.Unix(ts, 0)
	} else {
		env.When = time.Now()
	}
	if g, ok := m["group"].(string); ok && g != "" {
		if gid, ok := mkm.ParseID(g); ok {
			env.Group = &gid
		}
	}
	if t, ok := asUint8(m["type"]); ok {
		env.Type = t
	}
	return env, true
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asUint8(v interface{}) (uint8, bool) {
	switch n := v.(type) {
	case uint8:
		return n, true
	case int:
		return uint8(n), true
	case float64:
		return uint8(n), true
	default:
		return 0, false
	}
}
