/* license: https://mit-license.org
 *
 *  Dao-Ke-Dao: Universal Message Module
 *
 *                                Written in 2026
 * ==============================================================================
 * The MIT License (MIT)
 * ==============================================================================
 */
package dkd

import "github.com/dimchat/dim-go/mkm"

/**
 *  Secure Message
 *  ~~~~~~~~~~~~~~
 *  An Instant message encrypted with a symmetric key. Data holds the
 *  ciphertext (or, for broadcast messages, the plaintext UTF-8 JSON
 *  content); Key/Keys hold the symmetric key wrapped for one receiver
 *  or fanned out per group member.
 */
type Secure struct {
	Envelope
	Data []byte
	Key  []byte          // single-receiver wrapped symmetric key
	Keys map[string][]byte // group fan-out: receiver ID string -> wrapped key
}

// IsBroadcast reports whether this secure message's receiver (or overt
// group) is broadcast, meaning Data is plaintext JSON rather than
// ciphertext and no wrapped key is attached.
func (m *Secure) IsBroadcast() bool {
	return EnvelopeIsBroadcast(m.Envelope)
}

func (m *Secure) ToMap() map[string]interface{} {
	out := m.Envelope.ToMap()
	if m.IsBroadcast() {
		// Broadcast content never gets a key, so it travels as the raw
		// UTF-8 JSON rather than a base64 TED (spec §3).
		out["data"] = string(m.Data)
		return out
	}
	out["data"] = NewDataTED(m.Data)
	if m.Key != nil {
		out["key"] = NewDataTED(m.Key)
	}
	if len(m.Keys) > 0 {
		keys := make(map[string]string, len(m.Keys))
		for id, k := range m.Keys {
			keys[id] = NewDataTED(k)
		}
		out["keys"] = keys
	}
	return out
}

// KeyFor returns the wrapped symmetric key meant for the given
// receiver, checking Key first, then Keys[receiver.String()].
func (m *Secure) KeyFor(receiver mkm.ID) []byte {
	if m.Key != nil {
		return m.Key
	}
	if m.Keys != nil {
		return m.Keys[receiver.String()]
	}
	return nil
}

// Split trims a group-addressed secure message into one message per
// member: the receiver (group ID) moves to Group, and each member gets
// its own Key pulled out of Keys (spec §4.3).
func (m *Secure) Split(members []mkm.ID) []*Secure {
	out := make([]*Secure, 0, len(members))
	for _, member := range members {
		clone := m.Envelope.Clone()
		group := m.Receiver
		clone.Group = &group
		clone.Receiver = member
		sm := &Secure{Envelope: clone, Data: m.Data}
		if m.Keys != nil {
			if k, ok := m.Keys[member.String()]; ok {
				sm.Key = k
			}
		} else {
			sm.Key = m.Key
		}
		out = append(out, sm)
	}
	return out
}

// Trim extracts a single member's view of a (possibly still
// group-addressed) secure message without discarding the others.
func (m *Secure) Trim(member mkm.ID) *Secure {
	clone := m.Envelope.Clone()
	if clone.Group == nil {
		group := m.Receiver
		clone.Group = &group
	}
	clone.Receiver = member
	sm := &Secure{Envelope: clone, Data: m.Data, Key: m.Key}
	if m.Keys != nil {
		if k, ok := m.Keys[member.String()]; ok {
			sm.Key = k
		}
	}
	return sm
}

// SecureFromMap parses the wire dictionary form.
func SecureFromMap(m map[string]interface{}) (*Secure, bool) {
	env, ok := EnvelopeFromMap(m)
	if !ok {
		return nil, false
	}
	var data []byte
	if EnvelopeIsBroadcast(env) {
		s, ok := m["data"].(string)
		if !ok {
			return nil, false
		}
		data = []byte(s)
	} else {
		d, err := decodeDataField(m["data"])
		if err != nil {
			return nil, false
		}
		data = d
	}
	sm := &Secure{Envelope: env, Data: data}
	if keyStr, ok := m["key"].(string); ok && keyStr != "" {
		key, err := decodeDataField(keyStr)
		if err == nil {
			sm.Key = key
		}
	}
	if keysMap, ok := m["keys"].(map[string]interface{}); ok {
		sm.Keys = make(map[string][]byte, len(keysMap))
		for id, v := range keysMap {
			if s, ok := v.(string); ok {
				if key, err := decodeDataField(s); err == nil {
					sm.Keys[id] = key
				}
			}
		}
	}
	return sm, true
}
