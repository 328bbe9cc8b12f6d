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

/**
 *  Instant Message
 *  ~~~~~~~~~~~~~~~
 *  Plain (pre-encryption) message: envelope plus content. Ephemeral —
 *  created for one send and then discarded (spec §3 Lifecycle).
 */
type Instant struct {
	Envelope
	Content *Content
}

func NewInstant(env Envelope, content *Content) *Instant {
	return &Instant{Envelope: env, Content: content}
}

func (m *Instant) ToMap() map[string]interface{} {
	out := m.Envelope.ToMap()
	out["content"] = m.Content.ToMap()
	return out
}

// IsBroadcast reports whether this instant message's receiver (or overt
// group) is broadcast.
func (m *Instant) IsBroadcast() bool {
	return EnvelopeIsBroadcast(m.Envelope)
}

// InstantFromMap parses the wire dictionary form produced by ToMap.
func InstantFromMap(m map[string]interface{}) (*Instant, bool) {
	env, ok := EnvelopeFromMap(m)
	if !ok {
		return nil, false
	}
	contentMap, ok := m["content"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	return &Instant{Envelope: env, Content: ContentFromMap(contentMap)}, true
}
