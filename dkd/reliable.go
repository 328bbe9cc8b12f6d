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
 *  Reliable Message
 *  ~~~~~~~~~~~~~~~~
 *  A Secure message signed by the sender's private key. May carry a
 *  'meta' and/or 'visa' attachment for first-contact identity bootstrap
 *  (spec §4.4.3) — both are carried as raw maps here. msg.Packer does
 *  not read them, and nothing hands them to the entity archivist.
 */
type Reliable struct {
	Secure
	Signature []byte
	MetaData  map[string]interface{}
	VisaData  map[string]interface{}
}

func (m *Reliable) ToMap() map[string]interface{} {
	out := m.Secure.ToMap()
	out["signature"] = NewDataTED(m.Signature)
	if m.MetaData != nil {
		out["meta"] = m.MetaData
	}
	if m.VisaData != nil {
		out["visa"] = m.VisaData
	}
	return out
}

// ReliableFromMap parses the wire dictionary form; a message missing
// sender/data/signature is not reliable (spec §4.4 factory rule).
func ReliableFromMap(m map[string]interface{}) (*Reliable, bool) {
	sm, ok := SecureFromMap(m)
	if !ok {
		return nil, false
	}
	sigRaw, ok := m["signature"]
	if !ok {
		return nil, false
	}
	sig, err := decodeDataField(sigRaw)
	if err != nil {
		return nil, false
	}
	rm := &Reliable{Secure: *sm, Signature: sig}
	if meta, ok := m["meta"].(map[string]interface{}); ok {
		rm.MetaData = meta
	}
	if visa, ok := m["visa"].(map[string]interface{}); ok {
		rm.VisaData = visa
	}
	return rm, true
}
