package mkm

import (
	"encoding/json"

	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/dimerr"
)

// DocumentType distinguishes a user profile (Visa) from a group
// announcement (Bulletin) — spec §3's "TAI" subtypes.
type DocumentType string

const (
	DocVisa     DocumentType = "visa"
	DocBulletin DocumentType = "bulletin"
)

// Document is the signature-verifiable "TAI" layer: identity, a JSON
// data blob, and a signature over that blob (spec §3).
type Document struct {
	ID         ID
	Type       DocumentType
	Properties map[string]interface{}

	data      []byte // cached canonical encoding of Properties
	signature []byte
}

// NewDocument creates an unsigned document; call Sign before sending.
func NewDocument(id ID, docType DocumentType, properties map[string]interface{}) *Document {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	return &Document{ID: id, Type: docType, Properties: properties}
}

// SetProperty mutates a property and invalidates the cached signature
// (spec: "mutating any property invalidates both data and signature").
func (d *Document) SetProperty(key string, value interface{}) {
	d.Properties[key] = value
	d.data = nil
	d.signature = nil
}

// Sign serializes Properties to canonical JSON and signs it, covering
// exactly the bytes that Verify later checks.
func (d *Document) Sign(priv crypto.PrivateKey) error {
	data, err := json.Marshal(d.Properties)
	if err != nil {
		return err
	}
	sig, err := priv.Sign(data)
	if err != nil {
		return err
	}
	d.data = data
	d.signature = sig
	return nil
}

// Verify checks the stored data/signature pair (set by Sign or
// LoadDocument) against the given public key; an unsigned document
// never verifies.
func (d *Document) Verify(pub crypto.PublicKey) bool {
	if d.data == nil || d.signature == nil {
		return false
	}
	return pub.Verify(d.data, d.signature)
}

func (d *Document) IsSigned() bool {
	return d.data != nil && d.signature != nil
}

// Data returns the raw signed bytes, or nil if unsigned.
func (d *Document) Data() []byte { return d.data }

// Signature returns the raw signature bytes, or nil if unsigned.
func (d *Document) Signature() []byte { return d.signature }

// LoadDocument reconstructs a Document from its wire fields (used when
// parsing an inbound meta/visa attachment); it does not re-verify.
func LoadDocument(id ID, docType DocumentType, data, signature []byte) (*Document, error) {
	var props map[string]interface{}
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, dimerr.Wrap(dimerr.KindProtocol, err)
	}
	return &Document{ID: id, Type: docType, Properties: props, data: data, signature: signature}, nil
}

// Visa is a user document carrying profile fields plus a rotatable
// encryption public key (used by msg.Packer to wrap symmetric keys).
type Visa struct {
	*Document
	EncryptKey crypto.PublicKey
}

func NewVisa(id ID, encryptKey crypto.PublicKey) *Visa {
	doc := NewDocument(id, DocVisa, map[string]interface{}{})
	return &Visa{Document: doc, EncryptKey: encryptKey}
}

// Bulletin is a group document announcing owner and members.
type Bulletin struct {
	*Document
	Owner   ID
	Members []ID
}

func NewBulletin(id, owner ID, members []ID) *Bulletin {
	doc := NewDocument(id, DocBulletin, map[string]interface{}{})
	return &Bulletin{Document: doc, Owner: owner, Members: members}
}
