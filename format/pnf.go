package format

// PNF (Portable Network File) references a remote file with an optional
// inline TED payload and symmetric decryption key (spec §4.2). Any
// subset of fields may be present; setters that receive a zero value
// remove the key from the underlying map-like form.
type PNF struct {
	data     *TED
	filename string
	url      string
	key      []byte
}

func NewPNF() *PNF {
	return &PNF{}
}

func (p *PNF) Data() *TED { return p.data }

func (p *PNF) SetData(data *TED) { p.data = data }

func (p *PNF) Filename() string { return p.filename }

func (p *PNF) SetFilename(name string) { p.filename = name }

func (p *PNF) URL() string { return p.url }

func (p *PNF) SetURL(url string) { p.url = url }

// Key is the symmetric key needed to decrypt the content behind URL.
func (p *PNF) Key() []byte { return p.key }

func (p *PNF) SetKey(key []byte) { p.key = key }

// ToMap canonicalizes to the wire dictionary, omitting absent fields.
func (p *PNF) ToMap() map[string]interface{} {
	out := map[string]interface{}{}
	if p.data != nil {
		out["data"] = p.data.String()
	}
	if p.filename != "" {
		out["filename"] = p.filename
	}
	if p.url != "" {
		out["URL"] = p.url
	}
	if len(p.key) > 0 {
		out["key"] = NewTED(p.key).String()
	}
	return out
}

// PNFFromMap reconstructs a PNF from its wire dictionary.
func PNFFromMap(m map[string]interface{}) (*PNF, error) {
	p := NewPNF()
	if v, ok := m["data"].(string); ok && v != "" {
		ted, err := ParseTED(v)
		if err != nil {
			return nil, err
		}
		p.data = &ted
	}
	if v, ok := m["filename"].(string); ok {
		p.filename = v
	}
	if v, ok := m["URL"].(string); ok {
		p.url = v
	}
	if v, ok := m["key"].(string); ok && v != "" {
		ted, err := ParseTED(v)
		if err != nil {
			return nil, err
		}
		p.key = ted.Data
	}
	return p, nil
}
