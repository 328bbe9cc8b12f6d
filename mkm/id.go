package mkm

import "strings"

// ID is the immutable string "name@address[/terminal]" identifying an
// entity. Equality and hashing both use the full string (spec §3).
type ID struct {
	value    string
	name     string
	address  Address
	terminal string
}

// well-known identifiers, interned so repeated parses share one value.
var (
	Anyone       = mustID("anyone", Anywhere, "")
	Everyone     = mustID("everyone", Everywhere, "")
	Founder      = mustID("moky", Anywhere, "")
	StationAny   = mustID("station", Anywhere, "")
	StationsAll  = mustID("stations", Everywhere, "")
)

func mustID(name string, addr Address, terminal string) ID {
	return newID(name, addr, terminal)
}

func newID(name string, addr Address, terminal string) ID {
	value := name + "@" + addr.String()
	if terminal != "" {
		value += "/" + terminal
	}
	return ID{value: value, name: name, address: addr, terminal: terminal}
}

// ParseID splits on the first '@' and the last '/'. Empty or oversized
// inputs fail; well-known literals are interned.
func ParseID(s string) (ID, bool) {
	if s == "" || len(s) > 64 {
		return ID{}, false
	}
	switch s {
	case "anyone@anywhere":
		return Anyone, true
	case "everyone@everywhere":
		return Everyone, true
	case "moky@anywhere":
		return Founder, true
	case "station@anywhere":
		return StationAny, true
	case "stations@everywhere":
		return StationsAll, true
	}
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return ID{}, false
	}
	name := s[:at]
	rest := s[at+1:]
	terminal := ""
	if slash := strings.LastIndexByte(rest, '/'); slash >= 0 {
		terminal = rest[slash+1:]
		rest = rest[:slash]
	}
	addr, ok := ParseAddress(rest)
	if !ok {
		return ID{}, false
	}
	return newID(name, addr, terminal), true
}

// IDFromAddress builds an ID with the given name (the meta seed) and no
// terminal from a derived address.
func IDFromAddress(name string, addr Address) ID {
	return newID(name, addr, "")
}

func (id ID) String() string { return id.value }

func (id ID) Name() string { return id.name }

func (id ID) Address() Address { return id.address }

func (id ID) Terminal() string { return id.terminal }

func (id ID) IsEmpty() bool { return id.value == "" }

func (id ID) Equal(other ID) bool { return id.value == other.value }

func (id ID) IsUser() bool { return id.address.IsUser() }

func (id ID) IsGroup() bool { return id.address.IsGroup() }

func (id ID) IsBroadcast() bool { return id.address.IsBroadcast() }
