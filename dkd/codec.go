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

// Codec is the extension point for application content types: a plain
// struct the host constructs and holds, replacing the teacher's
// process-wide factory-registration singleton (spec Design Notes §9 —
// "avoid global mutable state"). messenger.Messenger neither takes nor
// consults a Codec.
type Codec struct {
	// currently content parsing is generic (ContentFromMap); Codec is
	// reserved for application layers that want typed command wrappers
	// keyed by command name, e.g. commandParsers["receipt"] = parseReceipt.
	commandParsers map[string]func(*Content) interface{}
}

func NewCodec() *Codec {
	return &Codec{commandParsers: map[string]func(*Content) interface{}{}}
}

// RegisterCommand lets the host attach a typed parser for a named
// command ("login", "handshake", ...), looked up from the content's
// "command" field once MsgType == COMMAND.
func (c *Codec) RegisterCommand(name string, parse func(*Content) interface{}) {
	c.commandParsers[name] = parse
}

func (c *Codec) ParseCommand(content *Content) interface{} {
	name, _ := content.Body["command"].(string)
	if parse, ok := c.commandParsers[name]; ok {
		return parse(content)
	}
	return nil
}
