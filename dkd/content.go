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

import (
	"math/rand"
	"time"

	"github.com/dimchat/dim-go/mkm"
)

/**
 *  Content carries the application-level payload of an instant message:
 *  its own type, a serial number, a timestamp, and an optional group.
 *  Everything else ("text", "command", ...) is content-type specific and
 *  lives in Body.
 */
type Content struct {
	MsgType ContentType
	SN      uint64
	When    time.Time
	Group   *mkm.ID
	Body    map[string]interface{}
}

// NewContent starts a fresh content of the given type, assigning a
// random serial number and the current time; Body is ready to receive
// type-specific fields.
func NewContent(msgType ContentType) *Content {
	return &Content{
		MsgType: msgType,
		SN:      rand.Uint64(),
		When:    time.Now(),
		Body:    map[string]interface{}{},
	}
}

func (c *Content) ToMap() map[string]interface{} {
	m := make(map[string]interface{}, len(c.Body)+4)
	for k, v := range c.Body {
		m[k] = v
	}
	m["type"] = uint8(c.MsgType)
	m["sn"] = c.SN
	m["time"] = c.When.Unix()
	if c.Group != nil {
		m["group"] = c.Group.String()
	}
	return m
}

// ContentFromMap reconstructs a Content from its wire dictionary. Once
// handed to the pipeline, SN is treated as immutable by callers.
func ContentFromMap(m map[string]interface{}) *Content {
	c := &Content{Body: map[string]interface{}{}}
	for k, v := range m {
		c.Body[k] = v
	}
	if t, ok := asUint8(m["type"]); ok {
		c.MsgType = ContentType(t)
	}
	delete(c.Body, "type")
	switch sn := m["sn"].(type) {
	case uint64:
		c.SN = sn
	case float64:
		c.SN = uint64(sn)
	case int:
		c.SN = uint64(sn)
	}
	delete(c.Body, "sn")
	if ts, ok := asInt64(m["time"]); ok {
		c.When = time.Unix(ts, 0)
	}
	delete(c.Body, "time")
	if g, ok := m["group"].(string); ok && g != "" {
		if gid, ok := mkm.ParseID(g); ok {
			c.Group = &gid
		}
	}
	delete(c.Body, "group")
	return c
}
