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

import "fmt"

/*
 *  ContentType flags what kind of message content this is. A message is
 *  something sent from one place to another; it can be an instant
 *  message, a system command, or something else.
 *
 *  Bits:
 *      0000 0001 - contains plaintext you can read
 *      0000 0010 - a message you can see
 *      0000 0100 - a message you can hear
 *      0001 0000 - the message's main part is stored elsewhere (a file)
 *      1000 1000 - a command message
 */
type ContentType uint8

const (
	TEXT ContentType = 0x01

	FILE  ContentType = 0x10
	IMAGE ContentType = 0x12
	AUDIO ContentType = 0x14
	VIDEO ContentType = 0x16

	PAGE  ContentType = 0x20
	QUOTE ContentType = 0x37

	COMMAND ContentType = 0x88
	HISTORY ContentType = 0x89

	FORWARD ContentType = 0xFF
)

var typeNames = map[ContentType]string{
	TEXT: "TEXT", FILE: "FILE", IMAGE: "IMAGE", AUDIO: "AUDIO", VIDEO: "VIDEO",
	PAGE: "PAGE", QUOTE: "QUOTE", COMMAND: "COMMAND", HISTORY: "HISTORY", FORWARD: "FORWARD",
}

func (t ContentType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ContentType(%d)", uint8(t))
}
