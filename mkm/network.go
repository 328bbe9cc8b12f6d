/* license: https://mit-license.org
 *
 *  DIM Client Core SDK
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
package mkm

// EntityType is an 8-bit flag describing what kind of entity an ID
// refers to. Bit 0 marks a group, bit 1 a node/station, bit 2 a bot,
// bit 7 a broadcast address.
type EntityType uint8

const (
	User    EntityType = 0x00
	Group   EntityType = 0x01
	Station EntityType = 0x02
	ISP     EntityType = 0x03
	Bot     EntityType = 0x04
	ICP     EntityType = 0x05
	Any     EntityType = 0x80
	Every   EntityType = 0x81
)

// IsUser reports whether the network byte designates a single-receiver
// (non-group) entity.
func IsUser(network EntityType) bool {
	return network&0x01 == 0
}

// IsGroup reports whether the network byte designates a group entity.
func IsGroup(network EntityType) bool {
	return network&0x01 == 1
}

// IsBroadcast reports whether the network byte designates one of the
// two well-known broadcast pseudo-addresses (anywhere/everywhere).
func IsBroadcast(network EntityType) bool {
	return network&0x80 != 0
}

func (network EntityType) String() string {
	switch network {
	case User:
		return "User"
	case Group:
		return "Group"
	case Station:
		return "Station"
	case ISP:
		return "ISP"
	case Bot:
		return "Bot"
	case ICP:
		return "ICP"
	case Any:
		return "Any"
	case Every:
		return "Every"
	default:
		return "Unknown"
	}
}
