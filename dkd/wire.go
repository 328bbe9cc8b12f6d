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

import "github.com/dimchat/dim-go/format"

// NewDataTED renders raw bytes as the base64 text the wire format uses
// for 'data'/'key'/'signature' fields (spec §3 invariants).
func NewDataTED(raw []byte) string {
	return format.NewTED(raw).String()
}

func decodeDataField(v interface{}) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, format.ParseTEDTypeError
	}
	ted, err := format.ParseTED(s)
	if err != nil {
		return nil, err
	}
	return ted.Data, nil
}
