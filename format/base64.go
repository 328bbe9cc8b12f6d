package format

import "encoding/base64"

// encoding/base64 is the only reasonable choice here: no pack library
// (mr-tron/base58 covers base58 only) offers a base64 codec, and
// reimplementing RFC 4648 by hand would just reinvent the stdlib.
func stdBase64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func stdBase64Decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}
