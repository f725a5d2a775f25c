// Package b64 defines functions to encode and decode binary data using
// standard (padded, '+'/'/' alphabet) base64, as used by the `signature`
// and `Digest` header values in the HTTP Signatures draft.
package b64

import "encoding/base64"

var enc = base64.StdEncoding

// Encode encodes data using standard padded base64.
func Encode(data []byte) string {
	return enc.EncodeToString(data)
}

// Decode decodes a standard padded base64 string.
func Decode(s string) ([]byte, error) {
	return enc.DecodeString(s)
}
