// Package b64 provides strict URL-safe base64 without padding (RFC 4648 §5)
// for the compact text envelope formats. Decoding rejects padding
// characters, characters outside the base64url alphabet, and non-canonical
// trailing bits; envelopes must round-trip byte-exact.
package b64

import (
	"encoding/base64"
	"errors"
	"strings"
)

var strict = base64.RawURLEncoding.Strict()

// ErrPadding is returned when the input contains '=' padding characters.
var ErrPadding = errors.New("base64url input contains padding")

// Encode encodes bytes to unpadded URL-safe base64.
func Encode(data []byte) string {
	return strict.EncodeToString(data)
}

// Decode decodes strict unpadded URL-safe base64.
func Decode(s string) ([]byte, error) {
	if strings.ContainsRune(s, '=') {
		return nil, ErrPadding
	}
	return strict.DecodeString(s)
}
