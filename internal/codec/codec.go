// Package codec packs text payload fields the way Judge0 expects them when
// base64_encoded=true is set on a request.
package codec

import (
	"encoding/base64"
	"strings"
)

// Encode returns the standard base64 form of the UTF-8 bytes of s.
func Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Decode reverses Encode. An empty input decodes to "". Judge0 wraps long
// fields with newlines, so whitespace is dropped before decoding; anything
// that still fails to decode is returned as-is rather than dropped.
func Decode(s string) string {
	if s == "" {
		return ""
	}
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	b, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
		if err != nil {
			return s
		}
	}
	return string(b)
}

// DecodePtr decodes an optional field; nil decodes to "".
func DecodePtr(s *string) string {
	if s == nil {
		return ""
	}
	return Decode(*s)
}
