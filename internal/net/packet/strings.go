package packet

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// encodeString converts a UTF-8 string to wire bytes, one byte per character
// (ISO-8859-1). Runes outside the charset become the SUB byte. Pure ASCII passes
// through unchanged.
func encodeString(s string) []byte {
	if isASCII(s) {
		return []byte(s)
	}
	// Encoders keep state and are not safe for concurrent use.
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}

// decodeString converts wire bytes to UTF-8, dropping trailing NUL padding.
func decodeString(raw []byte) string {
	raw = bytes.TrimRight(raw, "\x00")
	if len(raw) == 0 {
		return ""
	}
	if isASCII(string(raw)) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
