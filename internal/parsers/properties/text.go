package properties

import (
	"encoding/binary"
	"unicode/utf16"
)

// DecodeUTF16LE converts a UTF-16LE byte string (the on-disk encoding of
// BDE description and display-name entries) to a Go string, stopping at a
// trailing NUL if present. Character-encoding conversion is an explicit
// external collaborator of this library (spec.md §1); this is the in-tree
// default, grounded on the pack's exfat UnicodeFromAscii helper, composed
// entirely from the standard library's unicode/utf16 package.
func DecodeUTF16LE(data []byte) string {
	n := len(data) / 2
	units := make([]uint16, 0, n)
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint16(data[i*2:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

// EncodeUTF16LE is DecodeUTF16LE's inverse, used by test fixtures that
// build synthetic description entries.
func EncodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}
