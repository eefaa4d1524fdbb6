// Package petscii converts between UTF-8 text and the Commodore PETSCII
// character set.
//
// The mapping is affine-shifted over three ranges and is intentionally NOT a
// bijection on all 256 byte values: bytes outside the defined ranges pass
// through unchanged in both directions. Decoding is a display path and never
// fails; output that is not valid UTF-8 is truncated at the last valid
// boundary instead.
package petscii

import "unicode/utf8"

func asc2pet(a byte) byte {
	switch {
	case a >= 0x41 && a <= 0x5A:
		return a + 0x80
	case a >= 0x61 && a <= 0x7A:
		return a - 0x20
	case a >= 0x7B && a <= 0x7F:
		return a + 0x60
	default:
		return a
	}
}

func pet2asc(p byte) byte {
	switch {
	case p >= 0x61 && p <= 0x7A:
		return p - 0x20
	case p >= 0x41 && p <= 0x5A:
		return p + 0x20
	case p >= 0xC1 && p <= 0xDA:
		// Shifted upper-case letters.
		return p - 0x80
	case p == 0xDE:
		return p - 0x60
	default:
		return p
	}
}

// ToPetscii encodes UTF-8 text as PETSCII bytes, one byte per rune.
// Runes above 0xFF are a caller error; their value is truncated to a byte.
func ToPetscii(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, asc2pet(byte(r)))
	}
	return out
}

// ToASCII decodes PETSCII bytes into UTF-8 text. If the decoded bytes are not
// valid UTF-8 the result is truncated at the first invalid byte.
func ToASCII(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = pet2asc(c)
	}
	if utf8.Valid(out) {
		return string(out)
	}
	for i := 0; i < len(out); {
		r, size := utf8.DecodeRune(out[i:])
		if r == utf8.RuneError && size == 1 {
			return string(out[:i])
		}
		i += size
	}
	return string(out)
}
