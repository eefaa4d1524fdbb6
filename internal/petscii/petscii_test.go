package petscii

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The two directions are pinned independently with literal tables. The
// mapping is not a bijection, so the tables must not be derived from each
// other.

func TestToPetsciiTable(t *testing.T) {
	cases := []struct {
		in   string
		want byte
	}{
		{"A", 0xC1},
		{"Z", 0xDA},
		{"a", 0x41},
		{"z", 0x5A},
		{"{", 0xDB},
		{"\x7f", 0xDF},
		{"0", '0'},
		{"9", '9'},
		{" ", ' '},
		{":", ':'},
		{"\r", '\r'},
	}
	for _, c := range cases {
		got := ToPetscii(c.in)
		assert.Equal(t, []byte{c.want}, got, "ToPetscii(%q)", c.in)
	}
}

func TestToASCIITable(t *testing.T) {
	cases := []struct {
		in   byte
		want string
	}{
		{0x61, "A"},
		{0x7A, "Z"},
		{0x41, "a"},
		{0x5A, "z"},
		{0xC1, "A"}, // shifted range folds onto upper-case, not lower
		{0xDA, "Z"},
		{0xDE, "~"},
		{'0', "0"},
		{' ', " "},
		{'\r', "\r"},
	}
	for _, c := range cases {
		got := ToASCII([]byte{c.in})
		assert.Equal(t, c.want, got, "ToASCII(0x%02X)", c.in)
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	for _, s := range []string{
		"Hello, World",
		"load \"*\",8,1",
		"MIXED case 0123456789 :.-",
	} {
		assert.Equal(t, s, ToASCII(ToPetscii(s)), "round trip %q", s)
	}
}

func TestToASCIITruncatesInvalidUTF8(t *testing.T) {
	// 0xFF is outside every defined range and passes through, producing an
	// invalid UTF-8 byte; the decoded string stops right before it.
	in := []byte{0xC8, 0x45, 0xFF, 0x45}
	assert.Equal(t, "He", ToASCII(in))

	// Entirely invalid input decodes to the empty string, never an error.
	assert.Equal(t, "", ToASCII([]byte{0xFF, 0xFE}))
}

func TestToPetsciiEmpty(t *testing.T) {
	assert.Empty(t, ToPetscii(""))
	assert.Equal(t, "", ToASCII(nil))
}
