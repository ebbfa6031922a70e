// Package segment provides the 7-segment glyph format used by the TM1637 display controller.
package segment

import "fmt"

// Pattern is the segment byte of one display position.
// Bits 0-6 are segments a-g, bit 7 is the colon.
type Pattern byte

// Segment bits.
const (
	SegA Pattern = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
	Colon

	// Blank lights nothing.
	Blank Pattern = 0
)

// digits are the conventional patterns for '0'-'9'.
var digits = [10]Pattern{
	0x3F, // 0
	0x06, // 1
	0x5B, // 2
	0x4F, // 3
	0x66, // 4
	0x6D, // 5
	0x7D, // 6
	0x07, // 7
	0x7F, // 8
	0x6F, // 9
}

// letters approximate 'a'-'z'. Shared patterns are intended.
var letters = [26]Pattern{
	0x77, // A
	0x7C, // b
	0x39, // C
	0x5E, // d
	0x79, // E
	0x71, // F
	0x6F, // g, same as 9
	0x74, // h
	0x10, // i
	0x0E, // J
	0x76, // k, same as H
	0x38, // L
	0x54, // m, same as n
	0x54, // n
	0x5C, // o
	0x73, // P
	0x67, // q
	0x50, // r
	0x6D, // S, same as 5
	0x78, // t
	0x3E, // U
	0x1C, // v, same as u
	0x1C, // w, same as u
	0x76, // x, same as H
	0x66, // y, same as 4
	0x5B, // z, same as 2
}

// punctuation lists the supported marks in Decode priority order.
var punctuation = []struct {
	r rune
	p Pattern
}{
	{'-', SegG},
	{'=', SegG | SegD},
	{'\'', SegB},
	{',', SegC},
	{'_', SegD},
	{' ', Blank},
}

// Encode returns the pattern for r. Letters are case-insensitive.
// ok is false when r has no representation; p is Blank in that case.
func Encode(r rune) (p Pattern, ok bool) {
	switch {
	case r >= '0' && r <= '9':
		return digits[r-'0'], true
	case r >= 'a' && r <= 'z':
		return letters[r-'a'], true
	case r >= 'A' && r <= 'Z':
		return letters[r-'A'], true
	}
	for _, m := range punctuation {
		if m.r == r {
			return m.p, true
		}
	}
	return Blank, false
}

// MustEncode is like Encode but panics when r cannot be represented.
// It is meant for building constant glyph tables.
func MustEncode(r rune) Pattern {
	p, ok := Encode(r)
	if !ok {
		panic(fmt.Sprintf("segment: cannot encode %q", r))
	}
	return p
}

// Decode returns a rune that renders as p. The colon bit is ignored.
//
// Where several runes share a pattern, digits win over letters and letters over
// punctuation; letters decode to lower case.
func Decode(p Pattern) (rune, bool) {
	p &^= Colon
	for i, d := range digits {
		if d == p {
			return rune('0' + i), true
		}
	}
	for i, l := range letters {
		if l == p {
			return rune('a' + i), true
		}
	}
	for _, m := range punctuation {
		if m.p == p {
			return m.r, true
		}
	}
	return 0, false
}

// HasColon reports whether the colon bit is set.
func (p Pattern) HasColon() bool {
	return p&Colon != 0
}

// String renders p as the rune Decode returns, with a trailing ':' when the colon is set.
// Unknown patterns are shown in hex.
func (p Pattern) String() string {
	s := fmt.Sprintf("0x%02X", byte(p))
	if r, ok := Decode(p); ok {
		s = string(r)
	}
	if p.HasColon() {
		s += ":"
	}
	return s
}
