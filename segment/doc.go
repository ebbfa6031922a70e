// Package segment provides the 7-segment glyph format used by the TM1637 display controller.
//
// Each display position holds one byte. Bits 0-6 select segments a-g, bit 7 drives the
// colon which is only wired to position 1 on common 4-digit modules:
//
//	  aaa
//	 f   b
//	 f   b
//	  ggg
//	 e   c
//	 e   c
//	  ddd
//
//	bit:  7     6 5 4 3 2 1 0
//	      colon g f e d c b a
//
// This package provides:
//
// - Pattern: the segment byte for one position
// - Encode: ASCII digits, letters and a few punctuation marks to Pattern
// - Decode: the inverse mapping, for display read-back and tests
//
// Letters are approximations. Several share a pattern with a digit or another letter
// ('s' looks like '5', 'm' and 'n' are identical), so Decode(Encode(r)) does not always
// return r.
//
// Example usage:
//
//	p, ok := segment.Encode('7')
//	if !ok {
//		// not representable
//	}
//	p |= segment.Colon
package segment
