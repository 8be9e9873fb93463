// Package wire implements the tag and length model of the tinypacks format.
//
// Every element starts with one header byte:
//
//	bit  7 6 5 4 3 2 1 0
//	     └type┘ └─size──┘
//
// The type band selects one of eight value kinds:
//
//	0x00 none    0x20 boolean   0x40 integer   0x60 real
//	0x80 string  0xA0 bytes     0xC0 list      0xE0 map
//
// The size field carries the content length in three tiers:
//
//	0..30        content length is the field itself
//	31           a big-endian u16 length follows
//	31, 0xFFFF   the u16 is followed by a big-endian u32 length
//
// Scalar kinds restrict the length to their legal payload widths: boolean
// 0 or 1, integer 0, 1, 2, 4 or 8, real 0, 4 or 8, none 0.
//
// The package has no knowledge of value trees; see the codec package for
// recursive encoding and decoding.
package wire
