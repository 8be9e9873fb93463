// Package codec encodes value trees into the tinypacks wire format and
// decodes them back.
//
// # Encoding
//
//	b, err := codec.Encode(value.List{value.Int(1), value.Int(2)})
//	// c4 41 01 41 02
//
// Integers take the smallest two's-complement width of 0, 1, 2, 4 or 8
// bytes. Non-zero reals take 4 bytes, or 8 with WithDoublePrecision(true).
// Zero integers and zero reals (including -0.0) take no payload. Identical
// values always produce identical bytes.
//
// # Decoding
//
// DecodeOne is the composable primitive: it parses one element and returns
// the unconsumed tail. Containers are decoded by calling it repeatedly on
// the container's content slice until the slice is empty, so no child
// counts are stored on the wire.
//
//	v, rest, err := codec.DecodeOne(buf)
//
// DecodeFirst returns only the value. It ignores trailing bytes unless the
// decoder is strict:
//
//	d := codec.NewDecoder(codec.WithStrict(true))
//	v, err := d.DecodeFirst(buf) // trailing_data if bytes remain
//
// Map keys are deduplicated while decoding: a later pair with an equal key
// replaces the earlier value and keeps the earlier position.
//
// # Errors
//
// Failures are *errors.Error values from the errors package carrying the
// kind, the container path and the absolute byte offset:
//
//	[decode] dangling_key at [1]{"a"} (offset 9): map key has no paired value
//
// # Thread Safety
//
// Encoder and Decoder hold only their options and are safe for concurrent
// use. Neither retains or mutates the buffers passed to it.
package codec
