// Package value defines the tagged union that tinypacks encodes and decodes.
//
// A Value is exactly one of:
//
//	None    absence of a value
//	Bool    true/false
//	Int     signed 64-bit integer
//	Real    IEEE-754 double
//	String  UTF-8 text
//	Bytes   opaque byte run
//	List    ordered []Value
//	Map     ordered []Pair, keys may be any Value
//
// The interface is sealed, so a type switch over these eight types is
// exhaustive. Values carry no encoding metadata: integer width and real
// precision are chosen by the encoder.
//
// Of converts native Go data into a Value and Interface converts back.
package value
