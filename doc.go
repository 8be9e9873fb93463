// Package tinypacks implements TinyPacks, a small self-describing binary
// serialization format for a closed set of scalar and container values.
//
// Every element starts with a one-byte header. The top three bits carry the
// type and the low five bits the content length, with two extended tiers for
// longer content:
//
//	0x00 none   0x20 boolean  0x40 integer  0x60 real
//	0x80 string 0xA0 bytes    0xC0 list     0xE0 map
//
//	size 0-30  length is the size field itself
//	size 31    a big-endian u16 length follows
//	u16 0xFFFF a big-endian u32 length follows
//
// Containers hold the concatenated encodings of their children, so they are
// decoded by repeatedly decoding one element from the content slice.
//
// # Architecture Overview
//
//	tinypacks/         Root package with Memory and Allocator interfaces, Pack and Unpack
//	├── value/         Value tree, equality and native Go conversion
//	├── wire/          Type codes, headers, scalar payloads, bounds-checked reader and writer
//	├── codec/         Encoder, Decoder and value digests
//	├── bridge/        JSON, YAML and CBOR conversion
//	├── hostmem/       Exchange of packed values through WebAssembly guest memory
//	├── packfile/      Files of concatenated elements with optional compression
//	├── errors/        Structured error types for debugging
//	└── cmd/tinypack/  Command line tool
//
// # Quick Start
//
//	b, err := tinypacks.Pack(map[string]any{"count": 123, "avg": 0.5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := tinypacks.Unpack(b)
//	fmt.Println(out) // map[avg:0.5 count:123]
//
// For full control over precision, strictness and nesting limits use the
// codec package directly:
//
//	enc := codec.NewEncoder(codec.WithDoublePrecision(true))
//	dec := codec.NewDecoder(codec.WithStrict(true))
//
// # Error Handling
//
// Errors are *errors.Error values carrying the phase, kind, container path
// and byte offset:
//
//	if errors.Is(err, tperrors.ErrTruncated) {
//	    // buffer ended inside an element
//	}
package tinypacks
