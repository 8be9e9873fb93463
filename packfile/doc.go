// Package packfile stores a sequence of values as one file: the packed
// elements concatenated with no framing, optionally compressed as a whole
// with zstd or LZ4.
//
// Readers detect compression from the frame magic at the start of the data,
// so files need no header:
//
//	data, err := packfile.Marshal(values, packfile.WithCompression(packfile.CompressionZstd))
//	values, err := packfile.Unmarshal(data)
//
// A zstd frame starts with 0x28 and an LZ4 frame with 0x04. As element
// headers these would be a boolean with an 8-byte payload and a none with a
// payload, both invalid, so an uncompressed file is never mistaken for a
// compressed one.
package packfile
