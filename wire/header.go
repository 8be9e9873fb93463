package wire

import (
	"encoding/binary"

	"github.com/wippyai/tinypacks/errors"
)

// Header is the decoded tag and length of one element.
type Header struct {
	Type   Type
	Length uint32 // content length in bytes
	Size   int    // header length in bytes: 1, 3 or 7
}

// ElementSize returns the header plus content length.
func (h Header) ElementSize() uint64 {
	return uint64(h.Size) + uint64(h.Length)
}

// HeaderSize returns the number of header bytes needed for a content length
// of n, or 0 when n exceeds MaxContentLength.
func HeaderSize(n uint64) int {
	switch {
	case n <= MaxDirectSize:
		return 1
	case n < Ext32Marker:
		return 3
	case n <= MaxContentLength:
		return 7
	}
	return 0
}

// PutHeader writes the header for type t and content length n into dst,
// which must hold at least HeaderSize(n) bytes. It returns the bytes written.
func PutHeader(dst []byte, t Type, n uint64) (int, error) {
	switch HeaderSize(n) {
	case 1:
		dst[0] = byte(t) | byte(n)
		return 1, nil
	case 3:
		dst[0] = byte(t) | Ext16Marker
		binary.BigEndian.PutUint16(dst[1:3], uint16(n))
		return 3, nil
	case 7:
		dst[0] = byte(t) | Ext16Marker
		binary.BigEndian.PutUint16(dst[1:3], Ext32Marker)
		binary.BigEndian.PutUint32(dst[3:7], uint32(n))
		return 7, nil
	}
	return 0, errors.TooLong(t.String(), n)
}

// AppendHeader appends the header for type t and content length n to dst.
func AppendHeader(dst []byte, t Type, n uint64) ([]byte, error) {
	var hdr [7]byte
	size, err := PutHeader(hdr[:], t, n)
	if err != nil {
		return dst, err
	}
	return append(dst, hdr[:size]...), nil
}

// ReadHeader parses the header at the start of buf. It fails when buf is
// empty or shorter than the extended length fields it announces. It does not
// check that the content is present.
func ReadHeader(buf []byte) (Header, error) {
	r := NewReader(buf)
	tag, err := r.ReadByte()
	if err != nil {
		return Header{}, errors.EmptyInput()
	}

	h := Header{Type: Type(tag & TypeMask), Length: uint32(tag & SizeMask), Size: 1}
	if h.Length != Ext16Marker {
		return h, nil
	}

	ext16, err := r.ReadU16()
	if err != nil {
		return Header{}, errors.Truncated("extended-16 length", 2, r.Remaining())
	}
	h.Size = 3
	if ext16 != Ext32Marker {
		h.Length = uint32(ext16)
		return h, nil
	}

	ext32, err := r.ReadU32()
	if err != nil {
		return Header{}, errors.Truncated("extended-32 length", 4, r.Remaining())
	}
	h.Size = 7
	h.Length = ext32
	return h, nil
}

// Split separates the first element of buf into its header, content and the
// unconsumed remainder. Content aliases buf.
func Split(buf []byte) (h Header, content, rest []byte, err error) {
	h, err = ReadHeader(buf)
	if err != nil {
		return Header{}, nil, nil, err
	}
	avail := len(buf) - h.Size
	if uint64(h.Length) > uint64(avail) {
		return Header{}, nil, nil, errors.Truncated(h.Type.String()+" content", int(h.Length), avail)
	}
	end := h.Size + int(h.Length)
	return h, buf[h.Size:end:end], buf[end:], nil
}
