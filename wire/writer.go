package wire

import (
	"encoding/binary"

	"github.com/wippyai/tinypacks/errors"
)

// Writer appends big-endian data and framed elements to a byte slice.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer that appends to buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset truncates the writer to n bytes.
func (w *Writer) Reset(n int) {
	w.buf = w.buf[:n]
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteU16 writes a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// WriteU32 writes a big-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// WriteU64 writes a big-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// None writes the none element.
func (w *Writer) None() {
	w.buf = append(w.buf, byte(TypeNone))
}

// Bool writes a boolean element.
func (w *Writer) Bool(v bool) {
	w.buf = AppendBool(w.buf, v)
}

// Int writes an integer element at its minimal width.
func (w *Writer) Int(v int64) {
	w.buf = AppendInt(w.buf, v)
}

// Real writes a real element at single or double precision.
func (w *Writer) Real(v float64, double bool) {
	w.buf = AppendReal(w.buf, v, double)
}

// Element writes a complete element of type t holding content.
func (w *Writer) Element(t Type, content []byte) error {
	buf, err := AppendHeader(w.buf, t, uint64(len(content)))
	if err != nil {
		return err
	}
	w.buf = append(buf, content...)
	return nil
}

// Open starts a container element whose content length is not known yet.
// It reserves one header byte and returns a mark for Close.
func (w *Writer) Open() int {
	mark := len(w.buf)
	w.buf = append(w.buf, 0)
	return mark
}

// Close writes the header of the element opened at mark, treating every byte
// written since Open as its content. Content is shifted right when the length
// needs an extended header.
func (w *Writer) Close(mark int, t Type) error {
	n := uint64(len(w.buf) - mark - 1)
	size := HeaderSize(n)
	if size == 0 {
		return errors.TooLong(t.String(), n)
	}
	if size > 1 {
		extra := size - 1
		w.buf = append(w.buf, make([]byte, extra)...)
		copy(w.buf[mark+size:], w.buf[mark+1:len(w.buf)-extra])
	}
	_, err := PutHeader(w.buf[mark:], t, n)
	return err
}
