package tinypacks

import (
	"github.com/wippyai/tinypacks/codec"
	"github.com/wippyai/tinypacks/value"
)

// Memory is a linear byte space packed values can be exchanged through,
// such as a WebAssembly guest's memory.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
}

// MemorySizer provides the current size of a Memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator reserves regions of a Memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Pack converts a native Go value with value.Of and encodes it at single
// precision.
func Pack(x any) ([]byte, error) {
	return codec.EncodeAny(x)
}

// Unpack decodes the first element of buf into plain Go data (see
// value.Interface). Trailing bytes are ignored.
func Unpack(buf []byte) (any, error) {
	v, err := codec.DecodeFirst(buf)
	if err != nil {
		return nil, err
	}
	return value.Interface(v), nil
}
