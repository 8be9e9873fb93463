package hostmem

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/tinypacks"
	"github.com/wippyai/tinypacks/codec"
	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
)

var (
	regionDecoder = codec.NewDecoder(codec.WithStrict(true))
	regionEncoder = codec.NewEncoder()
)

// ReadValue decodes the packed element stored in [ptr, ptr+length) of mem.
// The region must hold exactly one element. A nil dec uses a strict
// decoder with default limits.
func ReadValue(mem tinypacks.Memory, ptr, length uint32, dec *codec.Decoder) (value.Value, error) {
	if dec == nil {
		dec = regionDecoder
	}
	data, err := mem.Read(ptr, length)
	if err != nil {
		return nil, hostErr(err, ptr, length)
	}
	v, err := dec.DecodeFirst(data)
	if err != nil {
		Logger().Debug("hostmem: guest value rejected",
			zap.Uint32("ptr", ptr),
			zap.Uint32("len", length),
			zap.Error(err))
		return nil, err
	}
	return v, nil
}

// WriteValue packs v, allocates room for it through alloc and copies it into
// mem. A nil enc packs at single precision. On failure any allocation is
// released.
func WriteValue(mem tinypacks.Memory, alloc tinypacks.Allocator, v value.Value, enc *codec.Encoder) (ptr, length uint32, err error) {
	if enc == nil {
		enc = regionEncoder
	}
	packed, err := enc.Encode(v)
	if err != nil {
		return 0, 0, err
	}
	if uint64(len(packed)) > math.MaxUint32 {
		return 0, 0, errors.New(errors.PhaseHost, errors.KindTooLong).
			Detail("packed value of %d bytes does not fit a 32-bit address space", len(packed)).
			Build()
	}
	length = uint32(len(packed))

	ptr, err = alloc.Alloc(length, 1)
	if err != nil {
		if _, ok := err.(*errors.Error); !ok {
			err = errors.AllocationFailed(errors.PhaseHost, length, 1, err)
		}
		return 0, 0, err
	}
	if err := mem.Write(ptr, packed); err != nil {
		alloc.Free(ptr, length, 1)
		return 0, 0, hostErr(err, ptr, length)
	}

	Logger().Debug("hostmem: value written",
		zap.Uint32("ptr", ptr),
		zap.Uint32("len", length))
	return ptr, length, nil
}

// JoinPtrLen packs a region into one i64 with the pointer in the high half,
// the usual way a guest function returns a buffer.
func JoinPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

// SplitPtrLen is the inverse of JoinPtrLen.
func SplitPtrLen(v uint64) (ptr, length uint32) {
	return uint32(v >> 32), uint32(v)
}

func hostErr(err error, ptr, length uint32) error {
	if _, ok := err.(*errors.Error); ok {
		return err
	}
	return errors.New(errors.PhaseHost, errors.KindOutOfBounds).
		Cause(err).
		Detail("region [%d, %d)", ptr, uint64(ptr)+uint64(length)).
		Build()
}
