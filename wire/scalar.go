package wire

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/tinypacks/errors"
)

// IntWidth returns the smallest two's-complement width in {0, 1, 2, 4, 8}
// bytes that holds v. Zero takes no payload.
func IntWidth(v int64) int {
	switch {
	case v == 0:
		return 0
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return 1
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return 2
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return 4
	}
	return 8
}

// AppendInt appends the integer element for v at its minimal width.
func AppendInt(dst []byte, v int64) []byte {
	width := IntWidth(v)
	dst = append(dst, byte(TypeInteger)|byte(width))
	switch width {
	case 1:
		dst = append(dst, byte(int8(v)))
	case 2:
		dst = binary.BigEndian.AppendUint16(dst, uint16(int16(v)))
	case 4:
		dst = binary.BigEndian.AppendUint32(dst, uint32(int32(v)))
	case 8:
		dst = binary.BigEndian.AppendUint64(dst, uint64(v))
	}
	return dst
}

// AppendReal appends the real element for v. Zero takes no payload; other
// values use single precision unless double is set.
func AppendReal(dst []byte, v float64, double bool) []byte {
	switch {
	case v == 0:
		return append(dst, byte(TypeReal))
	case double:
		dst = append(dst, byte(TypeReal)|8)
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(v))
	}
	dst = append(dst, byte(TypeReal)|4)
	return binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(v)))
}

// AppendBool appends the boolean element for v.
func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, byte(TypeBoolean)|1, TrueMarker)
	}
	return append(dst, byte(TypeBoolean))
}

// TrueMarker is the payload byte written for true.
const TrueMarker = 0x01

// Bool interprets a boolean payload. A single zero byte is rejected.
func Bool(content []byte) (bool, error) {
	switch len(content) {
	case 0:
		return false, nil
	case 1:
		if content[0] == 0 {
			return false, errors.New(errors.PhaseDecode, errors.KindInvalidBoolean).
				Offset(0).
				Value(content[0]).
				Detail("invalid true encoding: payload byte is 0").
				Build()
		}
		return true, nil
	}
	return false, errors.InvalidWidth(TypeBoolean.String(), uint32(len(content)))
}

// Int interprets an integer payload of width 0, 1, 2, 4 or 8.
func Int(content []byte) (int64, error) {
	switch len(content) {
	case 0:
		return 0, nil
	case 1:
		return int64(int8(content[0])), nil
	case 2:
		return int64(int16(binary.BigEndian.Uint16(content))), nil
	case 4:
		return int64(int32(binary.BigEndian.Uint32(content))), nil
	case 8:
		return int64(binary.BigEndian.Uint64(content)), nil
	}
	return 0, errors.InvalidWidth(TypeInteger.String(), uint32(len(content)))
}

// Real interprets a real payload of width 0, 4 or 8.
func Real(content []byte) (float64, error) {
	switch len(content) {
	case 0:
		return 0, nil
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(content))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(content)), nil
	}
	return 0, errors.InvalidWidth(TypeReal.String(), uint32(len(content)))
}
