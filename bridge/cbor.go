package bridge

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/tinypacks/codec"
	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
)

// encMode writes Core Deterministic Encoding (RFC 8949 §4.2) for scalars.
// Map and array order is taken from the Value, not sorted.
var encMode cbor.EncMode

// decMode accepts standard CBOR. Maps decode to map[any]any so non-string
// keys survive, byte string keys arrive as cbor.ByteString and bignums
// decode to *big.Int.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.NilContainers = cbor.NilContainerAsEmpty
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("bridge: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels: maxDepth,
		BigIntDec:       cbor.BigIntDecodePointer,
	}.DecMode()
	if err != nil {
		panic("bridge: CBOR decoder initialization failed: " + err.Error())
	}
}

// FromCBOR converts a single CBOR data item into a Value. CBOR maps carry no
// order once decoded, so pairs are sorted by the packed encoding of their
// keys. Integers outside int64 fail with an overflow error and tagged items
// other than bignums are unsupported.
func FromCBOR(data []byte) (value.Value, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.PhaseBridge, errors.KindEmptyInput).
			Detail("CBOR input is empty").
			Build()
	}

	var x any
	if err := decMode.Unmarshal(data, &x); err != nil {
		err = errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "malformed CBOR")
		logFailure("cbor", err)
		return nil, err
	}

	v, err := fromCBOR(x, nil)
	if err != nil {
		logFailure("cbor", err)
		return nil, err
	}
	return v, nil
}

func fromCBOR(x any, path []string) (value.Value, error) {
	switch t := x.(type) {
	case []any:
		list := make(value.List, len(t))
		for i, elem := range t {
			v, err := fromCBOR(elem, index(path, i))
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil

	case map[any]any:
		type entry struct {
			packed []byte
			pair   value.Pair
		}
		entries := make([]entry, 0, len(t))
		for rawKey, rawVal := range t {
			k, err := fromCBOR(rawKey, path)
			if err != nil {
				return nil, err
			}
			v, err := fromCBOR(rawVal, key(path, k))
			if err != nil {
				return nil, err
			}
			packed, err := codec.Encode(k, codec.WithDoublePrecision(true))
			if err != nil {
				return nil, rephase(err, key(path, k))
			}
			entries = append(entries, entry{packed: packed, pair: value.Pair{Key: k, Value: v}})
		}
		sort.Slice(entries, func(i, j int) bool {
			return bytes.Compare(entries[i].packed, entries[j].packed) < 0
		})
		m := make(value.Map, len(entries))
		for i, e := range entries {
			m[i] = e.pair
		}
		return m, nil

	case cbor.Tag:
		return nil, errors.New(errors.PhaseBridge, errors.KindUnsupported).
			Path(path...).
			Value(t.Number).
			Detail("CBOR tag %d has no packed representation", t.Number).
			Build()

	case cbor.ByteString:
		return value.Bytes(t), nil
	}

	v, err := value.Of(x)
	if err != nil {
		return nil, rephase(err, path)
	}
	return v, nil
}

// ToCBOR renders v as a single CBOR data item. Map and list order follow
// the Value.
func ToCBOR(v value.Value) ([]byte, error) {
	b, err := encMode.Marshal(cborValue{v: v})
	if err != nil {
		err = errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "CBOR encoding failed")
		logFailure("cbor", err)
		return nil, err
	}
	return b, nil
}

// cborValue adapts a Value to cbor.Marshaler so container order is kept.
type cborValue struct {
	v value.Value
}

const (
	majorArray = 4 << 5
	majorMap   = 5 << 5
)

func (c cborValue) MarshalCBOR() ([]byte, error) {
	switch t := c.v.(type) {
	case nil, value.None:
		return encMode.Marshal(nil)
	case value.Bool:
		return encMode.Marshal(bool(t))
	case value.Int:
		return encMode.Marshal(int64(t))
	case value.Real:
		return encMode.Marshal(float64(t))
	case value.String:
		return encMode.Marshal(string(t))
	case value.Bytes:
		return encMode.Marshal([]byte(t))
	case value.List:
		buf := appendHead(nil, majorArray, uint64(len(t)))
		for _, elem := range t {
			b, err := cborValue{v: elem}.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
		return buf, nil
	case value.Map:
		buf := appendHead(nil, majorMap, uint64(len(t)))
		for _, p := range t {
			kb, err := cborValue{v: p.Key}.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			vb, err := cborValue{v: p.Value}.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			buf = append(append(buf, kb...), vb...)
		}
		return buf, nil
	}
	return nil, errors.Unsupported(errors.PhaseBridge, "unknown value implementation")
}

// appendHead writes a CBOR initial byte and argument for a definite length.
func appendHead(dst []byte, major byte, n uint64) []byte {
	switch {
	case n < 24:
		return append(dst, major|byte(n))
	case n <= 0xFF:
		return append(dst, major|24, byte(n))
	case n <= 0xFFFF:
		return binary.BigEndian.AppendUint16(append(dst, major|25), uint16(n))
	case n <= 0xFFFFFFFF:
		return binary.BigEndian.AppendUint32(append(dst, major|26), uint32(n))
	}
	return binary.BigEndian.AppendUint64(append(dst, major|27), n)
}
