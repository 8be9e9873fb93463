package codec

import (
	"math"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
	"github.com/wippyai/tinypacks/wire"
)

// Encoder packs value trees. It is immutable and safe for concurrent use.
type Encoder struct {
	cfg config
}

func NewEncoder(opts ...Option) *Encoder {
	return &Encoder{cfg: newConfig(opts)}
}

var (
	singleEncoder = NewEncoder()
	doubleEncoder = NewEncoder(WithDoublePrecision(true))
)

// Encode packs v. Reals are packed at single precision unless
// WithDoublePrecision(true) is passed.
func Encode(v value.Value, opts ...Option) ([]byte, error) {
	return encoderFor(opts).Encode(v)
}

// EncodeAny converts a native Go value with value.Of and packs it.
func EncodeAny(x any, opts ...Option) ([]byte, error) {
	v, err := value.Of(x)
	if err != nil {
		return nil, err
	}
	return encoderFor(opts).Encode(v)
}

func encoderFor(opts []Option) *Encoder {
	if len(opts) == 0 {
		return singleEncoder
	}
	return NewEncoder(opts...)
}

// DoublePrecision reports whether non-zero reals are packed as doubles.
func (e *Encoder) DoublePrecision() bool {
	return e.cfg.double
}

// Encode packs v into a new buffer.
func (e *Encoder) Encode(v value.Value) ([]byte, error) {
	return e.Append(nil, v)
}

// Append packs v onto dst. On error dst is returned with its original length.
func (e *Encoder) Append(dst []byte, v value.Value) ([]byte, error) {
	w := wire.NewWriter(dst)
	if err := e.encode(w, v, 0); err != nil {
		e.cfg.logger().Debug("tinypacks: encode failed", zap.Error(err))
		return dst, err
	}
	return w.Bytes(), nil
}

func (e *Encoder) encode(w *wire.Writer, v value.Value, depth int) error {
	switch tv := v.(type) {
	case nil, value.None:
		w.None()

	case value.Bool:
		w.Bool(bool(tv))

	case value.Int:
		w.Int(int64(tv))

	case value.Real:
		f := float64(tv)
		if !e.cfg.double && !math.IsInf(f, 0) && math.IsInf(float64(float32(f)), 0) {
			return errors.Overflow(errors.PhaseEncode, nil, f, "float32")
		}
		w.Real(f, e.cfg.double)

	case value.String:
		if !utf8.ValidString(string(tv)) {
			return errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(tv))
		}
		return w.Element(wire.TypeString, []byte(tv))

	case value.Bytes:
		return w.Element(wire.TypeBytes, tv)

	case value.List:
		if err := e.enter(depth); err != nil {
			return err
		}
		mark := w.Open()
		for i, elem := range tv {
			if err := e.encode(w, elem, depth+1); err != nil {
				return prefix(err, "["+strconv.Itoa(i)+"]")
			}
		}
		return w.Close(mark, wire.TypeList)

	case value.Map:
		if err := e.enter(depth); err != nil {
			return err
		}
		mark := w.Open()
		for _, p := range tv {
			if err := e.encode(w, p.Key, depth+1); err != nil {
				return prefix(err, "{"+value.Format(p.Key)+"}")
			}
			if err := e.encode(w, p.Value, depth+1); err != nil {
				return prefix(err, "{"+value.Format(p.Key)+"}")
			}
		}
		return w.Close(mark, wire.TypeMap)

	default:
		return errors.Unsupported(errors.PhaseEncode, "unknown value implementation")
	}
	return nil
}

func (e *Encoder) enter(depth int) error {
	if e.cfg.maxDepth > 0 && depth >= e.cfg.maxDepth {
		return errors.New(errors.PhaseEncode, errors.KindTooDeep).
			Detail("container nesting exceeds %d", e.cfg.maxDepth).
			Build()
	}
	return nil
}

func prefix(err error, seg string) error {
	if te, ok := err.(*errors.Error); ok {
		return te.Prefix(seg)
	}
	return err
}
