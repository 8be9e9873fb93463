package codec

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
	"github.com/wippyai/tinypacks/wire"
)

// Decoder unpacks value trees. It is immutable and safe for concurrent use.
// Decoded values never alias the input buffer.
type Decoder struct {
	cfg config
}

func NewDecoder(opts ...Option) *Decoder {
	return &Decoder{cfg: newConfig(opts)}
}

var lenientDecoder = NewDecoder()

func decoderFor(opts []Option) *Decoder {
	if len(opts) == 0 {
		return lenientDecoder
	}
	return NewDecoder(opts...)
}

// DecodeOne parses the first element of buf and returns it with the
// unconsumed remainder.
func DecodeOne(buf []byte, opts ...Option) (value.Value, []byte, error) {
	return decoderFor(opts).DecodeOne(buf)
}

// DecodeFirst parses the first element of buf. Trailing bytes are ignored
// unless WithStrict(true) is passed.
func DecodeFirst(buf []byte, opts ...Option) (value.Value, error) {
	return decoderFor(opts).DecodeFirst(buf)
}

// DecodeAll parses a buffer of concatenated elements.
func DecodeAll(buf []byte, opts ...Option) ([]value.Value, error) {
	return decoderFor(opts).DecodeAll(buf)
}

// Strict reports whether DecodeFirst rejects trailing bytes.
func (d *Decoder) Strict() bool {
	return d.cfg.strict
}

// DecodeOne parses exactly one element at the start of buf.
func (d *Decoder) DecodeOne(buf []byte) (value.Value, []byte, error) {
	v, n, err := d.decode(buf, 0, 0)
	if err != nil {
		d.logFailure(err)
		return nil, nil, err
	}
	return v, buf[n:], nil
}

// DecodeFirst parses the first element of buf and discards the remainder.
// In strict mode a non-empty remainder is a trailing_data error.
func (d *Decoder) DecodeFirst(buf []byte) (value.Value, error) {
	v, rest, err := d.DecodeOne(buf)
	if err != nil {
		return nil, err
	}
	if d.cfg.strict && len(rest) > 0 {
		err := errors.New(errors.PhaseDecode, errors.KindTrailingData).
			Offset(len(buf) - len(rest)).
			Value(len(rest)).
			Detail("%d bytes follow the first element", len(rest)).
			Build()
		d.logFailure(err)
		return nil, err
	}
	return v, nil
}

// DecodeAll parses every element of buf in order. An empty buffer yields no
// values.
func (d *Decoder) DecodeAll(buf []byte) ([]value.Value, error) {
	var out []value.Value
	off := 0
	for off < len(buf) {
		v, n, err := d.decode(buf[off:], off, 0)
		if err != nil {
			err = prefix(err, "#"+strconv.Itoa(len(out)))
			d.logFailure(err)
			return nil, err
		}
		out = append(out, v)
		off += n
	}
	return out, nil
}

func (d *Decoder) logFailure(err error) {
	log := d.cfg.logger()
	if ce := log.Check(zap.DebugLevel, "tinypacks: decode failed"); ce != nil {
		fields := []zap.Field{zap.Error(err)}
		if te, ok := err.(*errors.Error); ok {
			fields = append(fields,
				zap.String("kind", string(te.Kind)),
				zap.Int("offset", te.Offset),
				zap.Strings("path", te.Path))
		}
		ce.Write(fields...)
	}
}

// decode parses one element at the start of buf. base is the absolute offset
// of buf within the caller's input, used for error reporting. It returns the
// number of bytes consumed.
func (d *Decoder) decode(buf []byte, base, depth int) (value.Value, int, error) {
	h, content, _, err := wire.Split(buf)
	if err != nil {
		return nil, 0, at(err, base)
	}
	consumed := h.Size + len(content)
	contentBase := base + h.Size

	switch h.Type {
	case wire.TypeNone:
		if len(content) != 0 {
			return nil, 0, errors.New(errors.PhaseDecode, errors.KindInvalidNone).
				Offset(base).
				Detail("none carries a %d byte payload", len(content)).
				Build()
		}
		return value.None{}, consumed, nil

	case wire.TypeBoolean:
		b, err := wire.Bool(content)
		if err != nil {
			return nil, 0, at(err, base)
		}
		return value.Bool(b), consumed, nil

	case wire.TypeInteger:
		i, err := wire.Int(content)
		if err != nil {
			return nil, 0, at(err, base)
		}
		return value.Int(i), consumed, nil

	case wire.TypeReal:
		r, err := wire.Real(content)
		if err != nil {
			return nil, 0, at(err, base)
		}
		return value.Real(r), consumed, nil

	case wire.TypeString:
		if !utf8.Valid(content) {
			return nil, 0, at(errors.InvalidUTF8(errors.PhaseDecode, nil, content), base)
		}
		return value.String(content), consumed, nil

	case wire.TypeBytes:
		return value.Bytes(bytes.Clone(content)), consumed, nil

	case wire.TypeList:
		if err := d.enter(depth, base); err != nil {
			return nil, 0, err
		}
		out := value.List{}
		for off := 0; off < len(content); {
			elem, n, err := d.decode(content[off:], contentBase+off, depth+1)
			if err != nil {
				return nil, 0, prefix(err, "["+strconv.Itoa(len(out))+"]")
			}
			out = append(out, elem)
			off += n
		}
		return out, consumed, nil

	case wire.TypeMap:
		if err := d.enter(depth, base); err != nil {
			return nil, 0, err
		}
		out, err := d.decodeMap(content, contentBase, depth)
		if err != nil {
			return nil, 0, err
		}
		return out, consumed, nil
	}

	return nil, 0, errors.New(errors.PhaseDecode, errors.KindUnknownType).
		Offset(base).
		Value(byte(h.Type)).
		Detail("unrecognized type bits 0x%02x", byte(h.Type)).
		Build()
}

func (d *Decoder) decodeMap(content []byte, contentBase, depth int) (value.Map, error) {
	out := value.Map{}
	index := make(map[string]int)
	scratch := getBuf()
	defer putBuf(scratch)

	for off := 0; off < len(content); {
		key, n, err := d.decode(content[off:], contentBase+off, depth+1)
		if err != nil {
			return nil, prefix(err, "{#"+strconv.Itoa(len(out))+"}")
		}
		keyOff := off
		off += n

		if off == len(content) {
			return nil, errors.New(errors.PhaseDecode, errors.KindDanglingKey).
				Path(keySegment(key)).
				Offset(contentBase + keyOff).
				Detail("map key has no paired value").
				Build()
		}

		val, n, err := d.decode(content[off:], contentBase+off, depth+1)
		if err != nil {
			return nil, prefix(err, keySegment(key))
		}
		off += n

		*scratch, err = doubleEncoder.Append((*scratch)[:0], key)
		if err != nil {
			out.Set(key, val)
			continue
		}
		ck := string(*scratch)
		if i, dup := index[ck]; dup {
			out[i].Value = val
			continue
		}
		index[ck] = len(out)
		out = append(out, value.Pair{Key: key, Value: val})
	}
	return out, nil
}

// keySegment renders the path segment for a map entry. Only error paths
// call it.
func keySegment(key value.Value) string {
	return "{" + value.Format(key) + "}"
}

func (d *Decoder) enter(depth, base int) error {
	if d.cfg.maxDepth > 0 && depth >= d.cfg.maxDepth {
		return errors.New(errors.PhaseDecode, errors.KindTooDeep).
			Offset(base).
			Detail("container nesting exceeds %d", d.cfg.maxDepth).
			Build()
	}
	return nil
}

func at(err error, base int) error {
	if te, ok := err.(*errors.Error); ok {
		return te.AtOffset(base)
	}
	return err
}
