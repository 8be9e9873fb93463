package packfile

import (
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/tinypacks/codec"
	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
)

// DefaultMaxSize bounds the decompressed body read by Read and Unmarshal.
const DefaultMaxSize = 1 << 30

type options struct {
	enc         *codec.Encoder
	dec         *codec.Decoder
	compression Compression
	maxSize     int64
}

// Option configures Marshal, Write, Unmarshal and Read.
type Option func(*options)

// WithCompression selects the body compression used when writing.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithEncoder sets the encoder used when writing.
func WithEncoder(enc *codec.Encoder) Option {
	return func(o *options) { o.enc = enc }
}

// WithDecoder sets the decoder used when reading.
func WithDecoder(dec *codec.Decoder) Option {
	return func(o *options) { o.dec = dec }
}

// WithMaxSize limits the decompressed body size accepted when reading.
func WithMaxSize(n int64) Option {
	return func(o *options) { o.maxSize = n }
}

func newOptions(opts []Option) options {
	o := options{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.enc == nil {
		o.enc = codec.NewEncoder()
	}
	if o.dec == nil {
		o.dec = codec.NewDecoder()
	}
	return o
}

// Marshal packs values one after another and compresses the result.
func Marshal(values []value.Value, opts ...Option) ([]byte, error) {
	o := newOptions(opts)

	var body []byte
	for i, v := range values {
		var err error
		body, err = o.enc.Append(body, v)
		if err != nil {
			if te, ok := err.(*errors.Error); ok {
				return nil, te.Prefix("#" + strconv.Itoa(i))
			}
			return nil, err
		}
	}

	out, err := compress(body, o.compression)
	if err != nil {
		return nil, err
	}
	Logger().Debug("packfile: marshalled",
		zap.Int("values", len(values)),
		zap.Int("packed", len(body)),
		zap.Int("stored", len(out)),
		zap.Stringer("compression", o.compression))
	return out, nil
}

// Write marshals values into w.
func Write(w io.Writer, values []value.Value, opts ...Option) error {
	data, err := Marshal(values, opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "write pack file")
	}
	return nil
}

// Unmarshal decompresses data if it carries a known frame magic and decodes
// every element in it.
func Unmarshal(data []byte, opts ...Option) ([]value.Value, error) {
	o := newOptions(opts)

	body, c, err := decompress(data, o.maxSize)
	if err != nil {
		return nil, err
	}
	Logger().Debug("packfile: loading",
		zap.Int("stored", len(data)),
		zap.Int("packed", len(body)),
		zap.Stringer("compression", c))

	return o.dec.DecodeAll(body)
}

// Read loads a whole pack file from r.
func Read(r io.Reader, opts ...Option) ([]value.Value, error) {
	o := newOptions(opts)
	data, err := io.ReadAll(io.LimitReader(r, o.maxSize+1))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read pack file")
	}
	if int64(len(data)) > o.maxSize {
		return nil, tooLarge(o.maxSize)
	}
	return Unmarshal(data, opts...)
}

// Body returns the uncompressed element stream of a pack file, for tools
// that walk elements themselves.
func Body(data []byte, opts ...Option) ([]byte, Compression, error) {
	o := newOptions(opts)
	return decompress(data, o.maxSize)
}
