package packfile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/wippyai/tinypacks/errors"
)

// Compression identifies how a pack file body is compressed. The body is
// self-identifying: compressed bodies start with their frame magic, and
// neither magic is a valid first element of an uncompressed body.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZstd
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a compression name as printed by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	}
	return 0, errors.New(errors.PhaseLoad, errors.KindUnsupported).
		Value(name).
		Detail("unknown compression %q", name).
		Build()
}

// Detect reports the compression of a pack file body from its leading bytes.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, lz4Magic):
		return CompressionLZ4
	}
	return CompressionNone
}

// zstdEncoder is reused across calls; zstd.Encoder is safe for concurrent
// EncodeAll.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("packfile: zstd encoder initialization failed: " + err.Error())
	}
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "lz4 compress")
		}
		if err := w.Close(); err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "lz4 compress")
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Unsupported(errors.PhaseLoad, "unsupported compression "+c.String())
}

// decompress expands data according to its magic. The result may not
// exceed limit bytes.
func decompress(data []byte, limit int64) ([]byte, Compression, error) {
	c := Detect(data)

	var r io.Reader
	switch c {
	case CompressionNone:
		if int64(len(data)) > limit {
			return nil, c, tooLarge(limit)
		}
		return data, c, nil

	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, c, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "zstd decompress")
		}
		defer dec.Close()
		r = dec

	case CompressionLZ4:
		r = lz4.NewReader(bytes.NewReader(data))
	}

	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, c, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, c.String()+" decompress")
	}
	if int64(len(out)) > limit {
		return nil, c, tooLarge(limit)
	}
	return out, c, nil
}

func tooLarge(limit int64) error {
	return errors.New(errors.PhaseLoad, errors.KindTooLong).
		Value(limit).
		Detail("pack file body exceeds %d bytes", limit).
		Build()
}
