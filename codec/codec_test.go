package codec_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/tinypacks/codec"
	tperrors "github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
)

func mustEncode(t *testing.T, v value.Value, opts ...codec.Option) []byte {
	t.Helper()
	b, err := codec.Encode(v, opts...)
	if err != nil {
		t.Fatalf("Encode(%s): %v", value.Format(v), err)
	}
	return b
}

func TestEncodeScenarios(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want []byte
	}{
		{"none", value.None{}, []byte{0x00}},
		{"nil interface", nil, []byte{0x00}},
		{"true", value.Bool(true), []byte{0x21, 0x01}},
		{"false", value.Bool(false), []byte{0x20}},
		{"zero", value.Int(0), []byte{0x40}},
		{"123", value.Int(123), []byte{0x41, 0x7B}},
		{"-123", value.Int(-123), []byte{0x41, 0x85}},
		{"-1", value.Int(-1), []byte{0x41, 0xFF}},
		{"300", value.Int(300), []byte{0x42, 0x01, 0x2C}},
		{"real zero", value.Real(0), []byte{0x60}},
		{"real half", value.Real(0.5), []byte{0x64, 0x3F, 0x00, 0x00, 0x00}},
		{"Hi", value.String("Hi"), []byte{0x82, 0x48, 0x69}},
		{"empty string", value.String(""), []byte{0x80}},
		{"bytes", value.Bytes("ary"), []byte{0xA3, 'a', 'r', 'y'}},
		{"list", value.List{value.Int(1), value.Int(2)}, []byte{0xC4, 0x41, 0x01, 0x41, 0x02}},
		{"empty list", value.List{}, []byte{0xC0}},
		{"map", value.Map{{Key: value.String("a"), Value: value.Int(1)}}, []byte{0xE4, 0x81, 0x61, 0x41, 0x01}},
		{"empty map", value.Map{}, []byte{0xE0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEncode(t, tt.v)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestEncodeDoublePrecision(t *testing.T) {
	got := mustEncode(t, value.Real(0.1), codec.WithDoublePrecision(true))
	want := []byte{0x68, 0x3F, 0xB9, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9A}
	if !bytes.Equal(got, want) {
		t.Errorf("double 0.1 = % x, want % x", got, want)
	}

	enc := codec.NewEncoder(codec.WithDoublePrecision(true))
	if !enc.DoublePrecision() {
		t.Error("DoublePrecision() = false")
	}
	if got, _ := enc.Encode(value.Real(math.Copysign(0, -1))); !bytes.Equal(got, []byte{0x60}) {
		t.Errorf("negative zero = % x, want 60", got)
	}
}

func TestRoundTrip(t *testing.T) {
	nested := value.Map{
		{Key: value.String("text"), Value: value.String("Hello world!")},
		{Key: value.Bytes("bin"), Value: value.Bytes("ary")},
		{Key: value.String("status"), Value: value.Bool(true)},
		{Key: value.String("not_status"), Value: value.Bool(false)},
		{Key: value.String("avg"), Value: value.Real(0.5)},
		{Key: value.String("count"), Value: value.Int(123)},
		{Key: value.String("countdown"), Value: value.Int(-123)},
		{Key: value.List{value.Int(1)}, Value: value.Map{{Key: value.None{}, Value: value.List{}}}},
	}

	tests := []struct {
		name string
		v    value.Value
	}{
		{"none", value.None{}},
		{"true", value.Bool(true)},
		{"false", value.Bool(false)},
		{"min int64", value.Int(math.MinInt64)},
		{"max int64", value.Int(math.MaxInt64)},
		{"-40000", value.Int(-40000)},
		{"single exact", value.Real(-2.75)},
		{"infinity", value.Real(math.Inf(-1))},
		{"unicode", value.String("héllo, 世界")},
		{"empty bytes", value.Bytes{}},
		{"nested", nested},
		{"deep list", value.List{value.List{value.List{value.List{value.Int(7)}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.DecodeFirst(mustEncode(t, tt.v))
			if err != nil {
				t.Fatalf("DecodeFirst: %v", err)
			}
			if !value.Equal(got, tt.v) {
				t.Errorf("round trip = %s, want %s", value.Format(got), value.Format(tt.v))
			}
		})
	}
}

func TestRoundTripRealPrecision(t *testing.T) {
	in := value.Real(0.1)

	got, err := codec.DecodeFirst(mustEncode(t, in))
	if err != nil {
		t.Fatal(err)
	}
	want := value.Real(float64(float32(0.1)))
	if !value.Equal(got, want) {
		t.Errorf("single precision = %v, want %v", got, want)
	}

	got, err = codec.DecodeFirst(mustEncode(t, in, codec.WithDoublePrecision(true)))
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(got, in) {
		t.Errorf("double precision = %v, want %v", got, in)
	}

	nan := value.Real(math.NaN())
	got, err = codec.DecodeFirst(mustEncode(t, nan, codec.WithDoublePrecision(true)))
	if err != nil || !value.Equal(got, nan) {
		t.Errorf("NaN = %v, %v", got, err)
	}
}

func TestNegativeZeroCollapses(t *testing.T) {
	got, err := codec.DecodeFirst(mustEncode(t, value.Real(math.Copysign(0, -1))))
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(got, value.Real(0)) {
		t.Errorf("negative zero decoded as %v, want +0", got)
	}
}

func TestIntegerWidthBoundaries(t *testing.T) {
	tests := []struct {
		v     int64
		width int
	}{
		{-128, 1}, {127, 1},
		{-129, 2}, {128, 2},
		{-32768, 2}, {32767, 2},
		{-32769, 4}, {32768, 4},
		{math.MinInt32, 4}, {math.MaxInt32, 4},
		{math.MinInt32 - 1, 8}, {math.MaxInt32 + 1, 8},
	}

	for _, tt := range tests {
		first := mustEncode(t, value.Int(tt.v))
		second := mustEncode(t, value.Int(tt.v))
		if !bytes.Equal(first, second) {
			t.Errorf("%d: encodings differ", tt.v)
		}
		if len(first) != 1+tt.width || int(first[0]&0x1F) != tt.width {
			t.Errorf("%d: encoded % x, want width %d", tt.v, first, tt.width)
		}
		got, err := codec.DecodeFirst(first)
		if err != nil || !value.Equal(got, value.Int(tt.v)) {
			t.Errorf("%d: decoded %v, %v", tt.v, got, err)
		}
	}
}

func TestLengthTiers(t *testing.T) {
	tests := []struct {
		name   string
		length int
		header []byte
	}{
		{"direct 30", 30, []byte{0xA0 | 30}},
		{"extended-16 31", 31, []byte{0xBF, 0x00, 0x1F}},
		{"extended-16 0xFFFE", 0xFFFE, []byte{0xBF, 0xFF, 0xFE}},
		{"extended-32 0xFFFF", 0xFFFF, []byte{0xBF, 0xFF, 0xFF, 0x00, 0x00, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte{0x5A}, tt.length)
			b := mustEncode(t, value.Bytes(payload))
			if !bytes.Equal(b[:len(tt.header)], tt.header) {
				t.Errorf("header = % x, want % x", b[:len(tt.header)], tt.header)
			}
			if len(b) != len(tt.header)+tt.length {
				t.Errorf("len = %d", len(b))
			}
			got, rest, err := codec.DecodeOne(b)
			if err != nil {
				t.Fatal(err)
			}
			if len(rest) != 0 || !value.Equal(got, value.Bytes(payload)) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestContainerLengthTiers(t *testing.T) {
	// 16 single-byte integers give 32 bytes of content, past the direct tier.
	list := make(value.List, 16)
	for i := range list {
		list[i] = value.Int(i + 1)
	}
	b := mustEncode(t, list)
	if !bytes.Equal(b[:3], []byte{0xDF, 0x00, 0x20}) {
		t.Errorf("list header = % x", b[:3])
	}

	got, err := codec.DecodeFirst(b)
	if err != nil || !value.Equal(got, list) {
		t.Errorf("decoded %v, %v", got, err)
	}

	// A nested list whose content crosses into extended-32 exercises the
	// shift inside the writer at two levels.
	inner := value.Bytes(bytes.Repeat([]byte{1}, 0xFFF0))
	outer := value.List{inner, value.String(strings.Repeat("x", 20))}
	b = mustEncode(t, value.List{outer})
	got, err = codec.DecodeFirst(b)
	if err != nil || !value.Equal(got, value.List{outer}) {
		t.Errorf("nested extended decode failed: %v", err)
	}
}

func TestDecodeOneRemainder(t *testing.T) {
	buf := append(mustEncode(t, value.String("Hi")), 0x41, 0x05)
	v, rest, err := codec.DecodeOne(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(v, value.String("Hi")) {
		t.Errorf("v = %v", v)
	}
	if !bytes.Equal(rest, []byte{0x41, 0x05}) {
		t.Errorf("rest = % x", rest)
	}
}

func TestDecodeFirstLenientAndStrict(t *testing.T) {
	buf := []byte{0x41, 0x07, 0x00, 0x00}

	v, err := codec.DecodeFirst(buf)
	if err != nil || !value.Equal(v, value.Int(7)) {
		t.Errorf("lenient = %v, %v", v, err)
	}

	strict := codec.NewDecoder(codec.WithStrict(true))
	if !strict.Strict() {
		t.Error("Strict() = false")
	}
	_, err = strict.DecodeFirst(buf)
	if !errors.Is(err, tperrors.ErrTrailingData) {
		t.Fatalf("strict err = %v", err)
	}
	var te *tperrors.Error
	if errors.As(err, &te) && te.Offset != 2 {
		t.Errorf("offset = %d, want 2", te.Offset)
	}

	if _, err := codec.DecodeFirst(buf[:2], codec.WithStrict(true)); err != nil {
		t.Errorf("exact buffer strict err = %v", err)
	}
}

func TestDecodeMapLastWriteWins(t *testing.T) {
	// {"a": 1, "b": 2, "a": 3} with the duplicate at a different int width.
	buf := []byte{
		0xE0 | 13,
		0x81, 'a', 0x41, 0x01,
		0x81, 'b', 0x41, 0x02,
		0x81, 'a', 0x42, 0x00, 0x03,
	}
	got, err := codec.DecodeFirst(buf)
	if err != nil {
		t.Fatal(err)
	}
	want := value.Map{
		{Key: value.String("a"), Value: value.Int(3)},
		{Key: value.String("b"), Value: value.Int(2)},
	}
	if !value.Equal(got, want) {
		t.Errorf("got %s, want %s", value.Format(got), value.Format(want))
	}
}

func TestDecodeMapNonCanonicalKeysCollapse(t *testing.T) {
	// Keys 5 (width 1) and 5 (width 4) are the same logical key.
	buf := []byte{
		0xE0 | 10,
		0x41, 0x05, 0x20,
		0x44, 0x00, 0x00, 0x00, 0x05, 0x21, 0x01,
	}
	got, err := codec.DecodeFirst(buf)
	if err != nil {
		t.Fatal(err)
	}
	want := value.Map{{Key: value.Int(5), Value: value.Bool(true)}}
	if !value.Equal(got, want) {
		t.Errorf("got %s", value.Format(got))
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		want   error
		name   string
		buf    []byte
		offset int
		path   string
	}{
		{name: "empty", buf: nil, want: tperrors.ErrEmptyInput},
		{name: "truncated ext16", buf: []byte{0x9F, 0x00}, want: tperrors.ErrTruncated},
		{name: "truncated ext32", buf: []byte{0x9F, 0xFF, 0xFF, 0x00}, want: tperrors.ErrTruncated},
		{name: "truncated content", buf: []byte{0x83, 'a'}, want: tperrors.ErrTruncated},
		{name: "truncated ext32 content", buf: []byte{0xBF, 0xFF, 0xFF, 0x00, 0x01, 0x00, 0x00, 0x01}, want: tperrors.ErrTruncated},
		{name: "false as byte zero", buf: []byte{0x21, 0x00}, want: tperrors.ErrInvalidBoolean},
		{name: "boolean width", buf: []byte{0x22, 0x01, 0x01}, want: tperrors.ErrInvalidWidth},
		{name: "integer width 3", buf: []byte{0x43, 0, 0, 1}, want: tperrors.ErrInvalidWidth},
		{name: "real width 2", buf: []byte{0x62, 0, 0}, want: tperrors.ErrInvalidWidth},
		{name: "none payload", buf: []byte{0x01, 0x00}, want: tperrors.ErrInvalidNone},
		{name: "invalid utf8", buf: []byte{0x82, 0xC3, 0x28}, want: tperrors.ErrInvalidUTF8},
		{name: "dangling key", buf: []byte{0xE2, 0x81, 'a'}, want: tperrors.ErrDanglingKey, offset: 1, path: `{"a"}`},
		{name: "dangling second key", buf: []byte{0xE5, 0x81, 'a', 0x20, 0x41, 0x02}, want: tperrors.ErrDanglingKey, offset: 4, path: `{2}`},
		{name: "child truncated inside list", buf: []byte{0xC3, 0x40, 0x42, 0x01}, want: tperrors.ErrTruncated, offset: 2, path: "[1]"},
		{name: "truncated map value", buf: []byte{0xE5, 0x81, 'k', 0x43, 0, 0}, want: tperrors.ErrTruncated, offset: 3, path: `{"k"}`},
		{name: "truncated value under bytes key", buf: []byte{0xE6, 0xA2, 0x01, 0x02, 0x43, 0, 0}, want: tperrors.ErrTruncated, offset: 4, path: `{h'0102'}`},
		{name: "bad boolean nested", buf: []byte{0xC4, 0xC2, 0x21, 0x00, 0x40}, want: tperrors.ErrInvalidBoolean, offset: 2, path: "[0][0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, rest, err := codec.DecodeOne(tt.buf)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if v != nil || rest != nil {
				t.Error("failed decode must yield no value")
			}
			var te *tperrors.Error
			if !errors.As(err, &te) {
				t.Fatalf("err is %T", err)
			}
			if te.Phase != tperrors.PhaseDecode {
				t.Errorf("phase = %s", te.Phase)
			}
			if tt.offset != 0 && te.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", te.Offset, tt.offset)
			}
			if tt.path != "" && strings.Join(te.Path, "") != tt.path {
				t.Errorf("path = %q, want %q", strings.Join(te.Path, ""), tt.path)
			}
		})
	}
}

func TestDecodeOddMapContent(t *testing.T) {
	// Three complete elements inside a map: key, value, key.
	buf := []byte{0xE3, 0x40, 0x40, 0x40}
	_, err := codec.DecodeFirst(buf)
	if !errors.Is(err, tperrors.ErrDanglingKey) {
		t.Errorf("err = %v, want dangling key", err)
	}
}

func TestDecodeCopiesContent(t *testing.T) {
	buf := mustEncode(t, value.List{value.String("abc"), value.Bytes{1, 2, 3}})
	got, err := codec.DecodeFirst(buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		buf[i] = 0xEE
	}
	want := value.List{value.String("abc"), value.Bytes{1, 2, 3}}
	if !value.Equal(got, want) {
		t.Errorf("decoded value changed with input: %s", value.Format(got))
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	deep := value.Value(value.Int(1))
	for i := 0; i < 10; i++ {
		deep = value.List{deep}
	}
	buf := mustEncode(t, deep)

	if _, err := codec.DecodeFirst(buf, codec.WithMaxDepth(10)); err != nil {
		t.Errorf("depth 10 within limit: %v", err)
	}
	_, err := codec.DecodeFirst(buf, codec.WithMaxDepth(9))
	if !errors.Is(err, tperrors.ErrTooDeep) {
		t.Errorf("err = %v, want too_deep", err)
	}
	if _, err := codec.DecodeFirst(buf, codec.WithMaxDepth(0)); err != nil {
		t.Errorf("unlimited depth: %v", err)
	}
}

func TestDecodeAll(t *testing.T) {
	var buf []byte
	enc := codec.NewEncoder()
	values := []value.Value{value.Int(1), value.String("two"), value.List{value.None{}}}
	for _, v := range values {
		var err error
		buf, err = enc.Append(buf, v)
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := codec.DecodeAll(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(values) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range values {
		if !value.Equal(got[i], values[i]) {
			t.Errorf("[%d] = %s", i, value.Format(got[i]))
		}
	}

	none, err := codec.DecodeAll(nil)
	if err != nil || len(none) != 0 {
		t.Errorf("empty = %v, %v", none, err)
	}

	_, err = codec.DecodeAll(append(buf, 0x83))
	var te *tperrors.Error
	if !errors.As(err, &te) || te.Kind != tperrors.KindTruncated || te.Path[0] != "#3" || te.Offset != len(buf) {
		t.Errorf("err = %v", err)
	}
}

func TestEncodeErrors(t *testing.T) {
	_, err := codec.Encode(value.List{value.Int(1), value.String("ok\xff")})
	if !errors.Is(err, tperrors.ErrInvalidUTF8) {
		t.Fatalf("err = %v", err)
	}
	var te *tperrors.Error
	if errors.As(err, &te) && (te.Phase != tperrors.PhaseEncode || strings.Join(te.Path, "") != "[1]") {
		t.Errorf("err = %v", err)
	}

	_, err = codec.EncodeAny(map[string]any{"n": uint64(math.MaxUint64)})
	if !errors.Is(err, tperrors.ErrOverflow) {
		t.Errorf("overflow err = %v", err)
	}

	_, err = codec.EncodeAny(make(chan int))
	if !errors.Is(err, tperrors.ErrUnsupported) {
		t.Errorf("unsupported err = %v", err)
	}

	for _, r := range []float64{1e300, -1e300} {
		_, err = codec.Encode(value.List{value.Real(r)})
		if !errors.Is(err, tperrors.ErrOverflow) {
			t.Errorf("single precision %g: err = %v, want overflow", r, err)
			continue
		}
		if errors.As(err, &te) && strings.Join(te.Path, "") != "[0]" {
			t.Errorf("single precision %g: path = %v", r, te.Path)
		}
	}
}

func TestEncodeLargeRealDouble(t *testing.T) {
	got, err := codec.Encode(value.Real(1e300), codec.WithDoublePrecision(true))
	if err != nil {
		t.Fatal(err)
	}
	back, err := codec.DecodeFirst(got)
	if err != nil {
		t.Fatal(err)
	}
	if back != value.Real(1e300) {
		t.Errorf("round trip = %v", back)
	}
}

func TestEncodeMaxDepth(t *testing.T) {
	loop := value.List{nil}
	loop[0] = loop
	_, err := codec.Encode(loop)
	if !errors.Is(err, tperrors.ErrTooDeep) {
		t.Fatalf("self-referential list: err = %v, want too_deep", err)
	}

	m := value.Map{{Key: value.String("self")}}
	m[0].Value = m
	if _, err := codec.Encode(m); !errors.Is(err, tperrors.ErrTooDeep) {
		t.Errorf("self-referential map: err = %v, want too_deep", err)
	}

	deep := value.Value(value.Int(1))
	for i := 0; i < 10; i++ {
		deep = value.List{deep}
	}
	if _, err := codec.Encode(deep, codec.WithMaxDepth(10)); err != nil {
		t.Errorf("depth 10 within limit: %v", err)
	}
	if _, err := codec.Encode(deep, codec.WithMaxDepth(9)); !errors.Is(err, tperrors.ErrTooDeep) {
		t.Errorf("depth 10 over limit 9: err = %v", err)
	}
}

func TestEncodeAny(t *testing.T) {
	got, err := codec.EncodeAny([]any{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0xC4, 0x41, 0x01, 0x41, 0x02}) {
		t.Errorf("got % x", got)
	}
}

func TestAppendKeepsPrefixOnError(t *testing.T) {
	dst := []byte{0xAB}
	out, err := codec.NewEncoder().Append(dst, value.String("\xff"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(out) != 1 || out[0] != 0xAB {
		t.Errorf("out = % x", out)
	}
}

func TestDigest(t *testing.T) {
	a := value.Map{{Key: value.String("x"), Value: value.List{value.Int(1), value.Real(0.25)}}}
	b := value.Map{{Key: value.String("x"), Value: value.List{value.Int(1), value.Real(0.25)}}}
	c := value.Map{{Key: value.String("x"), Value: value.List{value.Int(2), value.Real(0.25)}}}

	da, err := codec.Digest(a)
	if err != nil {
		t.Fatal(err)
	}
	db, _ := codec.Digest(b)
	dc, _ := codec.Digest(c)
	if da != db {
		t.Error("equal values must have equal digests")
	}
	if da == dc {
		t.Error("different values should not collide")
	}
	if len(da.String()) != 64 {
		t.Errorf("hex digest = %q", da.String())
	}

	packed := mustEncode(t, a, codec.WithDoublePrecision(true))
	if codec.DigestBytes(packed) != da {
		t.Error("DigestBytes should match Digest of the double encoding")
	}

	if _, err := codec.Digest(value.String("\xff")); err == nil {
		t.Error("digest of unencodable value should fail")
	}
}

func TestConcurrentUse(t *testing.T) {
	enc := codec.NewEncoder(codec.WithDoublePrecision(true))
	dec := codec.NewDecoder(codec.WithStrict(true))
	v := value.List{value.String("shared"), value.Real(1.5), value.Map{{Key: value.Int(1), Value: value.Int(2)}}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b, err := enc.Encode(v)
				if err != nil {
					t.Error(err)
					return
				}
				got, err := dec.DecodeFirst(b)
				if err != nil || !value.Equal(got, v) {
					t.Errorf("concurrent round trip: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDecodeFailureLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dec := codec.NewDecoder(codec.WithLogger(zap.New(core)))

	if _, err := dec.DecodeFirst([]byte{0xE2, 0x81, 'a'}); err == nil {
		t.Fatal("expected error")
	}
	entries := logs.FilterMessage("tinypacks: decode failed").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries", len(entries))
	}
	if entries[0].ContextMap()["kind"] != string(tperrors.KindDanglingKey) {
		t.Errorf("fields = %v", entries[0].ContextMap())
	}
}
