package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindInvalidWidth,
				Path:   []string{"[1]", "{count}"},
				Detail: "integer cannot have a 3 byte payload",
				Offset: 12,
			},
			contains: []string{"[decode]", "invalid_width", "[1]{count}", "offset 12", "3 byte payload"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindTooLong,
				Offset: -1,
			},
			contains: []string{"[encode]", "too_long"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseBridge,
				Kind:   KindInvalidData,
				Detail: "bad json",
				Cause:  errors.New("underlying error"),
				Offset: -1,
			},
			contains: []string{"[bridge]", "invalid_data", "bad json", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_EncodeOmitsOffset(t *testing.T) {
	err := &Error{Phase: PhaseEncode, Kind: KindOverflow, Offset: 3}
	if strings.Contains(err.Error(), "offset") {
		t.Errorf("encode error should not print offset: %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseLoad, KindInvalidData, cause, "read pack")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not follow cause chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindDanglingKey,
		Path:  []string{"{a}"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindDanglingKey}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindDanglingKey}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindTruncated}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrDanglingKey) {
		t.Error("sentinel should match regardless of phase")
	}
	if errors.Is(err, ErrTruncated) {
		t.Error("sentinel of another kind should not match")
	}
}

func TestError_AtOffset(t *testing.T) {
	inner := Truncated("content", 4, 2)
	shifted := inner.AtOffset(10, "[0]")

	if shifted.Offset != 10 {
		t.Errorf("Offset = %d, want 10", shifted.Offset)
	}
	if len(shifted.Path) != 1 || shifted.Path[0] != "[0]" {
		t.Errorf("Path = %v, want [[0]]", shifted.Path)
	}
	if inner.Offset != 0 {
		t.Error("AtOffset must not mutate the receiver")
	}

	again := shifted.AtOffset(5, "{k}")
	if again.Offset != 15 {
		t.Errorf("Offset = %d, want 15", again.Offset)
	}
	if strings.Join(again.Path, "") != "{k}[0]" {
		t.Errorf("Path = %v, want {k}[0]", again.Path)
	}

	unknown := (&Error{Phase: PhaseDecode, Kind: KindTruncated, Offset: -1}).AtOffset(7)
	if unknown.Offset != 7 {
		t.Errorf("Offset = %d, want 7", unknown.Offset)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindInvalidBoolean).
		Path("[3]").
		Offset(9).
		Value(byte(0)).
		Cause(cause).
		Detail("expected %s, got %d", "1", 0).
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindInvalidBoolean {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidBoolean)
	}
	if err.Offset != 9 {
		t.Errorf("Offset = %d, want 9", err.Offset)
	}
	if err.Detail != "expected 1, got 0" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Value != byte(0) {
		t.Errorf("Value = %v", err.Value)
	}
	if !errors.Is(err, cause) {
		t.Error("Cause not set")
	}
}

func TestBuilder_DefaultOffsetUnknown(t *testing.T) {
	err := New(PhaseEncode, KindUnsupported).Build()
	if err.Offset != -1 {
		t.Errorf("Offset = %d, want -1", err.Offset)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{EmptyInput(), PhaseDecode, KindEmptyInput},
		{Truncated("header", 2, 0), PhaseDecode, KindTruncated},
		{InvalidWidth("real", 3), PhaseDecode, KindInvalidWidth},
		{InvalidUTF8(PhaseDecode, nil, []byte{0xff}), PhaseDecode, KindInvalidUTF8},
		{Overflow(PhaseEncode, nil, uint64(1<<63), "int64"), PhaseEncode, KindOverflow},
		{TooLong("string", 1<<33), PhaseEncode, KindTooLong},
		{Unsupported(PhaseEncode, "chan int"), PhaseEncode, KindUnsupported},
		{TypeMismatch(PhaseHost, nil, "string", "u32"), PhaseHost, KindTypeMismatch},
		{OutOfBounds(PhaseHost, 10, 5, 12), PhaseHost, KindOutOfBounds},
		{AllocationFailed(PhaseHost, 8, 1, nil), PhaseHost, KindAllocation},
		{InvalidData(PhaseBridge, nil, "x"), PhaseBridge, KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.err.Phase != tt.phase || tt.err.Kind != tt.kind {
				t.Errorf("got %s/%s, want %s/%s", tt.err.Phase, tt.err.Kind, tt.phase, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestInvalidUTF8_TruncatesPreview(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = 0xff
	}
	err := InvalidUTF8(PhaseDecode, nil, data)
	if strings.Count(err.Detail, "ff") != 32 {
		t.Errorf("preview should hold 32 bytes: %q", err.Detail)
	}
}
