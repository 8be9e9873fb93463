package hostmem

import (
	"math"
	"strconv"
	"unicode/utf8"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
)

// Packed values that cross into a component are described by WIT types.
// The mapping is:
//
//	bool                    Bool
//	u8 ... s64              Int (range checked)
//	f32, f64                Real
//	char, string, enum      String
//	list<u8>                Bytes
//	list<T>, tuple<...>     List
//	flags                   List of String
//	record                  Map with String keys
//	option<T>               None or T
//	result<T, E>            Map {"ok": T} or {"err": E}
//	variant                 Map {case: payload}
//	own<T>, borrow<T>       Int handle

// KindOf returns the value kind that carries t. Option types report the
// kind of their payload.
func KindOf(t wit.Type) (value.Kind, error) {
	switch tt := t.(type) {
	case wit.Bool:
		return value.KindBool, nil
	case wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.U64, wit.S64:
		return value.KindInt, nil
	case wit.F32, wit.F64:
		return value.KindReal, nil
	case wit.Char, wit.String:
		return value.KindString, nil
	case *wit.TypeDef:
		return kindOfTypeDef(tt)
	}
	return 0, errors.New(errors.PhaseHost, errors.KindUnsupported).
		Detail("unsupported WIT type: %T", t).
		Build()
}

func kindOfTypeDef(t *wit.TypeDef) (value.Kind, error) {
	switch kind := t.Kind.(type) {
	case *wit.List:
		if _, ok := kind.Type.(wit.U8); ok {
			return value.KindBytes, nil
		}
		return value.KindList, nil
	case *wit.Tuple, *wit.Flags:
		return value.KindList, nil
	case *wit.Record, *wit.Result, *wit.Variant:
		return value.KindMap, nil
	case *wit.Enum:
		return value.KindString, nil
	case *wit.Option:
		return KindOf(kind.Type)
	case *wit.Own, *wit.Borrow:
		return value.KindInt, nil
	case wit.Type:
		return KindOf(kind)
	}
	return 0, errors.New(errors.PhaseHost, errors.KindUnsupported).
		Detail("unsupported TypeDef kind: %T", t.Kind).
		Build()
}

// Conform checks that v has the shape WIT type t describes. The returned
// error carries the path to the first offending node.
func Conform(v value.Value, t wit.Type) error {
	return conform(v, t, nil)
}

type intRange struct {
	name     string
	min, max int64
}

func rangeOf(t wit.Type) (intRange, bool) {
	switch t.(type) {
	case wit.U8:
		return intRange{"u8", 0, math.MaxUint8}, true
	case wit.S8:
		return intRange{"s8", math.MinInt8, math.MaxInt8}, true
	case wit.U16:
		return intRange{"u16", 0, math.MaxUint16}, true
	case wit.S16:
		return intRange{"s16", math.MinInt16, math.MaxInt16}, true
	case wit.U32:
		return intRange{"u32", 0, math.MaxUint32}, true
	case wit.S32:
		return intRange{"s32", math.MinInt32, math.MaxInt32}, true
	case wit.U64:
		return intRange{"u64", 0, math.MaxInt64}, true
	case wit.S64:
		return intRange{"s64", math.MinInt64, math.MaxInt64}, true
	}
	return intRange{}, false
}

func conform(v value.Value, t wit.Type, path []string) error {
	if v == nil {
		v = value.None{}
	}
	if r, ok := rangeOf(t); ok {
		i, ok := v.(value.Int)
		if !ok {
			return mismatch(path, v, r.name)
		}
		if int64(i) < r.min || int64(i) > r.max {
			return errors.Overflow(errors.PhaseHost, path, int64(i), r.name)
		}
		return nil
	}

	switch tt := t.(type) {
	case wit.Bool:
		return expect(v, value.KindBool, path, "bool")
	case wit.F32, wit.F64:
		return expect(v, value.KindReal, path, "float")
	case wit.String:
		return expect(v, value.KindString, path, "string")
	case wit.Char:
		s, ok := v.(value.String)
		if !ok {
			return mismatch(path, v, "char")
		}
		if utf8.RuneCountInString(string(s)) != 1 {
			return errors.InvalidData(errors.PhaseHost, path, "char must hold exactly one code point")
		}
		return nil
	case *wit.TypeDef:
		return conformTypeDef(v, tt, path)
	}
	return errors.New(errors.PhaseHost, errors.KindUnsupported).
		Path(path...).
		Detail("unsupported WIT type: %T", t).
		Build()
}

func conformTypeDef(v value.Value, t *wit.TypeDef, path []string) error {
	switch kind := t.Kind.(type) {
	case *wit.List:
		if _, ok := kind.Type.(wit.U8); ok {
			return expect(v, value.KindBytes, path, "list<u8>")
		}
		list, ok := v.(value.List)
		if !ok {
			return mismatch(path, v, "list")
		}
		for i, elem := range list {
			if err := conform(elem, kind.Type, index(path, i)); err != nil {
				return err
			}
		}
		return nil

	case *wit.Tuple:
		list, ok := v.(value.List)
		if !ok {
			return mismatch(path, v, "tuple")
		}
		if len(list) != len(kind.Types) {
			return errors.InvalidData(errors.PhaseHost, path,
				"tuple has "+strconv.Itoa(len(kind.Types))+" elements, value has "+strconv.Itoa(len(list)))
		}
		for i, elem := range list {
			if err := conform(elem, kind.Types[i], index(path, i)); err != nil {
				return err
			}
		}
		return nil

	case *wit.Record:
		m, ok := v.(value.Map)
		if !ok {
			return mismatch(path, v, "record")
		}
		for _, p := range m {
			name, ok := p.Key.(value.String)
			if !ok {
				return mismatch(field(path, value.Format(p.Key)), p.Key, "field name")
			}
			if !hasField(kind, string(name)) {
				return errors.InvalidData(errors.PhaseHost, field(path, string(name)), "record has no such field")
			}
		}
		for _, f := range kind.Fields {
			fv, ok := m.Get(value.String(f.Name))
			if !ok {
				return errors.InvalidData(errors.PhaseHost, field(path, f.Name), "missing record field")
			}
			if err := conform(fv, f.Type, field(path, f.Name)); err != nil {
				return err
			}
		}
		return nil

	case *wit.Enum:
		s, ok := v.(value.String)
		if !ok {
			return mismatch(path, v, "enum")
		}
		for _, c := range kind.Cases {
			if c.Name == string(s) {
				return nil
			}
		}
		return errors.InvalidData(errors.PhaseHost, path, "unknown enum case "+strconv.Quote(string(s)))

	case *wit.Flags:
		list, ok := v.(value.List)
		if !ok {
			return mismatch(path, v, "flags")
		}
		for i, elem := range list {
			s, ok := elem.(value.String)
			if !ok {
				return mismatch(index(path, i), elem, "flag name")
			}
			if !hasFlag(kind, string(s)) {
				return errors.InvalidData(errors.PhaseHost, index(path, i), "unknown flag "+strconv.Quote(string(s)))
			}
		}
		return nil

	case *wit.Option:
		if _, ok := v.(value.None); ok {
			return nil
		}
		return conform(v, kind.Type, path)

	case *wit.Result:
		name, payload, err := single(v, path, "result")
		if err != nil {
			return err
		}
		switch name {
		case "ok":
			return conformPayload(payload, kind.OK, field(path, name))
		case "err":
			return conformPayload(payload, kind.Err, field(path, name))
		}
		return errors.InvalidData(errors.PhaseHost, path, "result key must be \"ok\" or \"err\"")

	case *wit.Variant:
		name, payload, err := single(v, path, "variant")
		if err != nil {
			return err
		}
		for _, c := range kind.Cases {
			if c.Name == name {
				return conformPayload(payload, c.Type, field(path, name))
			}
		}
		return errors.InvalidData(errors.PhaseHost, path, "unknown variant case "+strconv.Quote(name))

	case *wit.Own, *wit.Borrow:
		return conform(v, wit.U32{}, path)

	case wit.Type:
		return conform(v, kind, path)
	}
	return errors.New(errors.PhaseHost, errors.KindUnsupported).
		Path(path...).
		Detail("unsupported TypeDef kind: %T", t.Kind).
		Build()
}

// single unpacks a one-pair map keyed by a string, the shape of results
// and variants.
func single(v value.Value, path []string, want string) (string, value.Value, error) {
	m, ok := v.(value.Map)
	if !ok {
		return "", nil, mismatch(path, v, want)
	}
	if len(m) != 1 {
		return "", nil, errors.InvalidData(errors.PhaseHost, path, want+" must be a map with exactly one pair")
	}
	name, ok := m[0].Key.(value.String)
	if !ok {
		return "", nil, mismatch(path, m[0].Key, want+" case name")
	}
	return string(name), m[0].Value, nil
}

func conformPayload(v value.Value, t wit.Type, path []string) error {
	if t == nil {
		return expect(v, value.KindNone, path, "no payload")
	}
	return conform(v, t, path)
}

func hasField(r *wit.Record, name string) bool {
	for _, f := range r.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func hasFlag(f *wit.Flags, name string) bool {
	for _, fl := range f.Flags {
		if fl.Name == name {
			return true
		}
	}
	return false
}

func expect(v value.Value, k value.Kind, path []string, want string) error {
	if v.Kind() != k {
		return mismatch(path, v, want)
	}
	return nil
}

func mismatch(path []string, v value.Value, want string) error {
	got := value.KindNone.String()
	if v != nil {
		got = v.Kind().String()
	}
	return errors.TypeMismatch(errors.PhaseHost, path, got, want)
}

func index(path []string, i int) []string {
	return with(path, "["+strconv.Itoa(i)+"]")
}

func field(path []string, name string) []string {
	return with(path, "."+name)
}

func with(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
