package value

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"

	"github.com/wippyai/tinypacks/errors"
)

// Of converts a native Go value into a Value.
//
// Supported inputs: nil, Value, bool, every int and uint width, float32,
// float64, string, []byte, *big.Int, []any, []Value, map[string]any and
// []Pair. Other slices and string-keyed maps are converted through
// reflection. Map keys are sorted so the result is deterministic.
// Integers outside the int64 range fail with an overflow error.
func Of(x any) (Value, error) {
	return of(x, nil)
}

// MustOf is Of that panics on error. Intended for tests and literals.
func MustOf(x any) Value {
	v, err := Of(x)
	if err != nil {
		panic(err)
	}
	return v
}

func of(x any, path []string) (Value, error) {
	switch v := x.(type) {
	case nil:
		return None{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint:
		return ofUint(uint64(v), path)
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint64:
		return ofUint(v, path)
	case *big.Int:
		if v == nil {
			return None{}, nil
		}
		if !v.IsInt64() {
			return nil, errors.Overflow(errors.PhaseEncode, path, v.String(), "int64")
		}
		return Int(v.Int64()), nil
	case float32:
		return Real(v), nil
	case float64:
		return Real(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Bytes(v), nil
	case []Value:
		return List(v), nil
	case []Pair:
		return Map(v), nil
	case []any:
		out := make(List, len(v))
		for i, elem := range v {
			ev, err := of(elem, appendPath(path, "["+strconv.Itoa(i)+"]"))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Map, 0, len(v))
		for _, k := range keys {
			ev, err := of(v[k], appendPath(path, "{"+k+"}"))
			if err != nil {
				return nil, err
			}
			out = append(out, Pair{Key: String(k), Value: ev})
		}
		return out, nil
	}
	return ofReflect(reflect.ValueOf(x), path)
}

func ofUint(u uint64, path []string) (Value, error) {
	if u > math.MaxInt64 {
		return nil, errors.Overflow(errors.PhaseEncode, path, u, "int64")
	}
	return Int(u), nil
}

func ofReflect(rv reflect.Value, path []string) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return None{}, nil
		}
		return of(rv.Elem().Interface(), path)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return ofUint(rv.Uint(), path)
	case reflect.Float32, reflect.Float64:
		return Real(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return Bytes(b), nil
		}
		out := make(List, rv.Len())
		for i := range out {
			ev, err := of(rv.Index(i).Interface(), appendPath(path, "["+strconv.Itoa(i)+"]"))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := make(Map, 0, len(keys))
		for _, k := range keys {
			ev, err := of(rv.MapIndex(k).Interface(), appendPath(path, "{"+k.String()+"}"))
			if err != nil {
				return nil, err
			}
			out = append(out, Pair{Key: String(k.String()), Value: ev})
		}
		return out, nil
	}
	return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
		Path(path...).
		Value(rv.Type().String()).
		Detail("cannot pack Go type %s", rv.Type()).
		Build()
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

// Interface converts a Value back into plain Go data: nil, bool, int64,
// float64, string, []byte, []any, and map[string]any when every key is a
// String. Maps with other key kinds are returned as []Pair with converted
// contents left as Values.
func Interface(v Value) any {
	switch tv := v.(type) {
	case nil, None:
		return nil
	case Bool:
		return bool(tv)
	case Int:
		return int64(tv)
	case Real:
		return float64(tv)
	case String:
		return string(tv)
	case Bytes:
		return []byte(tv)
	case List:
		out := make([]any, len(tv))
		for i, elem := range tv {
			out[i] = Interface(elem)
		}
		return out
	case Map:
		if !tv.stringKeyed() {
			return []Pair(tv)
		}
		out := make(map[string]any, len(tv))
		for _, p := range tv {
			out[string(p.Key.(String))] = Interface(p.Value)
		}
		return out
	}
	panic(fmt.Sprintf("value: unknown Value implementation %T", v))
}

func (m Map) stringKeyed() bool {
	for _, p := range m {
		if _, ok := p.Key.(String); !ok {
			return false
		}
	}
	return true
}
