package value

import (
	"bytes"
	"math"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindBytes
	KindList
	KindMap
)

var kindNames = [...]string{
	KindNone:   "none",
	KindBool:   "boolean",
	KindInt:    "integer",
	KindReal:   "real",
	KindString: "string",
	KindBytes:  "bytes",
	KindList:   "list",
	KindMap:    "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether values of this kind carry no child elements.
func (k Kind) IsScalar() bool {
	return k <= KindReal
}

// IsContainer reports whether values of this kind hold child Values.
func (k Kind) IsContainer() bool {
	return k == KindList || k == KindMap
}

// Value is one node of a value tree. The set of implementations is closed:
// None, Bool, Int, Real, String, Bytes, List and Map.
type Value interface {
	Kind() Kind
	sealed()
}

// None is the absence of a value.
type None struct{}

type Bool bool

type Int int64

// Real holds IEEE-754 double semantics. It may be packed at single precision.
type Real float64

type String string

// Bytes is an opaque byte run.
type Bytes []byte

// List is an ordered sequence of values.
type List []Value

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   Value
	Value Value
}

// Map is an ordered sequence of key/value pairs. Keys may be any Value,
// including containers. Keys are logically unique; use Set to keep them so.
type Map []Pair

func (None) Kind() Kind   { return KindNone }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Real) Kind() Kind   { return KindReal }
func (String) Kind() Kind { return KindString }
func (Bytes) Kind() Kind  { return KindBytes }
func (List) Kind() Kind   { return KindList }
func (Map) Kind() Kind    { return KindMap }

func (None) sealed()   {}
func (Bool) sealed()   {}
func (Int) sealed()    {}
func (Real) sealed()   {}
func (String) sealed() {}
func (Bytes) sealed()  {}
func (List) sealed()   {}
func (Map) sealed()    {}

// Len returns the number of pairs.
func (m Map) Len() int {
	return len(m)
}

// Get returns the value of the last pair whose key equals key.
func (m Map) Get(key Value) (Value, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if Equal(m[i].Key, key) {
			return m[i].Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing equal key in place, or appends a new
// pair. The earlier key keeps its position.
func (m *Map) Set(key, val Value) {
	for i := range *m {
		if Equal((*m)[i].Key, key) {
			(*m)[i].Value = val
			return
		}
	}
	*m = append(*m, Pair{Key: key, Value: val})
}

// Equal reports structural equality. Reals compare by bit pattern, so NaN
// equals an identical NaN and +0 differs from -0. A nil Value equals None.
func Equal(a, b Value) bool {
	if a == nil {
		a = None{}
	}
	if b == nil {
		b = None{}
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case None:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Real:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Real)))
	case String:
		return av == b.(String)
	case Bytes:
		return bytes.Equal(av, b.(Bytes))
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i].Key, bv[i].Key) || !Equal(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
