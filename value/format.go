package value

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Format renders v on one line in a compact literal notation:
//
//	none true -123 0.5 "text" h'617279' [1, 2] {"a": 1}
func Format(v Value) string {
	var b strings.Builder
	format(&b, v)
	return b.String()
}

func format(b *strings.Builder, v Value) {
	switch tv := v.(type) {
	case nil, None:
		b.WriteString("none")
	case Bool:
		b.WriteString(strconv.FormatBool(bool(tv)))
	case Int:
		b.WriteString(strconv.FormatInt(int64(tv), 10))
	case Real:
		s := strconv.FormatFloat(float64(tv), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		b.WriteString(s)
	case String:
		b.WriteString(strconv.Quote(string(tv)))
	case Bytes:
		b.WriteString("h'")
		b.WriteString(hex.EncodeToString(tv))
		b.WriteByte('\'')
	case List:
		b.WriteByte('[')
		for i, elem := range tv {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, elem)
		}
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		for i, p := range tv {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, p.Key)
			b.WriteString(": ")
			format(b, p.Value)
		}
		b.WriteByte('}')
	}
}
