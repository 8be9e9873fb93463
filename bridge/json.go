package bridge

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
)

// FromJSON converts a JSON document into a Value. Comments and trailing
// commas are accepted. Object member order is preserved and a repeated
// member replaces the earlier value in place. Numbers without a fraction or
// exponent become Int, everything else Real.
func FromJSON(data []byte) (value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	v, err := readJSON(dec, nil, 0)
	if err == nil {
		if _, tailErr := dec.Token(); tailErr != io.EOF {
			err = errors.InvalidData(errors.PhaseBridge, nil, "JSON document has trailing content")
		}
	}
	if err != nil {
		logFailure("json", err)
		return nil, err
	}
	return v, nil
}

func readJSON(dec *json.Decoder, path []string, depth int) (value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF && depth == 0 {
			return nil, errors.New(errors.PhaseBridge, errors.KindEmptyInput).
				Path(path...).
				Detail("JSON document is empty").
				Build()
		}
		return nil, errors.New(errors.PhaseBridge, errors.KindInvalidData).
			Path(path...).
			Cause(err).
			Detail("malformed JSON").
			Build()
	}

	switch t := tok.(type) {
	case nil:
		return value.None{}, nil
	case bool:
		return value.Bool(t), nil
	case string:
		return value.String(t), nil
	case json.Number:
		return jsonNumber(t, path)
	case json.Delim:
		if depth >= maxDepth {
			return nil, tooDeep(path)
		}
		if t == '[' {
			return readJSONArray(dec, path, depth+1)
		}
		return readJSONObject(dec, path, depth+1)
	}
	return nil, errors.InvalidData(errors.PhaseBridge, path, "unexpected JSON token")
}

func readJSONArray(dec *json.Decoder, path []string, depth int) (value.Value, error) {
	list := value.List{}
	for i := 0; dec.More(); i++ {
		v, err := readJSON(dec, index(path, i), depth)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "unterminated JSON array")
	}
	return list, nil
}

func readJSONObject(dec *json.Decoder, path []string, depth int) (value.Value, error) {
	m := value.Map{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "malformed JSON object key")
		}
		name, _ := tok.(string)
		k := value.String(name)

		v, err := readJSON(dec, key(path, k), depth)
		if err != nil {
			return nil, err
		}
		if i, ok := seen[name]; ok {
			m[i].Value = v
			continue
		}
		seen[name] = len(m)
		m = append(m, value.Pair{Key: k, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "unterminated JSON object")
	}
	return m, nil
}

func jsonNumber(n json.Number, path []string) (value.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Overflow(errors.PhaseBridge, path, s, "int64")
		}
		return value.Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Overflow(errors.PhaseBridge, path, s, "float64")
	}
	return value.Real(f), nil
}

// ToJSON renders v as compact JSON in Map order. Bytes become base64
// strings. Map keys must be strings and reals must be finite.
func ToJSON(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, nil); err != nil {
		logFailure("json", err)
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v value.Value, path []string) error {
	switch t := v.(type) {
	case nil, value.None:
		buf.WriteString("null")
	case value.Bool:
		buf.WriteString(strconv.FormatBool(bool(t)))
	case value.Int:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
	case value.Real:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.New(errors.PhaseBridge, errors.KindUnsupported).
				Path(path...).
				Value(f).
				Detail("JSON cannot represent %v", f).
				Build()
		}
		b, _ := json.Marshal(f)
		buf.Write(b)
	case value.String:
		return writeJSONString(buf, string(t), path)
	case value.Bytes:
		return writeJSONString(buf, base64.StdEncoding.EncodeToString(t), path)
	case value.List:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, elem, index(path, i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.Map:
		buf.WriteByte('{')
		for i, p := range t {
			name, ok := p.Key.(value.String)
			if !ok {
				return errors.TypeMismatch(errors.PhaseBridge, key(path, p.Key), kindOf(p.Key), "string key")
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, string(name), path); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, p.Value, key(path, p.Key)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return errors.Unsupported(errors.PhaseBridge, "unknown value implementation")
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string, path []string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.New(errors.PhaseBridge, errors.KindInvalidData).Path(path...).Cause(err).Build()
	}
	buf.Write(b)
	return nil
}

func kindOf(v value.Value) string {
	if v == nil {
		return value.KindNone.String()
	}
	return v.Kind().String()
}
