package bridge

import (
	"encoding/base64"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
)

// FromYAML converts the first document of a YAML stream into a Value.
// Mapping order is preserved, keys may be any node kind, and !!binary
// scalars become Bytes. Timestamps are kept as their source text.
func FromYAML(data []byte) (value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		err = errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "malformed YAML")
		logFailure("yaml", err)
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New(errors.PhaseBridge, errors.KindEmptyInput).
			Detail("YAML stream has no document").
			Build()
	}

	var w yamlWalker
	v, err := w.node(doc.Content[0], nil, 0)
	if err != nil {
		logFailure("yaml", err)
		return nil, err
	}
	return v, nil
}

// Alias expansion budget, matching the ratios yaml.v3 applies when it
// decodes into Go values: small documents may take up to 99% of their nodes
// from aliases, documents past aliasRatioHigh nodes only 10%.
const (
	aliasRatioLow  = 400000
	aliasRatioHigh = 4000000
)

func allowedAliasRatio(walked int) float64 {
	switch {
	case walked <= aliasRatioLow:
		return 0.99
	case walked >= aliasRatioHigh:
		return 0.10
	}
	return 0.99 - 0.89*float64(walked-aliasRatioLow)/float64(aliasRatioHigh-aliasRatioLow)
}

// yamlWalker converts a node tree, counting nodes reached through aliases.
type yamlWalker struct {
	walked     int
	aliased    int
	aliasDepth int
}

func (w *yamlWalker) node(n *yaml.Node, path []string, depth int) (value.Value, error) {
	if depth >= maxDepth {
		return nil, tooDeep(path)
	}
	w.walked++
	if w.aliasDepth > 0 {
		w.aliased++
	}
	if w.aliased > 100 && w.walked > 1000 && float64(w.aliased)/float64(w.walked) > allowedAliasRatio(w.walked) {
		return nil, errors.New(errors.PhaseBridge, errors.KindTooLong).
			Path(path...).
			Value(w.walked).
			Detail("document contains excessive aliasing (%d of %d nodes)", w.aliased, w.walked).
			Build()
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.None{}, nil
		}
		return w.node(n.Content[0], path, depth+1)

	case yaml.AliasNode:
		w.aliasDepth++
		v, err := w.node(n.Alias, path, depth+1)
		w.aliasDepth--
		return v, err

	case yaml.ScalarNode:
		return fromScalar(n, path)

	case yaml.SequenceNode:
		list := make(value.List, len(n.Content))
		for i, child := range n.Content {
			v, err := w.node(child, index(path, i), depth+1)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil

	case yaml.MappingNode:
		if len(n.Content)%2 != 0 {
			return nil, errors.InvalidData(errors.PhaseBridge, path, "mapping node has a key without a value")
		}
		m := make(value.Map, 0, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			k, err := w.node(n.Content[i], path, depth+1)
			if err != nil {
				return nil, err
			}
			v, err := w.node(n.Content[i+1], key(path, k), depth+1)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil
	}

	return nil, errors.New(errors.PhaseBridge, errors.KindUnsupported).
		Path(path...).
		Detail("YAML node kind %d at line %d", n.Kind, n.Line).
		Build()
}

func fromScalar(n *yaml.Node, path []string) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.None{}, nil
	case "!!str", "!!timestamp":
		return value.String(n.Value), nil
	case "!!binary":
		raw, err := base64.StdEncoding.DecodeString(stripSpace(n.Value))
		if err != nil {
			return nil, errors.New(errors.PhaseBridge, errors.KindInvalidData).
				Path(path...).
				Cause(err).
				Detail("invalid !!binary scalar at line %d", n.Line).
				Build()
		}
		return value.Bytes(raw), nil
	case "!!bool", "!!int", "!!float":
		var x any
		if err := n.Decode(&x); err != nil {
			return nil, errors.New(errors.PhaseBridge, errors.KindInvalidData).
				Path(path...).
				Cause(err).
				Detail("cannot resolve scalar %q at line %d", n.Value, n.Line).
				Build()
		}
		v, err := value.Of(x)
		if err != nil {
			return nil, rephase(err, path)
		}
		return v, nil
	}
	return value.String(n.Value), nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
