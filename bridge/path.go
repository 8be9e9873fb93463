package bridge

import (
	"strconv"

	"github.com/wippyai/tinypacks/codec"
	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
)

// maxDepth bounds container nesting of foreign documents.
const maxDepth = codec.DefaultMaxDepth

func index(path []string, i int) []string {
	return with(path, "["+strconv.Itoa(i)+"]")
}

func key(path []string, k value.Value) []string {
	return with(path, "{"+value.Format(k)+"}")
}

func with(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

func tooDeep(path []string) error {
	return errors.New(errors.PhaseBridge, errors.KindTooDeep).
		Path(path...).
		Detail("nesting exceeds %d levels", maxDepth).
		Build()
}

// rephase moves an error raised by value.Of into the bridge phase at path.
func rephase(err error, path []string) error {
	te, ok := err.(*errors.Error)
	if !ok {
		return err
	}
	c := te.Prefix(path...)
	c.Phase = errors.PhaseBridge
	return c
}
