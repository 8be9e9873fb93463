package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/tinypacks/codec"
	"github.com/wippyai/tinypacks/errors"
	"github.com/wippyai/tinypacks/value"
	"github.com/wippyai/tinypacks/wire"
)

type role uint8

const (
	roleTop role = iota
	roleItem
	roleKey
	roleValue
)

// node is one element of a packed buffer, flattened in document order.
type node struct {
	raw     []byte // header and content
	summary string
	header  wire.Header
	offset  int
	depth   int
	role    role
}

var scalarDecoder = codec.NewDecoder()

// walk flattens every element of buf, containers before their children.
// On a malformed element it returns the nodes read so far and the error.
func walk(buf []byte) ([]node, error) {
	var nodes []node
	for off := 0; off < len(buf); {
		n, err := walkOne(&nodes, buf[off:], off, 0, roleTop)
		if err != nil {
			return nodes, err
		}
		off += n
	}
	return nodes, nil
}

func walkOne(nodes *[]node, buf []byte, base, depth int, r role) (int, error) {
	h, content, _, err := wire.Split(buf)
	if err != nil {
		if te, ok := err.(*errors.Error); ok {
			return 0, te.AtOffset(base)
		}
		return 0, err
	}
	size := h.Size + len(content)
	n := node{
		raw:    buf[:size],
		header: h,
		offset: base,
		depth:  depth,
		role:   r,
	}

	if !h.Type.IsContainer() {
		v, _, err := scalarDecoder.DecodeOne(buf[:size])
		if err != nil {
			if te, ok := err.(*errors.Error); ok {
				return 0, te.AtOffset(base)
			}
			return 0, err
		}
		n.summary = value.Format(v)
		*nodes = append(*nodes, n)
		return size, nil
	}

	if depth >= codec.DefaultMaxDepth {
		return 0, errors.New(errors.PhaseDecode, errors.KindTooDeep).Offset(base).Build()
	}

	idx := len(*nodes)
	*nodes = append(*nodes, n)

	count := 0
	contentBase := base + h.Size
	for off := 0; off < len(content); count++ {
		childRole := roleItem
		if h.Type == wire.TypeMap {
			childRole = roleKey
			if count%2 == 1 {
				childRole = roleValue
			}
		}
		used, err := walkOne(nodes, content[off:], contentBase+off, depth+1, childRole)
		if err != nil {
			return 0, err
		}
		off += used
	}

	if h.Type == wire.TypeMap {
		if count%2 != 0 {
			return 0, errors.New(errors.PhaseDecode, errors.KindDanglingKey).
				Offset(base).
				Detail("map key has no paired value").
				Build()
		}
		(*nodes)[idx].summary = plural(count/2, "pair")
	} else {
		(*nodes)[idx].summary = plural(count, "item")
	}
	return size, nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// palette styles dump output. The zero palette renders plain text.
type palette struct {
	offset, header, typ, key, summary *lipgloss.Style
}

var (
	offsetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	typeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func paletteFor(tty bool) palette {
	if !tty {
		return palette{}
	}
	return palette{
		offset:  &offsetStyle,
		header:  &headerStyle,
		typ:     &typeStyle,
		key:     &keyStyle,
		summary: &summaryStyle,
	}
}

func paint(s *lipgloss.Style, text string) string {
	if s == nil {
		return text
	}
	return s.Render(text)
}

// headerHex renders the header bytes of an element.
func headerHex(n node) string {
	return spacedHex(n.raw[:n.header.Size])
}

// printTree writes one line per node:
//
//	offset  header bytes  indent marker type length  summary
func printTree(w io.Writer, nodes []node, p palette) {
	for _, n := range nodes {
		var marker string
		switch n.role {
		case roleKey:
			marker = "k "
		case roleValue:
			marker = "v "
		case roleItem:
			marker = "- "
		}
		fmt.Fprintf(w, "%s  %s  %s%s%s  %s\n",
			paint(p.offset, fmt.Sprintf("%06x", n.offset)),
			paint(p.header, fmt.Sprintf("%-20s", headerHex(n))),
			strings.Repeat("  ", n.depth),
			paint(p.key, marker),
			paint(p.typ, fmt.Sprintf("%-7s %5d", n.header.Type, n.header.Length)),
			paint(p.summary, n.summary))
	}
}
