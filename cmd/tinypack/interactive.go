package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/tinypacks/packfile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectState int

const (
	stateBrowse inspectState = iota
	stateGoto
)

type inspectModel struct {
	walkErr  error
	status   string
	name     string
	nodes    []node
	hexView  viewport.Model
	gotoIn   textinput.Model
	selected int
	top      int
	height   int
	width    int
	state    inspectState
}

func newInspectModel(name string, nodes []node, walkErr error) *inspectModel {
	in := textinput.New()
	in.Prompt = "offset: "
	in.Placeholder = "hex, e.g. 1f"
	in.CharLimit = 16
	in.Width = 20

	m := &inspectModel{
		name:    name,
		nodes:   nodes,
		walkErr: walkErr,
		hexView: viewport.New(60, 10),
		gotoIn:  in,
		height:  24,
		width:   80,
	}
	m.refreshHex()
	return m
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.hexView.Width = msg.Width - 4
		m.hexView.Height = max(msg.Height/3, 3)
		m.refreshHex()
		return m, nil

	case tea.KeyMsg:
		if m.state == stateGoto {
			return m.updateGoto(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.listHeight())
		case "pgdown":
			m.move(m.listHeight())
		case "home":
			m.move(-len(m.nodes))
		case "end":
			m.move(len(m.nodes))
		case "g", ":":
			m.state = stateGoto
			m.gotoIn.SetValue("")
			m.status = ""
			return m, m.gotoIn.Focus()
		default:
			var cmd tea.Cmd
			m.hexView, cmd = m.hexView.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *inspectModel) updateGoto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.gotoIn.Blur()
		return m, nil
	case "enter":
		m.state = stateBrowse
		m.gotoIn.Blur()
		off, err := strconv.ParseInt(strings.TrimPrefix(m.gotoIn.Value(), "0x"), 16, 64)
		if err != nil {
			m.status = "not a hex offset"
			return m, nil
		}
		if i := nodeAt(m.nodes, int(off)); i >= 0 {
			m.move(i - m.selected)
		} else {
			m.status = fmt.Sprintf("no element at %#x", off)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.gotoIn, cmd = m.gotoIn.Update(msg)
	return m, cmd
}

// nodeAt returns the innermost node whose bytes cover off, or -1.
func nodeAt(nodes []node, off int) int {
	found := -1
	for i, n := range nodes {
		if off >= n.offset && off < n.offset+len(n.raw) {
			found = i
		}
	}
	return found
}

func (m *inspectModel) move(delta int) {
	if len(m.nodes) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.nodes)-1)
	h := m.listHeight()
	if m.selected < m.top {
		m.top = m.selected
	} else if m.selected >= m.top+h {
		m.top = m.selected - h + 1
	}
	m.refreshHex()
}

func (m *inspectModel) listHeight() int {
	return max(m.height-m.hexView.Height-8, 3)
}

func (m *inspectModel) refreshHex() {
	if len(m.nodes) == 0 {
		m.hexView.SetContent("")
		return
	}
	n := m.nodes[m.selected]
	m.hexView.SetContent(strings.Join(hexLines(n.raw, n.offset, n.header.Size), "\n"))
	m.hexView.GotoTop()
}

// hexLines formats raw as 16-byte rows labelled with absolute offsets. The
// first headerLen bytes are highlighted.
func hexLines(raw []byte, base, headerLen int) []string {
	var lines []string
	for row := 0; row < len(raw); row += 16 {
		end := min(row+16, len(raw))
		var hexPart, ascii strings.Builder
		for i := row; i < end; i++ {
			cell := fmt.Sprintf("%02x ", raw[i])
			if i < headerLen {
				cell = headerStyle.Render(cell)
			}
			hexPart.WriteString(cell)
			if c := raw[i]; c >= 0x20 && c < 0x7F {
				ascii.WriteByte(c)
			} else {
				ascii.WriteByte('.')
			}
		}
		pad := strings.Repeat("   ", 16-(end-row))
		lines = append(lines, fmt.Sprintf("%08x  %s%s |%s|", base+row, hexPart.String(), pad, ascii.String()))
	}
	return lines
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TinyPacks Inspector"))
	b.WriteString(" ")
	b.WriteString(m.name)
	b.WriteString(fmt.Sprintf("  %d elements\n\n", len(m.nodes)))

	end := min(m.top+m.listHeight(), len(m.nodes))
	for i := m.top; i < end; i++ {
		line := treeLine(m.nodes[i])
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.walkErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("stopped: %v", m.walkErr)))
		b.WriteString("\n")
	}

	b.WriteString(paneStyle.Render(m.hexView.View()))
	b.WriteString("\n")

	switch {
	case m.state == stateGoto:
		b.WriteString(m.gotoIn.View())
	case m.status != "":
		b.WriteString(errorStyle.Render(m.status))
	default:
		b.WriteString(helpStyle.Render("↑/↓ select • pgup/pgdn page • g go to offset • q quit"))
	}
	return b.String()
}

func treeLine(n node) string {
	var marker string
	switch n.role {
	case roleKey:
		marker = "k "
	case roleValue:
		marker = "v "
	case roleItem:
		marker = "- "
	}
	return fmt.Sprintf("%06x %s%s%s %s",
		n.offset,
		strings.Repeat("  ", n.depth),
		marker,
		typeStyle.Render(n.header.Type.String()),
		n.summary)
}

func runInspect(env *cliEnv, args []string) error {
	fs, verbose := newFlags(env, "inspect")
	hexText := fs.Bool("hex", false, "input is hex text")
	if err := parse(fs, verbose, args); err != nil {
		return err
	}
	if !env.tty {
		return fmt.Errorf("inspect needs a terminal; use dump instead")
	}

	data, err := readInput(env, fs.Arg(0), *hexText)
	if err != nil {
		return err
	}
	body, _, err := packfile.Body(data)
	if err != nil {
		return err
	}
	nodes, walkErr := walk(body)

	name := fs.Arg(0)
	if name == "" || name == "-" {
		name = "stdin"
	}
	p := tea.NewProgram(newInspectModel(name, nodes, walkErr), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
