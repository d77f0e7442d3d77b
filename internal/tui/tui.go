// Package tui renders a session in the terminal with bubbletea.
package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ca-modeler/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	legendBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFDC50")).
			Bold(true)
)

const cellGlyph = "██"

type tickMsg time.Time

// Model is the bubbletea model driving a session.
type Model struct {
	sess *session.Session
	seed int64

	cursorR, cursorC int
	width, height    int
	status           string
}

// New wraps sess; seed is used by the reset key.
func New(sess *session.Session, seed int64) *Model {
	return &Model{sess: sess, seed: seed}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.sess.Interval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles keys and ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		if m.sess.Running() {
			m.sess.Step()
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	size := m.sess.Size()
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return tea.Quit
	case " ":
		m.sess.ToggleRunning()
	case "n":
		m.sess.Step()
	case "r":
		m.sess.Reset(m.seed)
	case "s":
		m.seed = time.Now().UnixNano()
		m.sess.Reset(m.seed)
	case "tab":
		m.sess.SetNeighborhood(m.sess.Grid().Neighborhood.Next())
	case "+", "=":
		m.nudgeSpeed(5)
	case "-":
		m.nudgeSpeed(-5)
	case "up", "k":
		m.cursorR = max(0, m.cursorR-1)
	case "down", "j":
		m.cursorR = min(size.H-1, m.cursorR+1)
	case "left", "h":
		m.cursorC = max(0, m.cursorC-1)
	case "right", "l":
		m.cursorC = min(size.W-1, m.cursorC+1)
	case "p", "enter":
		m.sess.Paint(m.cursorR, m.cursorC)
	default:
		if k := msg.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			states := m.sess.States()
			if i := int(k[0] - '1'); i < len(states) {
				if err := m.sess.SetPaintState(states[i].ID); err != nil {
					m.status = err.Error()
				}
			}
		}
	}
	return nil
}

func (m *Model) nudgeSpeed(delta int) {
	cur := int(session.IntervalToSpeed(m.sess.Interval()) + 0.5)
	m.sess.SetIntParameter("speed", cur+delta)
}

// View renders the grid, the legend and a status line.
func (m *Model) View() string {
	styles := make(map[uint8]lipgloss.Style)
	for _, st := range m.sess.States() {
		styles[st.ID] = lipgloss.NewStyle().Foreground(lipgloss.Color(hex(st.Color)))
	}
	unknown := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	size := m.sess.Size()
	rows, cols := size.H, size.W
	if m.height > 8 {
		rows = min(rows, m.height-8)
	}
	if m.width > 0 {
		cols = min(cols, max(1, (m.width-30)/2))
	}
	cells := m.sess.Cells()

	var grid strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if r == m.cursorR && c == m.cursorC {
				grid.WriteString(cursorStyle.Render("[]"))
				continue
			}
			style, ok := styles[cells[r*size.W+c]]
			if !ok {
				style = unknown
			}
			grid.WriteString(style.Render(cellGlyph))
		}
		if r < rows-1 {
			grid.WriteByte('\n')
		}
	}

	var legend strings.Builder
	paint := m.sess.PaintState()
	for i, c := range m.sess.Census() {
		marker := " "
		if c.ID == paint {
			marker = ">"
		}
		style, ok := styles[c.ID]
		if !ok {
			style = unknown
		}
		if i > 0 {
			legend.WriteByte('\n')
		}
		fmt.Fprintf(&legend, "%s%d %s %s %d", marker, i+1, style.Render(cellGlyph), c.Name, c.Cells)
	}

	state := "paused"
	if m.sess.Running() {
		state = "running"
	}
	title := titleStyle.Render(fmt.Sprintf("%s  gen %d", m.sess.Name(), m.sess.Generation()))
	info := infoStyle.Render(fmt.Sprintf("%s  %s  %v  changed %d",
		state, m.sess.Grid().Neighborhood.Label(), m.sess.Interval(), m.sess.LastChanged()))
	help := infoStyle.Render("space run  n step  r reset  s reseed  tab nbhd  +/- speed  arrows/p paint  1-9 state  q quit")

	body := lipgloss.JoinHorizontal(lipgloss.Top, grid.String(), " ", legendBoxStyle.Render(legend.String()))
	out := lipgloss.JoinVertical(lipgloss.Left, title, info, body, help)
	if m.status != "" {
		out += "\n" + m.status
	}
	return out
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Run starts the terminal program and blocks until the user quits.
func Run(sess *session.Session, seed int64, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(New(sess, seed), opts...).Run()
	return err
}
