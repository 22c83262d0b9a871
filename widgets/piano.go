package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-visualiser/midi"
	"go-visualiser/sequencer"
	"go-visualiser/theme"
)

// IsBlack reports whether a keyboard key (0 = A0) is a black key
func IsBlack(key int) bool {
	switch key % 12 {
	case 1, 4, 6, 9, 11:
		return true
	}
	return false
}

// IsOctaveStart reports whether a key is a C
func IsOctaveStart(key int) bool {
	return key%12 == 3
}

// Cell is one character of the scrolling area
type Cell struct {
	Filled  bool
	Channel uint8
}

// RollGrid projects active notes onto height rows of sequencer.NumKeys
// columns, row 0 at the top. A note's lower edge sits at Progress*height and
// it extends upward by Length/Travel*height, at least one row.
func RollGrid(notes []sequencer.NoteView, height int) [][]Cell {
	grid := make([][]Cell, height)
	for r := range grid {
		grid[r] = make([]Cell, sequencer.NumKeys)
	}
	if height <= 0 {
		return grid
	}

	h := float64(height)
	for _, n := range notes {
		if n.Pitch < 0 || n.Pitch >= sequencer.NumKeys || n.Travel <= 0 {
			continue
		}
		bottom := n.Progress * h
		top := bottom - n.Length/n.Travel*h
		if bottom-top < 1 {
			top = bottom - 1
		}

		first := max(0, int(math.Floor(top)))
		last := min(height-1, int(math.Ceil(bottom))-1)
		for r := first; r <= last; r++ {
			grid[r][n.Pitch] = Cell{Filled: true, Channel: n.Channel}
		}
	}
	return grid
}

// Piano renders the scrolling roll and keyboard
type Piano struct {
	Theme          *theme.Theme
	Height         int
	OctaveDividers bool
}

// View renders a snapshot: roll on top (if scrolling), keyboard below
func (p *Piano) View(s sequencer.Snapshot) string {
	var lines []string
	if s.Scrolling {
		grid := RollGrid(s.Notes, p.Height)
		for _, row := range grid {
			lines = append(lines, p.rollRow(row))
		}
		divider := lipgloss.NewStyle().Foreground(p.Theme.Warning())
		lines = append(lines, divider.Render(strings.Repeat("▀", sequencer.NumKeys)))
	}
	lines = append(lines, p.keyRow(s, true), p.keyRow(s, false))
	return strings.Join(lines, "\n")
}

func (p *Piano) rollRow(row []Cell) string {
	bg := p.Theme.BG()
	runs := &runWriter{}
	for key, c := range row {
		switch {
		case c.Filled:
			col := theme.Color(p.Theme.Channels.Style(c.Channel).Note)
			runs.add(string(p.Theme.Symbols.Note), lipgloss.NewStyle().Foreground(col).Background(bg))
		case p.OctaveDividers && IsOctaveStart(key):
			runs.add(string(p.Theme.Symbols.Divider), lipgloss.NewStyle().Foreground(p.Theme.Muted()).Background(bg))
		default:
			runs.add(" ", lipgloss.NewStyle().Background(bg))
		}
	}
	return runs.String()
}

// keyRow draws one row of the keyboard. The upper row shows black keys,
// the lower row only white keys.
func (p *Piano) keyRow(s sequencer.Snapshot, upper bool) string {
	white := lipgloss.Color(theme.RGB{255, 255, 255}.Hex())
	black := lipgloss.Color(theme.RGB{0, 0, 0}.Hex())
	runs := &runWriter{}
	for key := 0; key < sequencer.NumKeys; key++ {
		st := s.Key(uint8(key + midi.PianoLowest))
		isBlack := IsBlack(key)

		var col lipgloss.Color
		switch {
		case isBlack && !upper:
			col = white
		case st.Held && isBlack:
			col = theme.Color(p.Theme.Channels.Style(st.Channel).BlackKey)
		case st.Held:
			col = theme.Color(p.Theme.Channels.Style(st.Channel).WhiteKey)
		case isBlack:
			col = black
		default:
			col = white
		}

		sym := p.Theme.Symbols.WhiteKey
		if isBlack && upper {
			sym = p.Theme.Symbols.BlackKey
		}
		runs.add(string(sym), lipgloss.NewStyle().Foreground(col).Background(p.Theme.Surface()))
	}
	return runs.String()
}

// runWriter batches neighbouring cells with the same style into one Render
type runWriter struct {
	out   strings.Builder
	run   strings.Builder
	style lipgloss.Style
	key   string
}

func (w *runWriter) add(s string, style lipgloss.Style) {
	k := styleKey(style)
	if w.run.Len() > 0 && k != w.key {
		w.flush()
	}
	w.style = style
	w.key = k
	w.run.WriteString(s)
}

func (w *runWriter) flush() {
	if w.run.Len() == 0 {
		return
	}
	w.out.WriteString(w.style.Render(w.run.String()))
	w.run.Reset()
}

func (w *runWriter) String() string {
	w.flush()
	return w.out.String()
}

func styleKey(s lipgloss.Style) string {
	fg, _ := s.GetForeground().(lipgloss.Color)
	bg, _ := s.GetBackground().(lipgloss.Color)
	return string(fg) + "/" + string(bg)
}
