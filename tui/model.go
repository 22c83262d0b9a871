package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-visualiser/debug"
	"go-visualiser/midi"
	"go-visualiser/sequencer"
	"go-visualiser/theme"
	"go-visualiser/widgets"
)

// Frame rate of the player tick and redraw
const fps = 60

type keyMap struct {
	Toggle key.Binding
	Reset  key.Binding
	Prev   key.Binding
	Next   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Prev, k.Next, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev song")),
		Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next song")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Model struct {
	Library  *sequencer.Library
	Sink     midi.Sink
	Options  sequencer.Options
	Theme    *theme.Theme
	Ports    *midi.PortWatcher // may be nil
	PortName string
	PlayIcon bool

	song     *sequencer.Song
	piano    *widgets.Piano
	keys     keyMap
	help     help.Model
	status   string
	sized    bool
	portLost bool
	quitting bool
}

type FrameMsg time.Time

type PortEventMsg midi.PortEvent

// NewModel loads the library's current song and builds the UI
func NewModel(lib *sequencer.Library, sink midi.Sink, opts sequencer.Options, th *theme.Theme, rollHeight int, dividers bool) Model {
	m := Model{
		Library: lib,
		Sink:    sink,
		Options: opts,
		Theme:   th,
		piano: &widgets.Piano{
			Theme:          th,
			Height:         rollHeight,
			OctaveDividers: dividers,
		},
		keys: newKeyMap(),
		help: help.New(),
	}
	m.loadCurrent()
	return m
}

// Song returns the loaded song, nil if the last load failed
func (m Model) Song() *sequencer.Song {
	return m.song
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func ListenForPorts(w *midi.PortWatcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-w.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frame(), ListenForPorts(m.Ports))
}

// loadCurrent swaps in the library's current song. The old player is
// stopped first so nothing keeps sounding across the switch.
func (m *Model) loadCurrent() {
	var stopErr error
	if m.song != nil {
		stopErr = m.song.Player.Stop()
		m.song = nil
	}

	path := m.Library.Current()
	song, err := sequencer.LoadSong(path, m.Sink, m.Options)
	if err != nil {
		m.status = fmt.Sprintf("Failed to load MIDI file '%s': %s", path, issue(err))
		return
	}
	m.song = song
	m.status = fmt.Sprintf("MIDI file '%s' loaded successfully.", path)
	if stopErr != nil {
		m.status = issue(stopErr)
	}
	debug.Log("tui", "loaded %s (%d/%d)", path, m.Library.Index()+1, m.Library.Len())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if m.song != nil {
			if err := m.song.Player.Tick(time.Time(msg)); err != nil {
				m.status = issue(err)
			}
		}
		return m, frame()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			if m.song != nil {
				if err := m.song.Player.Stop(); err != nil {
					m.status = issue(err)
				}
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Toggle):
			if m.song != nil {
				if err := m.song.Player.Toggle(); err != nil {
					m.status = issue(err)
				}
			}

		case key.Matches(msg, m.keys.Reset):
			if m.song != nil {
				if err := m.song.Player.Reset(); err != nil {
					m.status = issue(err)
				}
			}

		case key.Matches(msg, m.keys.Prev):
			m.Library.Prev()
			m.loadCurrent()

		case key.Matches(msg, m.keys.Next):
			m.Library.Next()
			m.loadCurrent()
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		// a resize mid-song desyncs audio from the redraw, so pause
		if m.sized && m.song != nil && m.song.Player.Playing() {
			m.status = "Paused: terminal resized"
			if err := m.song.Player.Stop(); err != nil {
				m.status = issue(err)
			}
		}
		m.sized = true

	case PortEventMsg:
		event := midi.PortEvent(msg)
		debug.Log("tui", "port event type=%d name=%s", event.Type, event.Name)
		if event.Type == midi.PortDisconnected && event.Name == m.PortName {
			m.portLost = true
			m.status = "Output port disconnected: " + event.Name
			if m.song != nil {
				if err := m.song.Player.Stop(); err != nil {
					m.status += " (" + issue(err) + ")"
				}
			}
		} else if event.Type == midi.PortConnected && event.Name == m.PortName && m.portLost {
			m.portLost = false
			m.status = "Output port reconnected: " + event.Name
		}
		return m, ListenForPorts(m.Ports)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	var out strings.Builder
	out.WriteString("\n")

	if m.song == nil {
		out.WriteString(headerStyle.Render(fmt.Sprintf("go-visualiser  [%d/%d]", m.Library.Index()+1, m.Library.Len())))
		out.WriteString("\n\n")
		out.WriteString(m.piano.View(sequencer.Snapshot{}))
	} else {
		snap := m.song.Player.Snapshot()

		icon := m.Theme.Symbols.Pause
		playState := "STOP"
		if snap.Playing {
			icon = m.Theme.Symbols.Play
			playState = "PLAY"
		}

		header := fmt.Sprintf("%s  %s  [%d/%d]  %s / %s",
			playState, m.song.Name, m.Library.Index()+1, m.Library.Len(),
			clock(snap.Position), clock(snap.Duration))
		if m.PlayIcon {
			header = string(icon) + " " + header
		}
		out.WriteString(headerStyle.Render(header))
		out.WriteString("\n\n")
		out.WriteString(m.piano.View(snap))

		if snap.LastError != "" {
			out.WriteString("\n")
			out.WriteString(warnStyle.Render(snap.LastError))
		}
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(m.help.View(m.keys))

	return out.String()
}

func clock(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// issue prefers the user-facing message of a fault chain
func issue(err error) string {
	if msg := fmsg.GetIssue(err); msg != "" {
		return msg
	}
	return err.Error()
}
