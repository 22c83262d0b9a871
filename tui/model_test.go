package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-visualiser/midi"
	"go-visualiser/sequencer"
	"go-visualiser/theme"
)

type nullSink struct {
	resets   int
	resetErr error
}

func (s *nullSink) Send(midi.Event) error { return nil }

func (s *nullSink) ResetAll() error {
	s.resets++
	return s.resetErr
}

func writeSong(t *testing.T, dir, name string) {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(480, gomidi.NoteOff(0, 60))
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(filepath.Join(dir, name)); err != nil {
		t.Fatal(err)
	}
}

func newTestModel(t *testing.T) (Model, *nullSink) {
	t.Helper()
	dir := t.TempDir()
	writeSong(t, dir, "a.mid")
	writeSong(t, dir, "b.mid")
	lib, err := sequencer.NewLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}
	sink := &nullSink{}
	th := theme.New(theme.DefaultPalette(), theme.NewChannelStyles(theme.NewHSLAssigner(1)))
	m := NewModel(lib, sink, sequencer.DefaultOptions(), th, 8, true)
	if m.Song() == nil {
		t.Fatalf("no song loaded: %s", m.status)
	}
	return m, sink
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelToggleAndSwitch(t *testing.T) {
	m, sink := newTestModel(t)

	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	first := m.Song()
	if !first.Player.Playing() {
		t.Fatal("space did not start playback")
	}

	resets := sink.resets
	m = update(m, tea.KeyMsg{Type: tea.KeyRight})
	if first.Player.Playing() {
		t.Fatal("switching songs left the old song playing")
	}
	if sink.resets <= resets {
		t.Fatal("switching songs did not silence the output")
	}
	if m.Song() == first || m.Song().Name != "b" {
		t.Fatalf("current song = %s, want b", m.Song().Name)
	}
}

func TestModelResizeStops(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = update(m, FrameMsg(time.Unix(0, 0)))
	if !m.Song().Player.Playing() {
		t.Fatal("not playing after space")
	}
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.Song().Player.Playing() {
		t.Fatal("resize did not stop playback")
	}
}

func TestModelPortLost(t *testing.T) {
	m, _ := newTestModel(t)
	m.PortName = "Synth"
	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = update(m, PortEventMsg{Type: midi.PortDisconnected, Name: "Synth"})
	if m.Song().Player.Playing() {
		t.Fatal("still playing after the output port disappeared")
	}
	if m.View() == "" {
		t.Fatal("empty view")
	}
}

func TestModelQuitStops(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)
	if cmd == nil || m.Song().Player.Playing() {
		t.Fatal("quit should stop playback and return tea.Quit")
	}
	if m.View() != "" {
		t.Fatal("view not cleared on quit")
	}
}

func TestModelReportsStopFailures(t *testing.T) {
	cases := map[string]tea.Msg{
		"switch song": tea.KeyMsg{Type: tea.KeyRight},
		"quit":        tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}},
		"port lost":   PortEventMsg{Type: midi.PortDisconnected, Name: "Synth"},
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			m, sink := newTestModel(t)
			m.PortName = "Synth"
			m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			sink.resetErr = errors.New("reset failed")

			m = update(m, msg)
			if !strings.Contains(m.status, "reset failed") {
				t.Fatalf("status = %q, want the reset error", m.status)
			}
		})
	}
}
