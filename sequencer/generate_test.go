package sequencer

import (
	"math"
	"testing"

	"go-visualiser/midi"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestGenerateNotesPairsStartsAndEnds(t *testing.T) {
	events := []midi.Event{
		midi.NoteOn(0, 60, 100, 0.5),
		midi.NoteOff(0, 60, 1.0),
		midi.NoteOn(1, 64, 90, 0.25),
		midi.NoteOff(1, 64, 0.5),
	}
	notes := GenerateNotes(events, 2.0)
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}

	n := notes[0]
	if n.Pitch != 60-midi.PianoLowest || n.Channel != 0 {
		t.Fatalf("note 0 pitch/channel = %d/%d, want %d/0", n.Pitch, n.Channel, 60-midi.PianoLowest)
	}
	if !approx(n.Delta, 0.5) || !approx(n.Start, 0.5) || !approx(n.Length, 1.0) {
		t.Fatalf("note 0 delta/start/length = %v/%v/%v, want 0.5/0.5/1", n.Delta, n.Start, n.Length)
	}
	if n.Travel != 2.0 {
		t.Fatalf("note 0 travel = %v, want 2", n.Travel)
	}

	n = notes[1]
	if n.Channel != 1 {
		t.Fatalf("note 1 channel = %d, want 1", n.Channel)
	}
	// delta counts every event since the previous note start, note offs included
	if !approx(n.Delta, 1.25) || !approx(n.Start, 1.75) || !approx(n.Length, 0.5) {
		t.Fatalf("note 1 delta/start/length = %v/%v/%v, want 1.25/1.75/0.5", n.Delta, n.Start, n.Length)
	}
}

func TestGenerateNotesRetriggerClosesOpenNote(t *testing.T) {
	events := []midi.Event{
		midi.NoteOn(0, 60, 100, 0),
		midi.NoteOn(1, 60, 100, 1.0), // same pitch, other channel
		midi.NoteOff(0, 60, 0.5),
	}
	notes := GenerateNotes(events, 1.0)
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if !approx(notes[0].Length, 1.0) {
		t.Errorf("first note length = %v, want 1", notes[0].Length)
	}
	if notes[1].Channel != 1 || !approx(notes[1].Length, 0.5) {
		t.Errorf("second note channel/length = %d/%v, want 1/0.5", notes[1].Channel, notes[1].Length)
	}
}

func TestGenerateNotesZeroVelocityEndsNote(t *testing.T) {
	events := []midi.Event{
		midi.NoteOn(0, 60, 100, 0),
		midi.NoteOn(0, 60, 0, 0.75),
	}
	notes := GenerateNotes(events, 1.0)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if !approx(notes[0].Length, 0.75) {
		t.Errorf("length = %v, want 0.75", notes[0].Length)
	}
}

func TestGenerateNotesClosesUnfinishedAtEnd(t *testing.T) {
	events := []midi.Event{
		midi.NoteOn(0, 60, 100, 0),
		midi.NoteOn(0, 62, 100, 1.0),
		midi.NoteOff(0, 62, 1.0),
		midi.Meta(0.5),
	}
	notes := GenerateNotes(events, 1.0)
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if !approx(notes[0].Length, 2.5) {
		t.Errorf("unfinished note length = %v, want 2.5", notes[0].Length)
	}
}

func TestGenerateNotesStrayNoteOffIgnored(t *testing.T) {
	events := []midi.Event{
		midi.NoteOff(0, 60, 0.5),
		midi.NoteOn(0, 61, 100, 0.5),
		midi.NoteOff(0, 61, 0.5),
	}
	notes := GenerateNotes(events, 1.0)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if !approx(notes[0].Delta, 1.0) {
		t.Errorf("delta = %v, want 1", notes[0].Delta)
	}
}

func TestGenerateNotesDeltasSumToStart(t *testing.T) {
	var events []midi.Event
	for i := 0; i < 20; i++ {
		note := uint8(40 + i%7)
		events = append(events,
			midi.NoteOn(uint8(i%3), note, 80, 0.1*float64(i%4)),
			midi.NoteOff(uint8(i%3), note, 0.05),
		)
	}
	notes := GenerateNotes(events, 1.0)

	var sum float64
	for i, n := range notes {
		sum += n.Delta
		if !approx(sum, n.Start) {
			t.Fatalf("note %d: delta sum %v != start %v", i, sum, n.Start)
		}
		if n.Length < 0 {
			t.Fatalf("note %d: negative length %v", i, n.Length)
		}
	}
}

func TestVisualNoteOutOfRangePitch(t *testing.T) {
	notes := GenerateNotes([]midi.Event{
		midi.NoteOn(0, 10, 100, 0),
		midi.NoteOn(0, 108, 100, 0),
		midi.NoteOn(0, 109, 100, 0),
	}, 1.0)
	want := []bool{false, true, false}
	for i, n := range notes {
		if got := n.OnKeyboard(); got != want[i] {
			t.Errorf("note %d (pitch %d) on keyboard = %v, want %v", i, n.Pitch, got, want[i])
		}
	}
}
