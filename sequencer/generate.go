package sequencer

import "go-visualiser/midi"

// GenerateNotes pairs note starts with their ends and returns the visual
// notes in start order.
//
// Overlap is tracked per MIDI pitch only: a new attack on a pitch that is
// still open ends the open note, whatever channel either one is on.
// Notes still open at the end are closed at the final event time.
func GenerateNotes(events []midi.Event, travel float64) []*VisualNote {
	open := make(map[uint8]*VisualNote)
	var notes []*VisualNote

	var now, sinceLast float64
	for _, ev := range events {
		now += ev.Delta
		sinceLast += ev.Delta

		switch {
		case ev.IsNoteStart():
			if prev, ok := open[ev.Note]; ok {
				prev.Length = now - prev.Start
			}
			n := newVisualNote(ev, sinceLast, now, travel)
			open[ev.Note] = n
			notes = append(notes, n)
			sinceLast = 0
		case ev.IsNoteEnd():
			if n, ok := open[ev.Note]; ok {
				n.Length = now - n.Start
				delete(open, ev.Note)
			}
		}
	}

	for _, n := range open {
		n.Length = now - n.Start
	}
	return notes
}
