package sequencer

import "go-visualiser/midi"

// NumKeys is the number of keys on the displayed piano
const NumKeys = 88

// VisualNote is one scrolling note. Timing fields are fixed once the
// generator finishes; Elapsed and End change only while the note is active.
type VisualNote struct {
	Pitch   int     // keyboard relative, 0 = A0; out of range notes are kept but not drawn
	Channel uint8
	Delta   float64 // seconds since the previous generated note started
	Start   float64 // seconds from song start
	Travel  float64 // seconds to scroll from the top of the roll to the keyboard
	Length  float64 // seconds the key is held

	Elapsed float64 // seconds since activation
	End     float64 // Travel + Length, set on activation
}

func newVisualNote(ev midi.Event, delta, start, travel float64) *VisualNote {
	return &VisualNote{
		Pitch:   int(ev.Note) - midi.PianoLowest,
		Channel: ev.Channel,
		Delta:   delta,
		Start:   start,
		Travel:  travel,
	}
}

// Activate puts the note on screen, already overshoot seconds into its travel
func (n *VisualNote) Activate(overshoot float64) {
	n.Elapsed = overshoot
	n.End = n.Travel + n.Length
}

// Advance ages an active note
func (n *VisualNote) Advance(dt float64) {
	n.Elapsed += dt
}

// Visible reports whether the note is still in view
func (n *VisualNote) Visible() bool {
	return n.Elapsed <= n.End
}

// ScrollProgress is the fraction of the travel covered. It passes 1 while
// the key is still held.
func (n *VisualNote) ScrollProgress() float64 {
	if n.Travel <= 0 {
		return 0
	}
	return n.Elapsed / n.Travel
}

// OnKeyboard reports whether the pitch maps to one of the 88 keys
func (n *VisualNote) OnKeyboard() bool {
	return n.Pitch >= 0 && n.Pitch < NumKeys
}
