package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Kind classifies a decoded event for the player
type Kind uint8

const (
	KindOther  Kind = iota // channel messages other than notes, sysex
	KindNoteOn             // note on, velocity may be 0
	KindNoteOff
	KindMeta // file-only events, never sent to an output
)

// PianoLowest is the MIDI note of the leftmost key on an 88-key piano (A0)
const PianoLowest = 21

// Event is one decoded performance event from a song.
// Delta is the time in seconds since the previous event in the sequence.
type Event struct {
	Kind     Kind
	Channel  uint8
	Note     uint8
	Velocity uint8
	Delta    float64
	Msg      gomidi.Message // raw bytes forwarded to the output port
}

// IsMeta reports whether the event is file metadata rather than a sendable message
func (e Event) IsMeta() bool {
	return e.Kind == KindMeta
}

// IsNote reports whether the event is a note on or note off
func (e Event) IsNote() bool {
	return e.Kind == KindNoteOn || e.Kind == KindNoteOff
}

// IsNoteStart is a note on with a non-zero velocity
func (e Event) IsNoteStart() bool {
	return e.Kind == KindNoteOn && e.Velocity > 0
}

// IsNoteEnd is a note off, or a note on with zero velocity
func (e Event) IsNoteEnd() bool {
	return e.Kind == KindNoteOff || (e.Kind == KindNoteOn && e.Velocity == 0)
}

// NoteOn builds a note on event with the given delta
func NoteOn(channel, note, velocity uint8, delta float64) Event {
	return Event{
		Kind:     KindNoteOn,
		Channel:  channel,
		Note:     note,
		Velocity: velocity,
		Delta:    delta,
		Msg:      gomidi.NoteOn(channel, note, velocity),
	}
}

// NoteOff builds a note off event with the given delta
func NoteOff(channel, note uint8, delta float64) Event {
	return Event{
		Kind:    KindNoteOff,
		Channel: channel,
		Note:    note,
		Delta:   delta,
		Msg:     gomidi.NoteOff(channel, note),
	}
}

// Meta builds a metadata marker that only carries time
func Meta(delta float64) Event {
	return Event{Kind: KindMeta, Delta: delta}
}

// FromMessage classifies a raw message. Meta events must be flagged by the
// caller since their bytes are only meaningful inside a file.
func FromMessage(msg gomidi.Message, meta bool, delta float64) Event {
	ev := Event{Kind: KindOther, Delta: delta, Msg: msg}
	if meta {
		ev.Kind = KindMeta
		return ev
	}

	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		ev.Kind = KindNoteOn
	case msg.GetNoteOff(&ch, &key, &vel):
		ev.Kind = KindNoteOff
	default:
		if len(msg) > 0 && msg[0] < 0xF0 {
			ev.Channel = msg[0] & 0x0F
		}
		return ev
	}
	ev.Channel = ch
	ev.Note = key
	ev.Velocity = vel
	return ev
}

func (e Event) String() string {
	switch e.Kind {
	case KindNoteOn:
		return fmt.Sprintf("note_on ch=%d note=%d vel=%d dt=%.3f", e.Channel, e.Note, e.Velocity, e.Delta)
	case KindNoteOff:
		return fmt.Sprintf("note_off ch=%d note=%d dt=%.3f", e.Channel, e.Note, e.Delta)
	case KindMeta:
		return fmt.Sprintf("meta dt=%.3f", e.Delta)
	}
	return fmt.Sprintf("msg %v dt=%.3f", e.Msg, e.Delta)
}
