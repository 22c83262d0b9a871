package sequencer

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

var (
	// ErrNoSink is returned when a player is built without an output
	ErrNoSink = fault.New("no audio sink",
		fmsg.WithDesc("no audio sink", "A MIDI output is required to play songs"),
		ftag.With(ftag.InvalidArgument))

	// ErrTravel is returned for a travel duration that is not positive
	ErrTravel = fault.New("travel duration must be positive",
		fmsg.WithDesc("travel duration must be positive", "Note travel time must be greater than zero"),
		ftag.With(ftag.InvalidArgument))

	// ErrCursorOverrun means a cursor moved past the end of its list.
	// The update loops never allow this, so seeing it is a bug.
	ErrCursorOverrun = fault.New("cursor past end of sequence",
		ftag.With(ftag.Internal))
)
