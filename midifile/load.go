// Package midifile decodes Standard MIDI Files into a flat event sequence
// with delta times in seconds.
package midifile

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-visualiser/midi"
)

// DefaultBPM applies until the first set tempo event
const DefaultBPM = 120.0

// LoadError is returned when a file cannot be read or decoded
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "load " + e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// timedEvent is a track event placed on the merged timeline
type timedEvent struct {
	tick  int64
	track int
	msg   smf.Message
}

// Load reads the file at path and returns its events in playback order
func Load(path string) ([]midi.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		tag := ftag.Internal
		if errors.Is(err, fs.ErrNotExist) {
			tag = ftag.NotFound
		}
		return nil, &LoadError{Path: path, Err: fault.Wrap(err,
			fmsg.WithDesc("open midi file", "Could not open MIDI file "+path),
			ftag.With(tag))}
	}
	defer f.Close()

	data, err := smf.ReadFrom(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fault.Wrap(err,
			fmsg.WithDesc("parse midi file", "Not a valid MIDI file: "+path),
			ftag.With(ftag.InvalidArgument))}
	}

	events, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return events, nil
}

// Decode flattens all tracks of an already parsed file
func Decode(data *smf.SMF) ([]midi.Event, error) {
	secondsPer, err := tickClock(data.TimeFormat)
	if err != nil {
		return nil, err
	}

	merged, end := merge(data.Tracks)
	events := make([]midi.Event, 0, len(merged)+1)

	bpm := DefaultBPM
	var lastTick int64
	for _, te := range merged {
		delta := secondsPer(bpm, uint32(te.tick-lastTick))
		lastTick = te.tick

		// tempo applies from the event after it
		var newBPM float64
		if te.msg.GetMetaTempo(&newBPM) && newBPM > 0 {
			bpm = newBPM
		}

		events = append(events, midi.FromMessage(gomidi.Message(te.msg), te.msg.IsMeta(), delta))
	}

	// one end marker carries the silence after the last event
	if len(data.Tracks) > 0 {
		events = append(events, midi.Meta(secondsPer(bpm, uint32(end-lastTick))))
	}
	return events, nil
}

// merge orders the events of every track by absolute tick. Events at the
// same tick keep track order, then file order. End of track markers are
// dropped; end is the latest tick any track reaches, markers included.
func merge(tracks []smf.Track) (all []timedEvent, end int64) {
	for i, track := range tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			end = max(end, abs)
			if ev.Message.Is(smf.MetaEndOfTrackMsg) {
				continue
			}
			all = append(all, timedEvent{tick: abs, track: i, msg: ev.Message})
		}
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].tick < all[b].tick
	})
	return all, end
}

// tickClock returns a converter from a tick delta to seconds for the file's time format
func tickClock(tf smf.TimeFormat) (func(bpm float64, ticks uint32) float64, error) {
	switch t := tf.(type) {
	case smf.MetricTicks:
		if t == 0 {
			return nil, fault.New("zero ticks per quarter note",
				fmsg.WithDesc("invalid time format", "MIDI file declares zero ticks per quarter note"),
				ftag.With(ftag.InvalidArgument))
		}
		return func(bpm float64, ticks uint32) float64 {
			if ticks == 0 {
				return 0
			}
			return float64(ticks) * 60.0 / (bpm * float64(t))
		}, nil
	case smf.TimeCode:
		perSecond := float64(t.FramesPerSecond) * float64(t.SubFrames)
		if perSecond == 0 {
			return nil, fault.New("zero smpte resolution",
				fmsg.WithDesc("invalid time format", "MIDI file declares an empty SMPTE time code"),
				ftag.With(ftag.InvalidArgument))
		}
		return func(_ float64, ticks uint32) float64 {
			return float64(ticks) / perSecond
		}, nil
	}
	return nil, fault.New("unknown time format",
		fmsg.WithDesc("invalid time format", "MIDI file uses an unsupported time format"),
		ftag.With(ftag.InvalidArgument))
}

// Duration sums the deltas of a sequence
func Duration(events []midi.Event) time.Duration {
	var total float64
	for _, ev := range events {
		total += ev.Delta
	}
	return time.Duration(total * float64(time.Second))
}
