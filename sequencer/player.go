package sequencer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"go-visualiser/debug"
	"go-visualiser/midi"
)

// Options configure a Player
type Options struct {
	Travel    float64 // seconds for a note to reach the keyboard
	Scrolling bool    // generate and animate scrolling notes
}

// DefaultOptions matches the default display settings
func DefaultOptions() Options {
	return Options{Travel: 2.0, Scrolling: true}
}

// Player plays one loaded song. Two cursors walk the song on every tick:
// the message cursor forwards events to the sink and keeps the press table,
// the note cursor activates scrolling notes. Both are driven by the same
// elapsed time but keep their own leftover budget, so neither drifts.
//
// A single goroutine should drive Tick/Update; Snapshot may be called from
// anywhere.
type Player struct {
	mu   sync.Mutex
	sink midi.Sink
	opts Options

	events []midi.Event // buffer event first
	notes  []*VisualNote

	msgIndex   int
	msgBudget  float64
	msgElapsed float64 // sum of consumed deltas
	noteIndex  int
	noteBudget float64

	active  []*VisualNote
	pressed *PressTable

	playing  bool
	lastTick time.Time // zero until the first tick after Start
	duration float64
	lastErr  error
}

// NewPlayer prepares a song for playback. A buffer event of Travel seconds
// is placed before the first event so notes can scroll into view before
// they sound.
func NewPlayer(events []midi.Event, sink midi.Sink, opts Options) (*Player, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	if opts.Travel <= 0 {
		return nil, fault.Wrap(ErrTravel, fmsg.With(fmt.Sprintf("travel=%v", opts.Travel)))
	}

	p := &Player{
		sink:    sink,
		opts:    opts,
		events:  make([]midi.Event, 0, len(events)+1),
		pressed: NewPressTable(),
	}
	p.events = append(p.events, midi.Meta(opts.Travel))
	p.events = append(p.events, events...)

	for _, ev := range p.events {
		p.duration += ev.Delta
	}

	if opts.Scrolling {
		p.notes = GenerateNotes(events, opts.Travel)
	}

	debug.Log("player", "loaded events=%d notes=%d duration=%.2fs", len(p.events), len(p.notes), p.duration)
	p.reset()
	return p, nil
}

// Start begins or resumes playback. The first tick after Start counts as
// zero elapsed time, so time spent paused is never applied.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start()
}

func (p *Player) start() {
	p.playing = true
	p.lastTick = time.Time{}
	p.lastErr = nil
}

// Stop pauses playback and silences the sink. Safe to call when stopped.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop()
}

func (p *Player) stop() error {
	p.playing = false
	if err := p.sink.ResetAll(); err != nil {
		debug.Logger().Warn("sink reset failed", "err", err)
		p.lastErr = err
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// Toggle stops a playing song or starts a stopped one
func (p *Player) Toggle() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return p.stop()
	}
	p.start()
	return nil
}

// Reset stops the song and rewinds it to the beginning
func (p *Player) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reset()
}

func (p *Player) reset() error {
	err := p.stop()
	p.pressed.Clear()
	clear(p.active)
	p.active = p.active[:0]

	p.msgIndex = 0
	p.noteIndex = 0
	p.msgBudget = 0
	p.noteBudget = 0
	p.msgElapsed = 0
	return err
}

// Playing reports whether the song is playing
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Tick advances playback to the wall clock time now
func (p *Player) Tick(now time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return nil
	}

	var elapsed float64
	if !p.lastTick.IsZero() {
		elapsed = now.Sub(p.lastTick).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
	}
	p.lastTick = now
	return p.update(elapsed)
}

// Update advances playback by elapsed seconds; negative values count as
// zero. Send failures do not stop playback; they are returned after the
// tick completes.
func (p *Player) Update(elapsed float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return nil
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return p.update(elapsed)
}

func (p *Player) update(elapsed float64) error {
	if p.opts.Scrolling {
		p.ageNotes(elapsed)
		if err := p.activateNotes(elapsed); err != nil {
			return err
		}
	}

	sendErrs, err := p.forwardEvents(elapsed)
	if err != nil {
		return err
	}
	debug.LogEvery(600, "player", "msg=%d/%d note=%d/%d active=%d", p.msgIndex, len(p.events), p.noteIndex, len(p.notes), len(p.active))

	var sendErr error
	if len(sendErrs) > 0 {
		sendErr = fmt.Errorf("forward events: %w", errors.Join(sendErrs...))
		p.lastErr = sendErr
	}

	if p.msgIndex >= len(p.events) {
		debug.Log("player", "end of song after %.2fs", p.msgElapsed)
		if rerr := p.reset(); rerr != nil {
			sendErr = errors.Join(sendErr, rerr)
		}
	}
	return sendErr
}

// ageNotes moves active notes along and drops the ones that left the screen
func (p *Player) ageNotes(elapsed float64) {
	kept := p.active[:0]
	for _, n := range p.active {
		n.Advance(elapsed)
		if n.Visible() {
			kept = append(kept, n)
		}
	}
	clear(p.active[len(kept):])
	p.active = kept
}

// activateNotes starts every note whose delta fits in the budget
func (p *Player) activateNotes(elapsed float64) error {
	p.noteBudget += elapsed
	for p.noteIndex < len(p.notes) && p.notes[p.noteIndex].Delta <= p.noteBudget {
		n, err := p.noteAt(p.noteIndex)
		if err != nil {
			return err
		}
		p.noteBudget -= n.Delta
		n.Activate(p.noteBudget)
		p.active = append(p.active, n)
		p.noteIndex++
	}
	return nil
}

// forwardEvents sends every event whose delta fits in the budget. Send
// failures are collected and do not stop the cursor.
func (p *Player) forwardEvents(elapsed float64) (sendErrs []error, err error) {
	p.msgBudget += elapsed
	for p.msgIndex < len(p.events) && p.events[p.msgIndex].Delta <= p.msgBudget {
		ev, err := p.eventAt(p.msgIndex)
		if err != nil {
			return sendErrs, err
		}
		p.msgBudget -= ev.Delta
		p.msgElapsed += ev.Delta
		p.msgIndex++

		if ev.IsMeta() {
			continue
		}
		if serr := p.sink.Send(ev); serr != nil {
			debug.Logger().Warn("send failed", "event", ev.String(), "err", serr)
			sendErrs = append(sendErrs, serr)
		}
		if ev.IsNote() {
			p.pressed.Set(ev.Note, KeyState{Channel: ev.Channel, Held: ev.IsNoteStart()})
		}
	}
	return sendErrs, nil
}

func (p *Player) noteAt(i int) (*VisualNote, error) {
	if i < 0 || i >= len(p.notes) {
		return nil, fault.Wrap(ErrCursorOverrun, fmsg.With(fmt.Sprintf("note cursor %d of %d", i, len(p.notes))))
	}
	return p.notes[i], nil
}

func (p *Player) eventAt(i int) (midi.Event, error) {
	if i < 0 || i >= len(p.events) {
		return midi.Event{}, fault.Wrap(ErrCursorOverrun, fmsg.With(fmt.Sprintf("message cursor %d of %d", i, len(p.events))))
	}
	return p.events[i], nil
}

// Snapshot copies the state the renderer reads each frame
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		Playing:      p.playing,
		Scrolling:    p.opts.Scrolling,
		Notes:        make([]NoteView, 0, len(p.active)),
		Keys:         p.pressed.Entries(),
		MessageIndex: p.msgIndex,
		MessageCount: len(p.events),
		NoteIndex:    p.noteIndex,
		NoteCount:    len(p.notes),
		Position:     p.msgElapsed + p.msgBudget,
		Duration:     p.duration,
	}
	for _, n := range p.active {
		s.Notes = append(s.Notes, NoteView{
			Pitch:    n.Pitch,
			Channel:  n.Channel,
			Length:   n.Length,
			Travel:   n.Travel,
			Progress: n.ScrollProgress(),
		})
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}

// Notes returns the generated notes. The slice must not be modified.
func (p *Player) Notes() []*VisualNote {
	return p.notes
}

// Events returns the playback sequence, buffer event first
func (p *Player) Events() []midi.Event {
	return p.events
}
