package midi

import (
	"errors"
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Controller numbers used when silencing an output
const (
	ccResetControllers uint8 = 121
	ccAllNotesOff      uint8 = 123
)

// Sink receives the sendable events of a playing song
type Sink interface {
	// Send forwards one non-meta event for sound output
	Send(ev Event) error
	// ResetAll silences every sounding note
	ResetAll() error
}

// PortSink sends events to a MIDI output port
type PortSink struct {
	name string
	out  drivers.Out
	send func(msg gomidi.Message) error

	mu   sync.Mutex
	held map[[2]uint8]bool // channel, note
}

// NewPortSink wraps an already opened port
func NewPortSink(out drivers.Out) (*PortSink, error) {
	if out == nil {
		return nil, errors.New("no output port")
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", out.String(), err)
	}
	s := newSenderSink(out.String(), send)
	s.out = out
	return s, nil
}

func newSenderSink(name string, send func(gomidi.Message) error) *PortSink {
	return &PortSink{
		name: name,
		send: send,
		held: make(map[[2]uint8]bool),
	}
}

// Name returns the port name
func (s *PortSink) Name() string {
	return s.name
}

// Send writes the raw message and remembers which notes are sounding
func (s *PortSink) Send(ev Event) error {
	if ev.IsMeta() || len(ev.Msg) == 0 {
		return nil
	}

	s.mu.Lock()
	key := [2]uint8{ev.Channel, ev.Note}
	switch {
	case ev.IsNoteStart():
		s.held[key] = true
	case ev.IsNoteEnd():
		delete(s.held, key)
	}
	s.mu.Unlock()

	if err := s.send(ev.Msg); err != nil {
		return fmt.Errorf("send %s: %w", ev, err)
	}
	return nil
}

// ResetAll releases held notes, then sends all-notes-off and reset
// controllers on every channel
func (s *PortSink) ResetAll() error {
	s.mu.Lock()
	held := s.held
	s.held = make(map[[2]uint8]bool)
	s.mu.Unlock()

	var errs []error
	for key := range held {
		if err := s.send(gomidi.NoteOff(key[0], key[1])); err != nil {
			errs = append(errs, err)
		}
	}
	for ch := uint8(0); ch < 16; ch++ {
		if err := s.send(gomidi.ControlChange(ch, ccAllNotesOff, 0)); err != nil {
			errs = append(errs, err)
		}
		if err := s.send(gomidi.ControlChange(ch, ccResetControllers, 0)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("reset %s: %w", s.name, errors.Join(errs...))
	}
	return nil
}

// Held returns how many notes the sink believes are sounding
func (s *PortSink) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

// Close silences the port and closes it
func (s *PortSink) Close() error {
	err := s.ResetAll()
	if s.out != nil {
		if cerr := s.out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
