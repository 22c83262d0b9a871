package midi

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-visualiser/debug"
)

// Port listing can hang on CoreMIDI, so every scan is bounded
const scanTimeout = 3 * time.Second

// PortEvent is emitted when output ports appear or disappear
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// OutPorts lists the available output port names
func OutPorts(timeout time.Duration) ([]string, error) {
	outs, err := scanOutPorts(timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

// OpenOutput opens the named output port, or the first one when name is empty
func OpenOutput(name string) (*PortSink, error) {
	outs, err := scanOutPorts(scanTimeout)
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, fault.New("no midi output ports",
			fmsg.WithDesc("no output ports", "No MIDI output ports found, is a synth running?"),
			ftag.With(ftag.NotFound))
	}
	if name == "" {
		return NewPortSink(outs[0])
	}
	for _, out := range outs {
		if out.String() == name || strings.EqualFold(out.String(), name) {
			return NewPortSink(out)
		}
	}
	return nil, fault.New("output port not found",
		fmsg.WithDesc("port "+name+" not found", "MIDI output port '"+name+"' is not available"),
		ftag.With(ftag.NotFound))
}

// CloseDriver releases the MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}

func scanOutPorts(timeout time.Duration) ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, fault.New("port scan timed out",
			fmsg.WithDesc("port scan timed out", "MIDI port listing timed out"),
			ftag.With(ftag.Internal))
	}
}

// PortWatcher polls output ports and reports hot-plug changes
type PortWatcher struct {
	ports    map[string]bool
	mu       sync.RWMutex
	events   chan PortEvent
	pollRate time.Duration
	list     func() ([]string, error)
}

// NewPortWatcher creates a watcher over the system output ports
func NewPortWatcher() *PortWatcher {
	return newPortWatcher(func() ([]string, error) { return OutPorts(scanTimeout) }, time.Second)
}

func newPortWatcher(list func() ([]string, error), pollRate time.Duration) *PortWatcher {
	return &PortWatcher{
		ports:    make(map[string]bool),
		events:   make(chan PortEvent, 16),
		pollRate: pollRate,
		list:     list,
	}
}

// Events returns a channel of connect/disconnect events
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Ports returns a sorted snapshot of known port names
func (w *PortWatcher) Ports() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.ports))
	for name := range w.ports {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	defer close(w.events)

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *PortWatcher) scan(ctx context.Context) {
	names, err := w.list()
	if err != nil {
		// skip this scan, try again next tick
		debug.FromContext(ctx).Debug("port scan failed", "err", err)
		return
	}

	seen := make(map[string]bool, len(names))
	var events []PortEvent

	w.mu.Lock()
	for _, name := range names {
		seen[name] = true
		if !w.ports[name] {
			w.ports[name] = true
			events = append(events, PortEvent{Type: PortConnected, Name: name})
		}
	}
	for name := range w.ports {
		if !seen[name] {
			delete(w.ports, name)
			events = append(events, PortEvent{Type: PortDisconnected, Name: name})
		}
	}
	w.mu.Unlock()

	for _, ev := range events {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
