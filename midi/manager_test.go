package midi

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestPortWatcherScan(t *testing.T) {
	lists := [][]string{
		{"Synth A", "Synth B"},
		{"Synth B"},
		nil, // failed scan
		{"Synth B", "Synth C"},
	}
	var call int
	w := newPortWatcher(func() ([]string, error) {
		ports := lists[call]
		call++
		if ports == nil {
			return nil, errors.New("timeout")
		}
		return ports, nil
	}, time.Hour)

	ctx := context.Background()
	expect := func(want ...PortEvent) {
		t.Helper()
		var got []PortEvent
		for len(got) < len(want) {
			select {
			case ev := <-w.Events():
				got = append(got, ev)
			default:
				t.Fatalf("got %v, want %v", got, want)
			}
		}
		select {
		case ev := <-w.Events():
			t.Fatalf("unexpected event %v", ev)
		default:
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	w.scan(ctx)
	expect(PortEvent{PortConnected, "Synth A"}, PortEvent{PortConnected, "Synth B"})

	w.scan(ctx)
	expect(PortEvent{PortDisconnected, "Synth A"})

	w.scan(ctx)
	expect()
	if got := w.Ports(); !reflect.DeepEqual(got, []string{"Synth B"}) {
		t.Fatalf("ports after failed scan = %v", got)
	}

	w.scan(ctx)
	expect(PortEvent{PortConnected, "Synth C"})
	if got := w.Ports(); !reflect.DeepEqual(got, []string{"Synth B", "Synth C"}) {
		t.Fatalf("ports = %v", got)
	}
}

func TestPortWatcherRunClosesEvents(t *testing.T) {
	w := newPortWatcher(func() ([]string, error) { return nil, nil }, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancel")
	}
	if _, ok := <-w.Events(); ok {
		t.Fatal("events channel still open")
	}
}
