package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go-visualiser/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "scale":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		playScale(port)
	case "poll":
		pollPorts()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Output Test")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List MIDI output ports")
	fmt.Println("  scale [port]  - Play a C major scale, then reset the port")
	fmt.Println("  poll          - Watch for ports being connected or removed")
}

func listPorts() {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	names, err := midi.OutPorts(3 * time.Second)
	if err != nil {
		fmt.Printf("\n%v\n", err)
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func playScale(port string) {
	sink, err := midi.OpenOutput(port)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}
	defer midi.CloseDriver()
	defer sink.Close()

	fmt.Printf("Using output: %s\n", sink.Name())

	for _, note := range []uint8{60, 62, 64, 65, 67, 69, 71, 72} {
		if err := sink.Send(midi.NoteOn(0, note, 100, 0)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		time.Sleep(250 * time.Millisecond)
		if err := sink.Send(midi.NoteOff(0, note, 0)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}

	// leave one note hanging to check the reset path
	sink.Send(midi.NoteOn(0, 48, 100, 0))
	time.Sleep(500 * time.Millisecond)
	fmt.Printf("Held before reset: %d\n", sink.Held())
	if err := sink.ResetAll(); err != nil {
		fmt.Printf("Reset error: %v\n", err)
		return
	}
	fmt.Println("Done!")
}

func pollPorts() {
	fmt.Println("Polling for port changes every second. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := midi.NewPortWatcher()
	go w.Run(ctx)

	for ev := range w.Events() {
		state := "connected"
		if ev.Type == midi.PortDisconnected {
			state = "removed"
		}
		fmt.Printf("[%s] %s: %s\n", time.Now().Format("15:04:05"), state, ev.Name)
	}
}
