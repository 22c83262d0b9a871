package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Southclaws/fault/fmsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"go-visualiser/config"
	"go-visualiser/debug"
	"go-visualiser/midi"
	"go-visualiser/sequencer"
	"go-visualiser/theme"
	"go-visualiser/tui"
)

func main() {
	port := flag.String("port", "", "MIDI output port name (default: config, then first port)")
	travel := flag.Float64("travel", 0, "seconds for a note to scroll down to the keys (default: config)")
	noScroll := flag.Bool("no-scroll", false, "hide the scrolling notes, show only the keyboard")
	debugLog := flag.Bool("debug", false, "write a debug log to ~/.config/go-visualiser/debug.log")
	list := flag.Bool("list", false, "list MIDI output ports and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [song.mid | songs-dir]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			log.Warn("debug log disabled", "err", err)
		}
		defer debug.Disable()
	}

	if *list {
		names, err := midi.OutPorts(3 * time.Second)
		if err != nil {
			log.Fatal("list ports", "err", issue(err))
		}
		if len(names) == 0 {
			fmt.Println("No MIDI output ports")
		}
		for i, name := range names {
			fmt.Printf("  %d: %s\n", i, name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	if *port != "" {
		cfg.Output.PortName = *port
	}
	if *travel != 0 {
		cfg.Display.TravelSeconds = *travel
	}
	if *noScroll {
		cfg.Display.ScrollingNotes = false
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid settings", "err", err)
	}

	if err := run(cfg, flag.Arg(0)); err != nil {
		log.Fatal("go-visualiser", "err", issue(err))
	}
}

func run(cfg *config.Config, songsPath string) error {
	if songsPath == "" {
		songsPath = cfg.Library.SongsDir
	}
	if songsPath == "" {
		dir, err := sequencer.SongsDir()
		if err != nil {
			return err
		}
		songsPath = dir
	}

	lib, err := sequencer.NewLibrary(songsPath)
	if err != nil {
		return err
	}
	if cfg.Library.LastSong != "" {
		lib.Select(cfg.Library.LastSong)
	}

	palette, err := theme.LoadOrDefault(cfg.Display.Palette)
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	channels := theme.NewChannelStyles(theme.NewHSLAssigner(cfg.ColourSeed))
	for ch, hex := range cfg.Channels {
		if err := channels.SetHex(uint8(ch), hex); err != nil {
			return err
		}
	}
	th := theme.New(palette, channels)

	sink, err := midi.OpenOutput(cfg.Output.PortName)
	if err != nil {
		return err
	}
	defer midi.CloseDriver()
	defer sink.Close()
	debug.Logger().Info("output opened", "port", sink.Name())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ports := midi.NewPortWatcher()
	go ports.Run(debug.WithContext(ctx))

	opts := sequencer.Options{
		Travel:    cfg.Display.TravelSeconds,
		Scrolling: cfg.Display.ScrollingNotes,
	}
	m := tui.NewModel(lib, sink, opts, th, cfg.Display.RollHeight, cfg.Display.ShowOctaveDividers)
	m.Ports = ports
	m.PortName = sink.Name()
	m.PlayIcon = cfg.Display.ShowPlayIcon

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(tui.Model); ok && fm.Song() != nil {
		rememberSong(fm.Song().Path)
	}
	return nil
}

// rememberSong stores the last played song without persisting flag overrides
func rememberSong(path string) {
	cfg, err := config.Load()
	if err != nil {
		debug.Logger().Warn("reload config", "err", err)
		return
	}
	cfg.Library.LastSong = path
	if err := cfg.Save(); err != nil {
		debug.Logger().Warn("save config", "err", err)
	}
}

func issue(err error) string {
	if msg := fmsg.GetIssue(err); msg != "" {
		return msg
	}
	return err.Error()
}
