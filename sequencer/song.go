package sequencer

import (
	"path/filepath"
	"strings"

	"go-visualiser/debug"
	"go-visualiser/midi"
	"go-visualiser/midifile"
)

// Song is a loaded file ready to play
type Song struct {
	Path   string
	Name   string
	Player *Player
}

// LoadSong decodes the file at path and builds its player. A failed load
// returns a *midifile.LoadError and no player is created.
func LoadSong(path string, sink midi.Sink, opts Options) (*Song, error) {
	events, err := midifile.Load(path)
	if err != nil {
		debug.Logger().Error("load failed", "path", path, "err", err)
		return nil, err
	}

	player, err := NewPlayer(events, sink, opts)
	if err != nil {
		return nil, err
	}

	debug.Logger().Info("song loaded", "path", path, "events", len(events), "notes", len(player.Notes()))
	return &Song{
		Path:   path,
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Player: player,
	}, nil
}
