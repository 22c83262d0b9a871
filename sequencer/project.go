package sequencer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// SongExt is the file extension of playable songs
const SongExt = ".mid"

// SongsDir returns the default songs directory path
func SongsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-visualiser", "songs"), nil
}

// ListSongs returns the song files at path: the file itself, or the .mid
// files of a directory sorted by name.
func ListSongs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("stat songs path", "Could not find MIDI song files at the path: "+path),
			ftag.With(ftag.NotFound))
	}

	if !info.IsDir() {
		if isSong(path) {
			return []string{path}, nil
		}
		return []string{}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("read songs dir"))
	}

	var songs []string
	for _, entry := range entries {
		if entry.IsDir() || !isSong(entry.Name()) {
			continue
		}
		songs = append(songs, filepath.Join(path, entry.Name()))
	}

	sort.Strings(songs)
	return songs, nil
}

func isSong(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), SongExt)
}

// Library cycles through a list of song files
type Library struct {
	songs []string
	index int
}

// NewLibrary lists the songs at path; an empty result is an error
func NewLibrary(path string) (*Library, error) {
	songs, err := ListSongs(path)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, fault.New("no songs found",
			fmsg.WithDesc("no songs at "+path, "No MIDI files found at the path: "+path),
			ftag.With(ftag.NotFound))
	}
	return &Library{songs: songs}, nil
}

// Len returns the number of songs
func (l *Library) Len() int {
	return len(l.songs)
}

// Index returns the position of the current song
func (l *Library) Index() int {
	return l.index
}

// Current returns the current song path
func (l *Library) Current() string {
	return l.songs[l.index]
}

// Select moves to the named song if present
func (l *Library) Select(path string) bool {
	for i, s := range l.songs {
		if s == path || filepath.Base(s) == path {
			l.index = i
			return true
		}
	}
	return false
}

// Next moves forward, wrapping to the first song
func (l *Library) Next() string {
	return l.Move(1)
}

// Prev moves back, wrapping to the last song
func (l *Library) Prev() string {
	return l.Move(-1)
}

// Move steps delta songs with wrap-around
func (l *Library) Move(delta int) string {
	n := len(l.songs)
	l.index = ((l.index+delta)%n + n) % n
	return l.Current()
}
