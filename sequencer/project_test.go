package sequencer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Southclaws/fault/ftag"

	"go-visualiser/midifile"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListSongs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mid"))
	touch(t, filepath.Join(dir, "A.MID"))
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "sub.mid"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := ListSongs(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "A.MID"), filepath.Join(dir, "b.mid")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	single, err := ListSongs(want[1])
	if err != nil || len(single) != 1 || single[0] != want[1] {
		t.Fatalf("single file: got %v, %v", single, err)
	}

	other, err := ListSongs(filepath.Join(dir, "notes.txt"))
	if err != nil || len(other) != 0 {
		t.Fatalf("non-song file: got %v, %v", other, err)
	}
}

func TestListSongsMissingPath(t *testing.T) {
	_, err := ListSongs(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if ftag.Get(err) != ftag.NotFound {
		t.Fatalf("tag = %v, want %v", ftag.Get(err), ftag.NotFound)
	}
}

func TestLibraryWraps(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mid", "b.mid", "c.mid"} {
		touch(t, filepath.Join(dir, name))
	}
	lib, err := NewLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}
	if lib.Len() != 3 || lib.Index() != 0 {
		t.Fatalf("len/index = %d/%d, want 3/0", lib.Len(), lib.Index())
	}

	if got := filepath.Base(lib.Prev()); got != "c.mid" {
		t.Fatalf("prev from first = %s, want c.mid", got)
	}
	if got := filepath.Base(lib.Next()); got != "a.mid" {
		t.Fatalf("next from last = %s, want a.mid", got)
	}
	if got := filepath.Base(lib.Move(5)); got != "c.mid" {
		t.Fatalf("move 5 = %s, want c.mid", got)
	}

	if !lib.Select("b.mid") || lib.Index() != 1 {
		t.Fatalf("select by name: index %d", lib.Index())
	}
	if lib.Select("zzz.mid") || lib.Index() != 1 {
		t.Fatal("select of a missing song moved the library")
	}
}

func TestNewLibraryEmpty(t *testing.T) {
	if _, err := NewLibrary(t.TempDir()); err == nil {
		t.Fatal("expected an error for an empty directory")
	}
}

func TestLoadSongFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mid")
	if err := os.WriteFile(path, []byte("not a midi file"), 0644); err != nil {
		t.Fatal(err)
	}

	song, err := LoadSong(path, &fakeSink{}, DefaultOptions())
	if song != nil {
		t.Fatal("got a song for a broken file")
	}
	var loadErr *midifile.LoadError
	if !errors.As(err, &loadErr) || loadErr.Path != path {
		t.Fatalf("got %v, want *midifile.LoadError for %s", err, path)
	}
}
