package sequencer

import "maps"

// KeyState is the last note on/off seen for a key
type KeyState struct {
	Channel uint8 `json:"channel"`
	Held    bool  `json:"held"`
}

// PressTable records per MIDI note whether the key is down and which
// channel last touched it. Notes never written read as the zero KeyState
// (channel 0, not held); lookups never add entries.
type PressTable struct {
	keys map[uint8]KeyState
}

// NewPressTable creates an empty table
func NewPressTable() *PressTable {
	return &PressTable{keys: make(map[uint8]KeyState)}
}

// Set overwrites the state of a note
func (t *PressTable) Set(note uint8, st KeyState) {
	t.keys[note] = st
}

// Lookup returns the state of a note, or the zero KeyState if never set
func (t *PressTable) Lookup(note uint8) KeyState {
	return t.keys[note]
}

// Clear forgets every note
func (t *PressTable) Clear() {
	clear(t.keys)
}

// Len returns the number of notes that have been written
func (t *PressTable) Len() int {
	return len(t.keys)
}

// Entries returns a copy of the written notes
func (t *PressTable) Entries() map[uint8]KeyState {
	return maps.Clone(t.keys)
}
