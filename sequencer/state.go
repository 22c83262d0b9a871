package sequencer

// NoteView is what the renderer needs to draw one active note
type NoteView struct {
	Pitch    int     `json:"pitch"`
	Channel  uint8   `json:"channel"`
	Length   float64 `json:"length"`
	Travel   float64 `json:"travel"`
	Progress float64 `json:"progress"` // Elapsed / Travel
}

// Snapshot is a consistent copy of the player state taken between ticks
type Snapshot struct {
	Playing   bool               `json:"playing"`
	Scrolling bool               `json:"scrolling"`
	Notes     []NoteView         `json:"notes"`
	Keys      map[uint8]KeyState `json:"keys"`

	MessageIndex int     `json:"messageIndex"`
	MessageCount int     `json:"messageCount"`
	NoteIndex    int     `json:"noteIndex"`
	NoteCount    int     `json:"noteCount"`
	Position     float64 `json:"position"` // seconds into the song, buffer included
	Duration     float64 `json:"duration"`
	LastError    string  `json:"lastError,omitempty"`
}

// Key returns the state of a MIDI note, zero if never pressed
func (s Snapshot) Key(note uint8) KeyState {
	return s.Keys[note]
}

// Progress is the fraction of the song played, 0-1
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := s.Position / s.Duration
	if p > 1 {
		return 1
	}
	return p
}
