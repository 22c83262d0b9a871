package theme

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Palette  *Palette
	Channels *ChannelStyles
	Symbols  Symbols
}

type Symbols struct {
	Note     rune // █ scrolling note body
	Divider  rune // │ octave divider
	WhiteKey rune // ▇ unpressed white key
	BlackKey rune // ▆ unpressed black key
	Play     rune // ▶ playing
	Pause    rune // ❚ paused
}

func New(palette *Palette, channels *ChannelStyles) *Theme {
	return &Theme{
		Palette:  palette,
		Channels: channels,
		Symbols: Symbols{
			Note:     '█',
			Divider:  '│',
			WhiteKey: '▇',
			BlackKey: '▆',
			Play:     '▶',
			Pause:    '❚',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.2
	RoleFG      = 0.6
	RoleAccent  = 0.8
	RoleWarning = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Color returns lipgloss color for any RGB value
func Color(c RGB) lipgloss.Color {
	return rgbToLipgloss(c)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// ChannelStyle is the set of colours used for one MIDI channel
type ChannelStyle struct {
	WhiteKey RGB
	BlackKey RGB
	Note     RGB
}

// Mono uses one colour for keys and notes
func Mono(c RGB) ChannelStyle {
	return ChannelStyle{WhiteKey: c, BlackKey: c, Note: c}
}

// DefaultChannelColours are the styles of channels 0-7
var DefaultChannelColours = []RGB{
	{255, 128, 20},
	{0, 128, 255},
	{150, 50, 255},
	{0, 255, 0},
	{255, 0, 0},
	{150, 255, 255},
	{255, 100, 255},
	{0, 0, 255},
}

// Assigner picks a style for a channel seen for the first time
type Assigner interface {
	Assign(channel uint8) ChannelStyle
}

// HSLAssigner draws colours from a seeded generator so the same seed always
// yields the same sequence. Lightness stays in 0.4-0.6 and saturation in
// 0.8-1.0 to keep notes readable on the dark roll.
type HSLAssigner struct {
	rng *rand.Rand
}

// NewHSLAssigner creates an assigner for the given seed
func NewHSLAssigner(seed uint64) *HSLAssigner {
	return &HSLAssigner{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (a *HSLAssigner) Assign(channel uint8) ChannelStyle {
	h := a.rng.Float64() * 360
	l := 0.4 + a.rng.Float64()/5
	s := 0.8 + a.rng.Float64()/5
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return Mono(RGB{r, g, b})
}

// ChannelStyles maps channels to styles. Channels without an explicit
// style get one from the assigner on first lookup, which is then kept.
type ChannelStyles struct {
	styles   map[uint8]ChannelStyle
	assigner Assigner
}

// NewChannelStyles seeds channels 0-7 with the default colours
func NewChannelStyles(assigner Assigner) *ChannelStyles {
	cs := &ChannelStyles{
		styles:   make(map[uint8]ChannelStyle),
		assigner: assigner,
	}
	for i, c := range DefaultChannelColours {
		cs.styles[uint8(i)] = Mono(c)
	}
	return cs
}

// Set overrides the style of a channel
func (cs *ChannelStyles) Set(channel uint8, style ChannelStyle) {
	cs.styles[channel] = style
}

// SetHex overrides a channel with a "#rrggbb" colour
func (cs *ChannelStyles) SetHex(channel uint8, hex string) error {
	c, err := ParseHex(hex)
	if err != nil {
		return err
	}
	cs.Set(channel, Mono(c))
	return nil
}

// Style returns the style of a channel, assigning one if needed
func (cs *ChannelStyles) Style(channel uint8) ChannelStyle {
	if st, ok := cs.styles[channel]; ok {
		return st
	}
	st := cs.assigner.Assign(channel)
	cs.styles[channel] = st
	return st
}

// Known reports whether a channel already has a style
func (cs *ChannelStyles) Known(channel uint8) bool {
	_, ok := cs.styles[channel]
	return ok
}

// ParseHex parses "#rrggbb"
func ParseHex(hex string) (RGB, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return RGB{}, fmt.Errorf("colour %q is not #rrggbb", hex)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("colour %q: %w", hex, err)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
