package richtext

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB value.
type Color uint32

// RGB builds a color from its components.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// ParseColor parses "#rrggbb", "rrggbb" or a legacy color name such as
// "gold".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return Color(v), nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Flag is a formatting attribute that may be inherited from the parent node.
type Flag uint8

const (
	// Inherit leaves the attribute to the parent node.
	Inherit Flag = iota
	// On sets the attribute.
	On
	// Off clears the attribute.
	Off
)

// ClickEvent is an interaction attached to a span.
type ClickEvent struct {
	Action string
	Value  string
}

// HoverEvent is the tooltip attached to a span.
type HoverEvent struct {
	Action string
	Value  string
}

// Style holds the structural style of a node. The zero value inherits
// everything from the parent.
type Style struct {
	Color         *Color
	Bold          Flag
	Italic        Flag
	Underlined    Flag
	Strikethrough Flag
	Obfuscated    Flag
	Click         *ClickEvent
	Hover         *HoverEvent
	Insertion     string
	Font          string
}

// IsEmpty reports whether the style inherits everything.
func (s Style) IsEmpty() bool {
	return s.Color == nil &&
		s.Bold == Inherit && s.Italic == Inherit && s.Underlined == Inherit &&
		s.Strikethrough == Inherit && s.Obfuscated == Inherit &&
		s.Click == nil && s.Hover == nil && s.Insertion == "" && s.Font == ""
}

// WithColor returns a copy of s with the given color.
func (s Style) WithColor(c Color) Style {
	s.Color = &c
	return s
}

// Inherit fills every attribute s leaves unset from parent.
func (s Style) Inherit(parent Style) Style {
	if s.Color == nil {
		s.Color = parent.Color
	}
	s.Bold = inheritFlag(s.Bold, parent.Bold)
	s.Italic = inheritFlag(s.Italic, parent.Italic)
	s.Underlined = inheritFlag(s.Underlined, parent.Underlined)
	s.Strikethrough = inheritFlag(s.Strikethrough, parent.Strikethrough)
	s.Obfuscated = inheritFlag(s.Obfuscated, parent.Obfuscated)
	if s.Click == nil {
		s.Click = parent.Click
	}
	if s.Hover == nil {
		s.Hover = parent.Hover
	}
	if s.Insertion == "" {
		s.Insertion = parent.Insertion
	}
	if s.Font == "" {
		s.Font = parent.Font
	}
	return s
}

func inheritFlag(own, parent Flag) Flag {
	if own == Inherit {
		return parent
	}
	return own
}

// Legacy palette, indexed by format code.
var legacyColors = map[rune]Color{
	'0': 0x000000,
	'1': 0x0000aa,
	'2': 0x00aa00,
	'3': 0x00aaaa,
	'4': 0xaa0000,
	'5': 0xaa00aa,
	'6': 0xffaa00,
	'7': 0xaaaaaa,
	'8': 0x555555,
	'9': 0x5555ff,
	'a': 0x55ff55,
	'b': 0x55ffff,
	'c': 0xff5555,
	'd': 0xff55ff,
	'e': 0xffff55,
	'f': 0xffffff,
}

var namedColors = map[string]Color{
	"black":        0x000000,
	"dark_blue":    0x0000aa,
	"dark_green":   0x00aa00,
	"dark_aqua":    0x00aaaa,
	"dark_red":     0xaa0000,
	"dark_purple":  0xaa00aa,
	"gold":         0xffaa00,
	"gray":         0xaaaaaa,
	"dark_gray":    0x555555,
	"blue":         0x5555ff,
	"green":        0x55ff55,
	"aqua":         0x55ffff,
	"red":          0xff5555,
	"light_purple": 0xff55ff,
	"yellow":       0xffff55,
	"white":        0xffffff,
}

// LegacyColor returns the color selected by a legacy color code.
func LegacyColor(code rune) (Color, bool) {
	c, ok := legacyColors[toLowerCode(code)]
	return c, ok
}
