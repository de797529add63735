package config

import (
	"encoding/json"
	"fmt"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

// FormatMode is the three-state setting of one formatting attribute.
type FormatMode uint8

const (
	// FormatUnchanged leaves the source span's attribute as it is.
	FormatUnchanged FormatMode = iota
	// FormatOn forces the attribute on.
	FormatOn
	// FormatOff forces the attribute off.
	FormatOff
)

func (m FormatMode) String() string {
	switch m {
	case FormatOn:
		return "on"
	case FormatOff:
		return "off"
	default:
		return "unchanged"
	}
}

// Active reports whether the mode overrides the source value.
func (m FormatMode) Active() bool {
	return m == FormatOn || m == FormatOff
}

// MarshalText implements encoding.TextMarshaler.
func (m FormatMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "true"/"false" are
// accepted as aliases for on/off.
func (m *FormatMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "on", "true":
		*m = FormatOn
	case "off", "false":
		*m = FormatOff
	case "unchanged", "", "null":
		*m = FormatUnchanged
	default:
		return fmt.Errorf("invalid format mode %q", string(b))
	}
	return nil
}

// UnmarshalJSON accepts the text form as well as JSON booleans and null.
func (m *FormatMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return m.UnmarshalText(b)
	}
	return m.UnmarshalText([]byte(s))
}

func (m FormatMode) flag() richtext.Flag {
	if m == FormatOn {
		return richtext.On
	}
	return richtext.Off
}

// TextStyle is the restyle applied to matched text.
type TextStyle struct {
	ColorEnabled  bool           `json:"color_enabled" yaml:"color_enabled"`
	Color         richtext.Color `json:"color" yaml:"color"`
	Bold          FormatMode     `json:"bold" yaml:"bold"`
	Italic        FormatMode     `json:"italic" yaml:"italic"`
	Underlined    FormatMode     `json:"underlined" yaml:"underlined"`
	Strikethrough FormatMode     `json:"strikethrough" yaml:"strikethrough"`
	Obfuscated    FormatMode     `json:"obfuscated" yaml:"obfuscated"`
}

// DefaultColor is the highlight color of new notifications.
const DefaultColor richtext.Color = 0xffc400

// IsActive reports whether applying the style can change anything.
func (ts TextStyle) IsActive() bool {
	return ts.ColorEnabled || ts.Bold.Active() || ts.Italic.Active() ||
		ts.Underlined.Active() || ts.Strikethrough.Active() || ts.Obfuscated.Active()
}

// Apply merges ts over s. Attributes in FormatUnchanged keep the value from
// s, the color is replaced only when ColorEnabled, and interaction metadata
// is never touched.
func (ts TextStyle) Apply(s richtext.Style) richtext.Style {
	if ts.ColorEnabled {
		s = s.WithColor(ts.Color)
	}
	if ts.Bold.Active() {
		s.Bold = ts.Bold.flag()
	}
	if ts.Italic.Active() {
		s.Italic = ts.Italic.flag()
	}
	if ts.Underlined.Active() {
		s.Underlined = ts.Underlined.flag()
	}
	if ts.Strikethrough.Active() {
		s.Strikethrough = ts.Strikethrough.flag()
	}
	if ts.Obfuscated.Active() {
		s.Obfuscated = ts.Obfuscated.flag()
	}
	return s
}
