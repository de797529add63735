package richtext

import (
	"strings"
	"unicode/utf8"
)

// FormatMarker starts a two-character legacy formatting sequence such as
// "§a" (green) or "§l" (bold).
const FormatMarker = '§'

// FormatCodeClass is the regular-expression character class of valid code
// characters following FormatMarker.
const FormatCodeClass = `[0-9a-fk-orA-FK-OR]`

const markerLen = len(string(FormatMarker))

func toLowerCode(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// IsFormatCode reports whether r is a valid code character.
func IsFormatCode(r rune) bool {
	r = toLowerCode(r)
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'k' && r <= 'o') || r == 'r'
}

// IsColorCode reports whether r selects a color.
func IsColorCode(r rune) bool {
	r = toLowerCode(r)
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// HasFormatting reports whether s contains a formatting marker.
func HasFormatting(s string) bool {
	return strings.ContainsRune(s, FormatMarker)
}

// codeAt reports whether a complete sequence starts at byte offset i and
// returns its length in bytes.
func codeAt(s string, i int) (rune, int, bool) {
	if i < 0 || i+markerLen >= len(s) || !strings.HasPrefix(s[i:], string(FormatMarker)) {
		return 0, 0, false
	}
	r, size := utf8.DecodeRuneInString(s[i+markerLen:])
	if !IsFormatCode(r) {
		return 0, 0, false
	}
	return r, markerLen + size, true
}

// SkipFormatting returns the byte offset after every complete sequence
// directly starting at i.
func SkipFormatting(s string, i int) int {
	for {
		_, n, ok := codeAt(s, i)
		if !ok {
			return i
		}
		i += n
	}
}

// TrimDanglingMarker moves end back when s[:end] finishes with a bare marker
// whose code character lies at or beyond end, so a cut at end never splits a
// sequence.
func TrimDanglingMarker(s string, end int) int {
	if end >= markerLen && strings.HasSuffix(s[:end], string(FormatMarker)) {
		return end - markerLen
	}
	return end
}

// StripFormatting removes every complete formatting sequence from s.
func StripFormatting(s string) string {
	if !HasFormatting(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		if _, n, ok := codeAt(s, i); ok {
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		sb.WriteString(s[i : i+size])
		i += size
	}
	return sb.String()
}

// ActiveFormatting scans s from the start and returns the sequences still in
// effect at its end: the last color followed by every format code set since.
// A reset code clears everything; a color code replaces only the color.
// Sequences with characters outside the code ranges are ignored.
func ActiveFormatting(s string) string {
	var color rune
	var formats []rune
	for i := 0; i < len(s); {
		r, n, ok := codeAt(s, i)
		if !ok {
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
			continue
		}
		i += n
		r = toLowerCode(r)
		switch {
		case r == 'r':
			color = 0
			formats = formats[:0]
		case IsColorCode(r):
			color = r
		default:
			if !containsRune(formats, r) {
				formats = append(formats, r)
			}
		}
	}
	var sb strings.Builder
	if color != 0 {
		sb.WriteRune(FormatMarker)
		sb.WriteRune(color)
	}
	for _, f := range formats {
		sb.WriteRune(FormatMarker)
		sb.WriteRune(f)
	}
	return sb.String()
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// Segment is a run of text that shares one legacy formatting state.
type Segment struct {
	Text  string
	Style Style
}

// Segments splits s into runs and translates the legacy codes preceding each
// run into a Style overlay.
func Segments(s string) []Segment {
	if !HasFormatting(s) {
		return []Segment{{Text: s}}
	}
	var out []Segment
	var cur Style
	start := 0
	flush := func(end int) {
		if end > start {
			out = append(out, Segment{Text: s[start:end], Style: cur})
		}
	}
	for i := 0; i < len(s); {
		r, n, ok := codeAt(s, i)
		if !ok {
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
			continue
		}
		flush(i)
		i += n
		start = i
		r = toLowerCode(r)
		switch r {
		case 'r':
			cur = Style{}
		case 'k':
			cur.Obfuscated = On
		case 'l':
			cur.Bold = On
		case 'm':
			cur.Strikethrough = On
		case 'n':
			cur.Underlined = On
		case 'o':
			cur.Italic = On
		default:
			if c, ok := LegacyColor(r); ok {
				cur = Style{}.WithColor(c)
			}
		}
	}
	flush(len(s))
	return out
}
