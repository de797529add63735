package richtext

import (
	"strconv"
	"strings"
)

// Translations maps well-known chat keys to their format strings. Keys not
// listed here render with the template's Fallback, or the key itself.
var Translations = map[string]string{
	"chat.type.text":                    "<%s> %s",
	"chat.type.announcement":            "[%s] %s",
	"chat.type.emote":                   "* %s %s",
	"chat.type.team.text":               "%s <%s> %s",
	"chat.type.team.sent":               "-> %s <%s> %s",
	"commands.message.display.incoming": "%s whispers to you: %s",
	"commands.message.display.outgoing": "You whisper to %s: %s",
	"multiplayer.player.joined":         "%s joined the game",
	"multiplayer.player.joined.renamed": "%s (formerly known as %s) joined the game",
	"multiplayer.player.left":           "%s left the game",
	"chat.type.advancement.task":        "%s has made the advancement %s",
	"chat.type.advancement.goal":        "%s has reached the goal %s",
	"chat.type.advancement.challenge":   "%s has completed the challenge %s",
	"death.attack.generic":              "%s died",
}

// Plain renders n and its descendants as plain text. Legacy formatting codes
// inside literal text are kept.
func Plain(n Node) string {
	var sb strings.Builder
	writePlain(&sb, n)
	return sb.String()
}

func writePlain(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Literal:
		sb.WriteString(n.Text)
	case *Template:
		sb.WriteString(renderTemplate(n))
	case *Composite:
	case nil:
		return
	}
	for _, s := range SiblingsOf(n) {
		writePlain(sb, s)
	}
}

// FormatOf returns the format string used to render t.
func FormatOf(t *Template) string {
	if f, ok := Translations[t.Key]; ok {
		return f
	}
	if t.Fallback != "" {
		return t.Fallback
	}
	return t.Key
}

// ArgText renders a single template argument.
func ArgText(a Arg) string {
	if a.Node != nil {
		return Plain(a.Node)
	}
	return a.Text
}

func renderTemplate(t *Template) string {
	var sb strings.Builder
	for _, p := range ParseFormat(FormatOf(t)) {
		if p.Arg < 0 {
			sb.WriteString(p.Text)
			continue
		}
		if p.Arg < len(t.Args) {
			sb.WriteString(ArgText(t.Args[p.Arg]))
		}
	}
	return sb.String()
}

// FormatPart is either literal format text (Arg < 0) or a reference to the
// argument at index Arg.
type FormatPart struct {
	Text string
	Arg  int
}

// ParseFormat splits a format string into text and argument references.
// It understands "%s", "%n$s" and "%%"; anything else is kept verbatim.
func ParseFormat(format string) []FormatPart {
	var parts []FormatPart
	var text strings.Builder
	next := 0
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, FormatPart{Text: text.String(), Arg: -1})
			text.Reset()
		}
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			text.WriteByte(c)
			continue
		}
		rest := format[i+1:]
		switch {
		case rest[0] == '%':
			text.WriteByte('%')
			i++
		case rest[0] == 's':
			flush()
			parts = append(parts, FormatPart{Arg: next})
			next++
			i++
		default:
			j := 0
			for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
				j++
			}
			if j > 0 && j+1 < len(rest) && rest[j] == '$' && rest[j+1] == 's' {
				n, _ := strconv.Atoi(rest[:j])
				flush()
				parts = append(parts, FormatPart{Arg: n - 1})
				i += j + 2
				continue
			}
			text.WriteByte(c)
		}
	}
	flush()
	return parts
}
