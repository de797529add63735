package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// record is the JSON Lines form of one processed chat line.
type record struct {
	Time         string   `json:"time,omitempty"`
	Text         string   `json:"text"`
	Activated    bool     `json:"activated"`
	Index        *int     `json:"index,omitempty"`
	Notification string   `json:"notification,omitempty"`
	TriggerKind  string   `json:"trigger_kind,omitempty"`
	Trigger      string   `json:"trigger,omitempty"`
	Matched      string   `json:"matched,omitempty"`
	SelfMessage  bool     `json:"self_message,omitempty"`
	Suppressed   bool     `json:"suppressed,omitempty"`
	Sound        string   `json:"sound,omitempty"`
	Responses    []string `json:"responses,omitempty"`
}

func newRecord(ts time.Time, res chatnotify.Result) record {
	r := record{
		Text:        richtext.StripFormatting(richtext.Plain(res.Line)),
		Activated:   res.Activated,
		SelfMessage: res.SelfMessage,
		Suppressed:  res.Suppressed,
		Responses:   res.Responses,
	}
	if !ts.IsZero() {
		r.Time = ts.Format(time.TimeOnly)
	}
	if res.Activated {
		idx := res.Index
		r.Index = &idx
		r.Notification = res.NotificationID
		r.TriggerKind = string(res.Trigger.Kind)
		r.Trigger = res.Trigger.String
		r.Matched = res.Matched
	}
	if res.Sound != nil {
		r.Sound = res.Sound.ID
	}
	return r
}

// outputResult writes a processed line in the specified format to the
// writer. ts may be zero when the line carries no time.
func outputResult(format string, ts time.Time, res chatnotify.Result, out io.Writer) error {
	switch format {
	case "jsonl":
		return outputJSON(ts, res, out)
	case "pretty":
		return outputPretty(ts, res, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// outputJSON writes a processed line as JSON Lines format.
func outputJSON(ts time.Time, res chatnotify.Result, out io.Writer) error {
	data, err := json.Marshal(newRecord(ts, res))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// outputPretty writes the restyled line followed by a marker describing
// what fired:
//
//	[12:30:45] ! <Bob> hi Alice  (#0 literal "Alice")
func outputPretty(ts time.Time, res chatnotify.Result, out io.Writer) error {
	var sb strings.Builder
	if !ts.IsZero() {
		sb.WriteString("[" + ts.Format(time.TimeOnly) + "] ")
	}
	switch {
	case res.Suppressed:
		sb.WriteString("~ ")
	case res.Activated:
		sb.WriteString("! ")
	default:
		sb.WriteString("  ")
	}
	sb.WriteString(renderANSI(res.Line))
	if res.Activated {
		fmt.Fprintf(&sb, "  (#%d %s %q)", res.Index, res.Trigger.Kind, res.Trigger.String)
	}
	for _, r := range res.Responses {
		sb.WriteString("\n    -> " + quoteIfNeeded(r))
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(out, sb.String())
	return err
}

// quoteIfNeeded quotes a value if it contains special characters or control characters.
// Returns the value unchanged if no quoting is needed.
func quoteIfNeeded(v string) string {
	if v == "" {
		return `""`
	}

	needsQuote := false
	for _, c := range v {
		if c == '"' || c == '\\' || c < 0x20 || c == 0x7F {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c == 0x7F:
			// Other control characters (including DEL): escape as \xNN
			sb.WriteString(fmt.Sprintf(`\x%02x`, c))
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
