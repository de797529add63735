// Package chatlog turns game client log lines into rich text chat lines.
package chatlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

// Entry is one chat line read from the log.
type Entry struct {
	// Time is the time of day the line was logged, on the zero date.
	Time   time.Time
	Thread string
	// Line is a Template when the message has a known shape and a Literal
	// otherwise.
	Line richtext.Node
}

// Parse parses a client log line into an Entry.
//
// Returns:
//   - (*Entry, nil): a chat line
//   - (nil, nil): any other log line
//   - (nil, error): a chat line with a malformed timestamp
func Parse(line string) (*Entry, error) {
	// Trim trailing CR for Windows CRLF compatibility
	line = strings.TrimRight(line, "\r")

	// Quick exclusion check
	if !strings.Contains(line, "[CHAT] ") {
		return nil, nil
	}

	match := chatLinePattern.FindStringSubmatch(line)
	if match == nil {
		return nil, nil
	}

	ts, err := time.Parse(timestampLayout, match[1])
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", match[1], err)
	}

	return &Entry{
		Time:   ts,
		Thread: match[2],
		Line:   ParseMessage(match[3]),
	}, nil
}

// ParseMessage rebuilds the rich text of a rendered chat message.
func ParseMessage(msg string) richtext.Node {
	msg = strings.TrimPrefix(msg, unsignedMarker)
	for _, s := range shapes {
		match := s.pattern.FindStringSubmatch(msg)
		if match == nil {
			continue
		}
		args := make([]richtext.Arg, 0, len(match)-1)
		for _, m := range match[1:] {
			args = append(args, richtext.StringArg(m))
		}
		return &richtext.Template{Key: s.key, Args: args}
	}
	return richtext.Text(msg)
}
