// Package resolve picks the notification, if any, that a chat line activates.
//
// Resolution runs in two stages. First the line is checked against the echo
// cache: when a recently sent message appears in it and one of the username
// notification's triggers matches the text in front of it, the line is the
// server echoing the user's own message. Then the notifications are walked
// in order and the first one whose triggers match and whose exclusions do
// not is activated. At most one notification activates per line.
package resolve

import (
	"io"
	"log/slog"
	"strings"

	"github.com/chatnotify/chatnotify-go/internal/echo"
	"github.com/chatnotify/chatnotify-go/internal/matcher"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MatchContext is the state a resolution reads and updates. The caller must
// not use it concurrently.
type MatchContext struct {
	Config  *config.Config
	Echo    *echo.Cache
	Matcher *matcher.Matcher
	// Editing is the ID of a notification currently open in an editor. It
	// never activates.
	Editing string
	Logger  *slog.Logger
}

// Outcome is the result of resolving one line.
type Outcome struct {
	// Activated is set when a notification fired.
	Activated bool
	// Index is the position of Rule in the config.
	Index int
	// Rule is a copy of the activated notification.
	Rule config.Notification
	// Trigger is the trigger of Rule that matched.
	Trigger config.Trigger
	// Match locates Trigger in Text.
	Match matcher.Result

	// SelfMessage is set when the line was confirmed as an echo of a message
	// the user sent.
	SelfMessage bool
	// Suppressed is set when a self message was dropped because own
	// messages are ignored.
	Suppressed bool

	// Text is the plain text the notifications were matched against. For a
	// self message the username is removed from it.
	Text string
	// Removed is the username span taken out of a self message's text.
	Removed string
	// Key is the event key of the line.
	Key string
}

func (mc *MatchContext) logger() *slog.Logger {
	if mc.Logger == nil {
		return discardLogger
	}
	return mc.Logger
}

// Resolve runs both stages for line.
func Resolve(mc *MatchContext, line richtext.Node) Outcome {
	text := richtext.Plain(line)
	out := Outcome{Text: text, Key: richtext.EventKey(line)}
	if strings.TrimSpace(text) == "" || mc.Config == nil || len(mc.Config.Notifications) == 0 {
		return out
	}

	if mc.Echo != nil {
		if stripped, removed, ok := mc.checkSelf(text, out.Key); ok {
			out.SelfMessage = true
			if mc.Config.IgnoreOwnMessages {
				out.Suppressed = true
				mc.logger().Debug("ignoring own message", "text", text)
				return out
			}
			out.Text = stripped
			out.Removed = removed
		}
	}

	for i := range mc.Config.Notifications {
		n := &mc.Config.Notifications[i]
		if !n.Enabled || (mc.Editing != "" && n.ID == mc.Editing) {
			continue
		}
		tr, res, ok := mc.Matcher.MatchAny(n.Triggers, n.AllowRegex, out.Text, out.Key)
		if !ok {
			continue
		}
		if n.ExclusionEnabled {
			if ex, _, excluded := mc.Matcher.MatchAny(n.Exclusions, n.AllowRegex, out.Text, out.Key); excluded {
				mc.logger().Debug("notification excluded", "index", i, "id", n.ID, "exclusion", ex.String)
				continue
			}
		}

		out.Activated = true
		out.Index = i
		out.Rule = *n
		out.Trigger = tr
		out.Match = res
		mc.logger().Debug("notification activated", "index", i, "id", n.ID, "trigger", tr.String)
		return out
	}
	return out
}

// checkSelf reports whether text is an echo of a sent message and returns
// the text with the username removed, along with the removed span. The echo
// entry is consumed only when the username confirms it.
func (mc *MatchContext) checkSelf(text, key string) (string, string, bool) {
	lower := strings.ToLower(text)
	cand, ok := mc.Echo.Lookup(lower)
	if !ok {
		return "", "", false
	}

	// Offsets from the echo cache index the lower-cased text; keep working
	// on it when lower-casing changed the byte length.
	work := text
	if len(lower) != len(text) {
		work = lower
	}

	user := mc.Config.Username()
	_, res, ok := mc.Matcher.MatchAny(user.Triggers, false, work[:cand.Offset], key)
	if !ok {
		return "", "", false
	}
	mc.Echo.Consume(cand)
	mc.logger().Debug("confirmed own message", "echo", cand.Text)

	if !res.HasSpan {
		return work[cand.Offset:], "", true
	}
	return work[:res.Start] + work[res.End:], work[res.Start:res.End], true
}
