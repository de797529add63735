package chatnotify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/chatnotify/chatnotify-go/internal/echo"
	"github.com/chatnotify/chatnotify-go/internal/matcher"
	"github.com/chatnotify/chatnotify-go/internal/resolve"
	"github.com/chatnotify/chatnotify-go/internal/respond"
	"github.com/chatnotify/chatnotify-go/internal/restyle"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

// discardLogger is used when no logger is provided.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Engine matches chat lines against a rule set and runs the effects of the
// notification that fires.
//
// All methods are safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	mc      resolve.MatchContext
	sched   *respond.Scheduler
	sound   SoundPlayer
	sender  Sender
	profile string
	logger  *slog.Logger
}

// Result describes what ProcessMessage did with one line.
type Result struct {
	// Line is the line to display. It is the input itself unless a
	// notification fired and restyled it.
	Line richtext.Node
	// Activated is set when a notification fired.
	Activated bool
	// Index and NotificationID identify the notification that fired.
	Index          int
	NotificationID string
	// Trigger is the trigger that matched.
	Trigger config.Trigger
	// Matched is the plain text span that matched, empty for key triggers.
	Matched string
	// SelfMessage is set when the line was the server's echo of a message
	// sent by the user.
	SelfMessage bool
	// Suppressed is set when a self message was ignored.
	Suppressed bool
	// Sound is the sound that was played, if any.
	Sound *config.Sound
	// Responses are the replies scheduled by the notification.
	Responses []string
}

// NewEngine creates an engine for cfg. A nil cfg selects the default rule
// set. The config is copied and validated; repaired problems are logged as
// warnings and do not cause an error. NewEngine fails only on invalid
// options.
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	ec := applyOptions(opts)
	if err := ec.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logger := ec.logger
	if logger == nil {
		logger = discardLogger
	}

	e := &Engine{
		mc: resolve.MatchContext{
			Echo: echo.New(ec.echoWindow, ec.now),
			Matcher: matcher.New(
				matcher.WithLogger(logger),
				matcher.WithTimeout(ec.regexTimeout),
			),
			Logger: logger,
		},
		sched:   respond.NewScheduler(logger),
		sound:   ec.sound,
		sender:  ec.sender,
		profile: ec.profileName,
		logger:  logger,
	}
	e.install(cfg)
	return e, nil
}

// install validates a copy of cfg and makes it the active rule set. The
// caller must hold e.mu or own e exclusively.
func (e *Engine) install(cfg *config.Config) {
	if cfg == nil {
		cfg = config.Default(e.profile)
	} else {
		cfg = cfg.Clone()
		if err := cfg.Validate(e.profile); err != nil {
			e.logger.Warn("config repaired", "error", err)
		}
	}
	e.mc.Config = cfg
	e.mc.Echo.SetUntimed(cfg.DetectionMode == config.DetectUntimed)
}

// ProcessMessage runs the rule set against line and returns the line to
// display. When no notification fires, or the one that fires has no text
// style, line itself is returned.
func (e *Engine) ProcessMessage(line richtext.Node) richtext.Node {
	return e.Process(line).Line
}

// Process is ProcessMessage with details about the outcome.
func (e *Engine) Process(line richtext.Node) Result {
	res := Result{Line: line}
	if line == nil {
		return res
	}

	e.mu.Lock()
	out := resolve.Resolve(&e.mc, line)
	res.SelfMessage = out.SelfMessage
	res.Suppressed = out.Suppressed
	if !out.Activated {
		e.mu.Unlock()
		return res
	}

	rule := out.Rule
	res.Activated = true
	res.Index = out.Index
	res.NotificationID = rule.ID
	res.Trigger = out.Trigger
	if out.Match.HasSpan {
		res.Matched = out.Text[out.Match.Start:out.Match.End]
	}

	req := restyle.Request{
		Matcher:    e.mc.Matcher,
		Trigger:    out.Trigger,
		AllowRegex: rule.AllowRegex,
		Style:      rule.Style,
		Whole:      !out.Match.HasSpan,
	}
	// The sender name of an own message was not matched against; leave it
	// unstyled when it also carries the trigger.
	if out.Removed != "" {
		if _, ok := e.mc.Matcher.Match(out.Trigger, rule.AllowRegex, out.Removed, ""); ok {
			req.Skip = 1
		}
	}
	res.Line = restyle.Apply(line, req)

	if rule.Sound.Enabled && e.sound != nil {
		s := rule.Sound
		res.Sound = &s
	}
	if rule.ResponseEnabled && e.sender != nil {
		for _, r := range rule.Responses {
			text := r.Resolve(out.Match.Groups)
			e.sched.Schedule(respond.NewMessage(text), r.Delay)
			res.Responses = append(res.Responses, text)
		}
	}
	e.mu.Unlock()

	if res.Sound != nil {
		e.sound.PlaySound(res.Sound.ID, res.Sound.Volume, res.Sound.Pitch)
	}
	return res
}

// RecordOutbound remembers a chat line or command the user is sending so
// that the server's echo of it can be recognised.
func (e *Engine) RecordOutbound(text string, isCommand bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mc.Echo.Record(text, isCommand, e.mc.Config.Prefixes)
}

// OnTick advances the engine by one client tick: remembered messages are
// expired and replies whose delay has elapsed are sent. When the sender
// reports it is disconnected all pending replies are dropped.
func (e *Engine) OnTick() {
	connected := respond.Connected(e.sender)

	e.mu.Lock()
	e.mc.Echo.Prune()
	due := e.sched.Tick(connected)
	e.mu.Unlock()

	if len(due) > 0 {
		respond.Dispatch(e.sender, due, e.logger)
	}
}

// SetConfig replaces the rule set with a validated copy of cfg. A nil cfg
// selects the default rule set.
func (e *Engine) SetConfig(cfg *config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.install(cfg)
}

// Config returns a copy of the active rule set.
func (e *Engine) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mc.Config.Clone()
}

// SetEditing marks the notification with the given ID as open in an editor.
// It does not fire until ClearEditing is called.
func (e *Engine) SetEditing(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mc.Editing = id
}

// ClearEditing clears the mark set by SetEditing.
func (e *Engine) ClearEditing() {
	e.SetEditing("")
}

// PendingResponses returns the number of replies waiting for their delay.
func (e *Engine) PendingResponses() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.Len()
}
