// Package matcher decides whether a trigger matches a chat line and where.
//
// Literal triggers are matched case-insensitively on Unicode word boundaries
// and may be wrapped in one punctuation character on either side or be
// preceded by legacy formatting codes. Regex triggers are user patterns and
// are compiled once, cached and run with a timeout. Key triggers test the
// message's event key and produce no span.
package matcher

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/time/rate"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

const (
	// DefaultTimeout bounds a single pattern evaluation.
	DefaultTimeout = 5 * time.Millisecond

	// WarnRateLimit is the sustained number of warnings logged per second.
	WarnRateLimit = 1

	// WarnBurst is the number of warnings that may be logged at once.
	WarnBurst = 5
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Result describes a successful match.
type Result struct {
	// Start and End are byte offsets of the matched span in the searched
	// text. They are meaningful only when HasSpan is set.
	Start, End int
	HasSpan    bool
	// Groups holds the captures of a regex trigger by number ("0", "1", ...)
	// and by name. It is nil for other kinds.
	Groups map[string]string
}

// Matcher evaluates triggers. It is safe for concurrent use.
type Matcher struct {
	cache   *patternCache
	timeout time.Duration
	logger  *slog.Logger
	limiter *rate.Limiter
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger used for broken pattern and timeout warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTimeout sets the per-evaluation timeout. Values <= 0 are ignored.
func WithTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithCacheSize sets the pattern cache capacity.
func WithCacheSize(n int) Option {
	return func(m *Matcher) {
		m.cache = newPatternCache(n)
	}
}

// New returns a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		cache:   newPatternCache(DefaultCacheSize),
		timeout: DefaultTimeout,
		logger:  discardLogger,
		limiter: rate.NewLimiter(WarnRateLimit, WarnBurst),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LiteralPattern returns the boundary-aware pattern source for a literal
// trigger. It must be compiled with regexp2.IgnoreCase.
func LiteralPattern(literal string) string {
	return `(?<!\w)\W?(?:` + string(richtext.FormatMarker) + `[0-9a-fk-or])*` +
		regexp2.Escape(literal) + `\W?(?!\w)`
}

// Match tests t against text. key is the event key of the message and is
// used only by key triggers. Regex triggers are honored only when allowRegex
// is set; otherwise their string is matched as a literal. Disabled and blank
// triggers never match.
func (m *Matcher) Match(t config.Trigger, allowRegex bool, text, key string) (Result, bool) {
	if !t.Enabled || t.IsBlank() {
		return Result{}, false
	}

	switch {
	case t.Kind == config.KindKey:
		if t.IsCatchAll() || strings.Contains(strings.ToLower(key), t.String) {
			return Result{}, true
		}
		return Result{}, false
	case t.Kind == config.KindRegex && allowRegex:
		return m.find(t.String, regexp2.None, text, true)
	default:
		return m.find(LiteralPattern(t.String), regexp2.IgnoreCase, text, false)
	}
}

// MatchAny returns the first trigger of ts that matches.
func (m *Matcher) MatchAny(ts []config.Trigger, allowRegex bool, text, key string) (config.Trigger, Result, bool) {
	for _, t := range ts {
		if r, ok := m.Match(t, allowRegex, text, key); ok {
			return t, r, true
		}
	}
	return config.Trigger{}, Result{}, false
}

func (m *Matcher) compile(pattern string, opts regexp2.RegexOptions, user bool) (*regexp2.Regexp, bool, error) {
	return m.cache.get(pattern, opts, func(p string, o regexp2.RegexOptions) (*regexp2.Regexp, error) {
		if user && len(p) > MaxPatternLength {
			return nil, fmt.Errorf("pattern exceeds maximum length of %d", MaxPatternLength)
		}
		re, err := regexp2.Compile(p, o)
		if err != nil {
			return nil, err
		}
		re.MatchTimeout = m.timeout
		return re, nil
	})
}

func (m *Matcher) find(pattern string, opts regexp2.RegexOptions, text string, user bool) (Result, bool) {
	re, fresh, err := m.compile(pattern, opts, user)
	if err != nil {
		if fresh {
			m.warn("invalid trigger pattern, trigger will not match", "pattern", pattern, "error", err)
		}
		return Result{}, false
	}

	match, err := re.FindStringMatch(text)
	if err != nil {
		if isTimeout(err) {
			m.warn("trigger pattern timed out", "pattern", pattern, "timeout", m.timeout)
		}
		return Result{}, false
	}
	if match == nil {
		return Result{}, false
	}

	start, end := runeSpanToBytes(text, match.Index, match.Length)
	r := Result{Start: start, End: end, HasSpan: true}
	if user {
		r.Groups = groups(match)
	}
	return r, true
}

func groups(match *regexp2.Match) map[string]string {
	gs := match.Groups()
	out := make(map[string]string, len(gs))
	for i, g := range gs {
		if len(g.Captures) == 0 {
			continue
		}
		out[strconv.Itoa(i)] = g.String()
		if g.Name != "" {
			out[g.Name] = g.String()
		}
	}
	return out
}

func isTimeout(err error) bool {
	// regexp2 does not export a timeout error type.
	return err != nil && strings.Contains(err.Error(), "match timeout")
}

func (m *Matcher) warn(msg string, args ...any) {
	if !m.limiter.Allow() {
		return
	}
	m.logger.Warn(msg, args...)
}

// runeSpanToBytes converts a rune index and length, as reported by regexp2,
// into byte offsets of s.
func runeSpanToBytes(s string, runeIndex, runeLen int) (start, end int) {
	start, end = -1, -1
	n := 0
	for i := range s {
		if n == runeIndex {
			start = i
		}
		if n == runeIndex+runeLen {
			end = i
			break
		}
		n++
	}
	if start < 0 {
		start = len(s)
	}
	if end < 0 {
		end = len(s)
	}
	return start, end
}
