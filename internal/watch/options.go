package watch

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxReplayLastN is the default maximum lines for ReplayLastN mode.
const DefaultMaxReplayLastN = 10000

// ReplayMode specifies how to handle existing log lines.
type ReplayMode int

const (
	// ReplayNone only watches for new lines (default, tail -f behavior).
	ReplayNone ReplayMode = iota
	// ReplayFromStart reads from the beginning of the file.
	ReplayFromStart
	// ReplayLastN reads the last N lines before tailing.
	ReplayLastN
)

// ReplayConfig configures replay behavior.
type ReplayConfig struct {
	Mode  ReplayMode
	LastN int // For ReplayLastN
}

// Option configures a Watcher.
type Option func(*watchConfig)

type watchConfig struct {
	logDir             string
	pollInterval       time.Duration
	replay             ReplayConfig
	maxReplayBytes     int
	maxReplayLineBytes int
	waitForLogs        bool
	logger             *slog.Logger
}

func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		pollInterval:       2 * time.Second,
		maxReplayBytes:     10 * 1024 * 1024, // 10MB default
		maxReplayLineBytes: 512 * 1024,       // 512KB default
	}
}

func applyOptions(opts []Option) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *watchConfig) validate() error {
	if c.replay.Mode == ReplayLastN {
		if c.replay.LastN < 0 {
			return fmt.Errorf("replay LastN must be non-negative, got %d", c.replay.LastN)
		}
		if c.replay.LastN > DefaultMaxReplayLastN {
			return fmt.Errorf("replay LastN (%d) exceeds maximum of %d", c.replay.LastN, DefaultMaxReplayLastN)
		}
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.maxReplayBytes < 0 {
		return fmt.Errorf("maxReplayBytes must be non-negative, got %d", c.maxReplayBytes)
	}
	if c.maxReplayLineBytes < 0 {
		return fmt.Errorf("maxReplayLineBytes must be non-negative, got %d", c.maxReplayLineBytes)
	}
	return nil
}

// WithLogDir sets the client log directory.
// If not set, CHATNOTIFY_LOGDIR and then the default locations are used.
func WithLogDir(dir string) Option {
	return func(c *watchConfig) {
		c.logDir = dir
	}
}

// WithPollInterval sets how often to check for a replaced log file.
// Default: 2 seconds.
func WithPollInterval(interval time.Duration) Option {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithWaitForLogs configures whether to wait for log files to appear.
// When false (default), ErrNoLogFiles is reported immediately.
func WithWaitForLogs(wait bool) Option {
	return func(c *watchConfig) {
		c.waitForLogs = wait
	}
}

// WithReplayFromStart reads from the beginning of the log file.
func WithReplayFromStart() Option {
	return func(c *watchConfig) {
		c.replay = ReplayConfig{Mode: ReplayFromStart}
	}
}

// WithReplayLastN reads the last N non-empty lines before tailing.
func WithReplayLastN(n int) Option {
	return func(c *watchConfig) {
		c.replay = ReplayConfig{Mode: ReplayLastN, LastN: n}
	}
}

// WithMaxReplayBytes sets the maximum total bytes to read during replay.
// Default is 10MB. Set to 0 for unlimited.
func WithMaxReplayBytes(max int) Option {
	return func(c *watchConfig) {
		c.maxReplayBytes = max
	}
}

// WithLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *watchConfig) {
		c.logger = logger
	}
}
