package chatnotify

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/chatnotify/chatnotify-go/internal/echo"
	"github.com/chatnotify/chatnotify-go/internal/matcher"
)

// Option configures an Engine using the functional options pattern.
type Option func(*engineConfig)

// engineConfig holds internal configuration for the engine.
type engineConfig struct {
	logger       *slog.Logger
	now          func() time.Time
	echoWindow   time.Duration
	sound        SoundPlayer
	sender       Sender
	profileName  string
	regexTimeout time.Duration
}

// defaultEngineConfig returns an engineConfig with sensible defaults.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		now:          time.Now,
		echoWindow:   echo.DefaultWindow,
		regexTimeout: matcher.DefaultTimeout,
	}
}

// applyOptions applies functional options to an engineConfig.
func applyOptions(opts []Option) *engineConfig {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option values.
func (c *engineConfig) validate() error {
	if c.echoWindow <= 0 {
		return fmt.Errorf("echo window must be positive, got %v", c.echoWindow)
	}
	if c.regexTimeout <= 0 {
		return fmt.Errorf("regex timeout must be positive, got %v", c.regexTimeout)
	}
	return nil
}

// WithLogger sets a logger for debug output and configuration warnings.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithClock sets the time source used to expire remembered outbound
// messages. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEchoWindow sets how long outbound messages are remembered for self
// echo detection in timed mode. Default: 5 seconds.
func WithEchoWindow(d time.Duration) Option {
	return func(c *engineConfig) {
		c.echoWindow = d
	}
}

// WithSoundPlayer sets the collaborator that plays notification sounds.
// Without one, sounds are skipped.
func WithSoundPlayer(p SoundPlayer) Option {
	return func(c *engineConfig) {
		c.sound = p
	}
}

// WithSender sets the collaborator that sends automatic replies. Without
// one, replies are not scheduled.
func WithSender(s Sender) Option {
	return func(c *engineConfig) {
		c.sender = s
	}
}

// WithProfileName sets the player name used to seed the username
// notification when it has no usable trigger.
func WithProfileName(name string) Option {
	return func(c *engineConfig) {
		c.profileName = name
	}
}

// WithRegexTimeout bounds a single regex evaluation. A trigger that times
// out does not match. Default: 5ms.
func WithRegexTimeout(d time.Duration) Option {
	return func(c *engineConfig) {
		c.regexTimeout = d
	}
}
