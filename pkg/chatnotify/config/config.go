// Package config holds the notification rule set: the ordered list of
// notifications, the message prefixes stripped before echo matching, and the
// global flags. It also loads, validates and saves rule files.
//
// Example JSON file:
//
//	{
//	  "version": 1,
//	  "ignore_own_messages": true,
//	  "detection_mode": "timed",
//	  "prefixes": ["/shout", "/me"],
//	  "notifications": [
//	    {"triggers": [{"string": "Steve"}]},
//	    {"triggers": [{"kind": "literal", "string": "diamond"}],
//	     "style": {"color_enabled": true, "color": "#55ffff", "bold": "on"}}
//	  ]
//	}
package config

import "strings"

// SupportedVersion is the currently supported config file format version.
const SupportedVersion = 1

// UsernameIndex is the position of the username notification.
const UsernameIndex = 0

// DetectionMode controls how long outbound messages are remembered for
// self-echo detection.
type DetectionMode string

const (
	// DetectTimed forgets outbound messages after the echo window.
	DetectTimed DetectionMode = "timed"
	// DetectUntimed keeps outbound messages until they are matched, bounded
	// only by the cache capacity. Useful on servers with high latency.
	DetectUntimed DetectionMode = "untimed"
)

// Config is the complete rule set.
type Config struct {
	Version           int            `json:"version" yaml:"version"`
	IgnoreOwnMessages bool           `json:"ignore_own_messages" yaml:"ignore_own_messages"`
	DetectionMode     DetectionMode  `json:"detection_mode" yaml:"detection_mode"`
	Prefixes          []string       `json:"prefixes" yaml:"prefixes"`
	Notifications     []Notification `json:"notifications" yaml:"notifications"`
}

// DefaultPrefixes are the message modifiers recognised out of the box.
var DefaultPrefixes = []string{"/shout", "/me", "!"}

// Default returns a config holding only the username notification for
// profileName.
func Default(profileName string) *Config {
	c := &Config{
		Version:       SupportedVersion,
		DetectionMode: DetectTimed,
		Prefixes:      append([]string(nil), DefaultPrefixes...),
		Notifications: []Notification{usernameNotification(profileName)},
	}
	_ = c.Validate(profileName)
	return c
}

func usernameNotification(profileName string) Notification {
	return NewNotification(Literal(usernameTrigger(profileName)))
}

func usernameTrigger(profileName string) string {
	if strings.TrimSpace(profileName) == "" {
		return DefaultProfileName
	}
	return profileName
}

// DefaultProfileName seeds the username notification when no profile name
// is known.
const DefaultProfileName = "Player"

// Username returns the username notification.
func (c *Config) Username() *Notification {
	if len(c.Notifications) == 0 {
		return nil
	}
	return &c.Notifications[UsernameIndex]
}

// AddNotification appends n and returns its index.
func (c *Config) AddNotification(n Notification) int {
	c.Notifications = append(c.Notifications, n)
	return len(c.Notifications) - 1
}

// RemoveNotification deletes the notification at i. The username
// notification cannot be removed.
func (c *Config) RemoveNotification(i int) bool {
	if i == UsernameIndex || i < 0 || i >= len(c.Notifications) {
		return false
	}
	c.Notifications = append(c.Notifications[:i], c.Notifications[i+1:]...)
	return true
}

// MoveNotification moves the notification at from to position to. The
// username notification stays at index 0.
func (c *Config) MoveNotification(from, to int) bool {
	n := len(c.Notifications)
	if from == UsernameIndex || to == UsernameIndex || from < 0 || to < 0 || from >= n || to >= n {
		return false
	}
	if from == to {
		return true
	}
	moved := c.Notifications[from]
	c.Notifications = append(c.Notifications[:from], c.Notifications[from+1:]...)
	c.Notifications = append(c.Notifications[:to], append([]Notification{moved}, c.Notifications[to:]...)...)
	return true
}

// Find returns the index of the notification with the given ID, or -1.
func (c *Config) Find(id string) int {
	for i := range c.Notifications {
		if c.Notifications[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Prefixes = append([]string(nil), c.Prefixes...)
	out.Notifications = make([]Notification, len(c.Notifications))
	for i := range c.Notifications {
		out.Notifications[i] = c.Notifications[i].Clone()
	}
	return &out
}

func (m DetectionMode) valid() bool {
	return m == DetectTimed || m == DetectUntimed
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values are
// kept and replaced by Validate.
func (m *DetectionMode) UnmarshalText(b []byte) error {
	*m = DetectionMode(strings.ToLower(strings.TrimSpace(string(b))))
	return nil
}
