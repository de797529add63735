package config

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// TriggerKind selects how a trigger string is matched.
type TriggerKind string

const (
	// KindLiteral matches a word or phrase case-insensitively on word
	// boundaries.
	KindLiteral TriggerKind = "literal"
	// KindKey matches a substring of the message's event key.
	KindKey TriggerKind = "key"
	// KindRegex matches a regular expression. Honored only when the
	// notification allows regex; otherwise the string is a literal.
	KindRegex TriggerKind = "regex"
)

// Wildcard is the key trigger that matches every message.
const Wildcard = "."

// Trigger is one matchable subject inside a notification.
type Trigger struct {
	Kind    TriggerKind `json:"kind" yaml:"kind"`
	String  string      `json:"string" yaml:"string"`
	Enabled bool        `json:"enabled" yaml:"enabled"`
}

// NewTrigger returns an enabled trigger. Key strings are lower-cased.
func NewTrigger(kind TriggerKind, s string) Trigger {
	t := Trigger{Kind: kind, Enabled: true}
	t.SetString(s)
	return t
}

// Literal is shorthand for NewTrigger(KindLiteral, s).
func Literal(s string) Trigger { return NewTrigger(KindLiteral, s) }

// Key is shorthand for NewTrigger(KindKey, s).
func Key(s string) Trigger { return NewTrigger(KindKey, s) }

// Regex is shorthand for NewTrigger(KindRegex, s).
func Regex(s string) Trigger { return NewTrigger(KindRegex, s) }

// SetString assigns the trigger string, lower-casing key triggers.
func (t *Trigger) SetString(s string) {
	if t.Kind == KindKey {
		s = strings.ToLower(s)
	}
	t.String = s
}

// IsBlank reports whether the trigger string is empty or whitespace.
func (t Trigger) IsBlank() bool {
	return strings.TrimSpace(t.String) == ""
}

// IsCatchAll reports whether the trigger matches every message.
func (t Trigger) IsCatchAll() bool {
	return t.Kind == KindKey && t.String == Wildcard
}

// UnmarshalJSON defaults Enabled to true and Kind to literal.
func (t *Trigger) UnmarshalJSON(b []byte) error {
	type plain Trigger
	v := plain{Kind: KindLiteral, Enabled: true}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = Trigger(v)
	return nil
}

// UnmarshalYAML defaults Enabled to true and Kind to literal. A bare scalar
// is read as a literal trigger string.
func (t *Trigger) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = Literal(node.Value)
		return nil
	}
	type plain Trigger
	v := plain{Kind: KindLiteral, Enabled: true}
	if err := node.Decode(&v); err != nil {
		return err
	}
	*t = Trigger(v)
	return nil
}

// ResponseMessage is text sent automatically after a notification fires.
type ResponseMessage struct {
	Text string `json:"text" yaml:"text"`
	// Regex enables $1 / ${name} substitution from the triggering match.
	Regex bool `json:"regex" yaml:"regex"`
	// Delay is the number of ticks to wait before sending.
	Delay int `json:"delay" yaml:"delay"`
}

// Resolve returns the string to send. $N and ${name} are replaced by the
// capture group of that number or name; a reference to a missing group and
// any other use of $ are kept as written. Groups are substituted once, here;
// the result is never re-evaluated.
func (r ResponseMessage) Resolve(groups map[string]string) string {
	if !r.Regex || len(groups) == 0 {
		return r.Text
	}

	var sb strings.Builder
	s := r.Text
	for {
		i := strings.IndexByte(s, '$')
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		s = s[i:]

		name, n := groupRef(s)
		if n == 0 {
			sb.WriteByte('$')
			s = s[1:]
			continue
		}
		if v, ok := groups[name]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(s[:n])
		}
		s = s[n:]
	}
}

// groupRef parses the group reference at the start of s, which begins with
// '$'. It returns the group name and the length of the reference, or 0 when
// s does not start with one.
func groupRef(s string) (string, int) {
	if strings.HasPrefix(s, "${") {
		end := strings.IndexByte(s, '}')
		if end < 0 || !isGroupName(s[2:end]) {
			return "", 0
		}
		return s[2:end], end + 1
	}

	n := 1
	if n < len(s) && isDigit(s[n]) {
		for n < len(s) && isDigit(s[n]) {
			n++
		}
	} else {
		for n < len(s) && isNameByte(s[n]) {
			n++
		}
	}
	if n == 1 {
		return "", 0
	}
	return s[1:n], n
}

func isGroupName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isNameByte(c byte) bool {
	return c == '_' || isDigit(c) || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// Notification is a user-configured trigger-to-effect rule.
type Notification struct {
	ID               string            `json:"id" yaml:"id"`
	Enabled          bool              `json:"enabled" yaml:"enabled"`
	AllowRegex       bool              `json:"allow_regex" yaml:"allow_regex"`
	ExclusionEnabled bool              `json:"exclusion_enabled" yaml:"exclusion_enabled"`
	ResponseEnabled  bool              `json:"response_enabled" yaml:"response_enabled"`
	Sound            Sound             `json:"sound" yaml:"sound"`
	Style            TextStyle         `json:"style" yaml:"style"`
	Triggers         []Trigger         `json:"triggers" yaml:"triggers"`
	Exclusions       []Trigger         `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
	Responses        []ResponseMessage `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// NewNotification returns an enabled notification with the default sound
// and color highlight for the given triggers.
func NewNotification(triggers ...Trigger) Notification {
	return Notification{
		Enabled:  true,
		Sound:    DefaultSound(),
		Style:    TextStyle{ColorEnabled: true, Color: DefaultColor},
		Triggers: triggers,
	}
}

// HasEffect reports whether firing the notification is observable.
func (n *Notification) HasEffect() bool {
	return n.Sound.Enabled || n.Style.IsActive()
}

// SetEnabled enables or disables the notification. Enabling a notification
// with no observable effect is refused.
func (n *Notification) SetEnabled(enabled bool) bool {
	if enabled && !n.HasEffect() {
		return false
	}
	n.Enabled = enabled
	return true
}

// AddTrigger appends t to the trigger list.
func (n *Notification) AddTrigger(t Trigger) {
	n.Triggers = append(n.Triggers, t)
}

// RemoveTrigger removes the trigger at i, keeping at least one trigger.
func (n *Notification) RemoveTrigger(i int) bool {
	if i < 0 || i >= len(n.Triggers) || len(n.Triggers) <= 1 {
		return false
	}
	n.Triggers = append(n.Triggers[:i], n.Triggers[i+1:]...)
	return true
}

// IsCatchAll reports whether any enabled trigger matches every message.
func (n *Notification) IsCatchAll() bool {
	for _, t := range n.Triggers {
		if t.Enabled && t.IsCatchAll() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (n *Notification) Clone() Notification {
	c := *n
	c.Triggers = append([]Trigger(nil), n.Triggers...)
	c.Exclusions = append([]Trigger(nil), n.Exclusions...)
	c.Responses = append([]ResponseMessage(nil), n.Responses...)
	return c
}

// UnmarshalJSON defaults Enabled to true and Sound to the default sound.
func (n *Notification) UnmarshalJSON(b []byte) error {
	type plain Notification
	v := plain{Enabled: true, Sound: DefaultSound()}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Notification(v)
	return nil
}

// UnmarshalYAML defaults Enabled to true and Sound to the default sound.
func (n *Notification) UnmarshalYAML(node *yaml.Node) error {
	type plain Notification
	v := plain{Enabled: true, Sound: DefaultSound()}
	if err := node.Decode(&v); err != nil {
		return err
	}
	*n = Notification(v)
	return nil
}
