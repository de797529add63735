package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
)

// Validate normalizes the config in place so that it satisfies every rule
// set invariant:
//   - the username notification exists and has a non-blank trigger
//     (profileName, or DefaultProfileName, is used when it has none)
//   - prefixes are trimmed, de-duplicated and sorted longest first
//   - blank triggers, exclusions and responses are removed
//   - notifications left without triggers and without exclusions or
//     responses are dropped
//   - notifications without sound or style are disabled
//   - catch-all notifications are moved behind all others
//
// Problems that were repaired are returned joined into one error. A non-nil
// result never means the config is unusable.
func (c *Config) Validate(profileName string) error {
	var issues []error

	if c.Version == 0 {
		c.Version = SupportedVersion
	}
	if !c.DetectionMode.valid() {
		if c.DetectionMode != "" {
			issues = append(issues, &ValidationError{
				Field:   "detection_mode",
				Message: fmt.Sprintf("unknown mode %q, using %q", c.DetectionMode, DetectTimed),
			})
		}
		c.DetectionMode = DetectTimed
	}
	c.Prefixes = normalizePrefixes(c.Prefixes)

	if len(c.Notifications) == 0 {
		c.Notifications = []Notification{usernameNotification(profileName)}
	}

	seen := make(map[string]int, len(c.Notifications))
	kept := make([]Notification, 0, len(c.Notifications))
	for i := range c.Notifications {
		n := c.Notifications[i].Clone()
		issues = append(issues, validateNotification(i, &n, seen)...)

		if len(n.Triggers) == 0 {
			if i == UsernameIndex {
				n.Triggers = []Trigger{Literal(usernameTrigger(profileName))}
			} else if len(n.Exclusions) == 0 && len(n.Responses) == 0 {
				issues = append(issues, &RuleError{
					Index:   i,
					ID:      n.ID,
					Field:   "triggers",
					Message: "no usable trigger, notification dropped",
				})
				continue
			} else {
				n.Triggers = []Trigger{Literal("")}
				n.Enabled = false
			}
		}

		if n.Enabled && !n.HasEffect() {
			n.Enabled = false
		}
		kept = append(kept, n)
	}

	// Catch-all notifications would pre-empt every rule behind them.
	rest := kept[1:]
	sort.SliceStable(rest, func(a, b int) bool {
		return !rest[a].IsCatchAll() && rest[b].IsCatchAll()
	})
	c.Notifications = kept

	return errors.Join(issues...)
}

func validateNotification(i int, n *Notification, seen map[string]int) []error {
	var issues []error
	ruleErr := func(field, msg string, cause error) {
		issues = append(issues, &RuleError{Index: i, ID: n.ID, Field: field, Message: msg, Cause: cause})
	}

	n.ID = strings.TrimSpace(n.ID)
	if n.ID == "" {
		n.ID = uuid.NewString()
	} else if prev, dup := seen[n.ID]; dup {
		ruleErr("id", fmt.Sprintf("duplicate id (previously used by notification[%d]), replaced", prev), nil)
		n.ID = uuid.NewString()
	}
	seen[n.ID] = i

	n.Triggers = cleanTriggers(n.Triggers)
	n.Exclusions = cleanTriggers(n.Exclusions)
	for j := range n.Triggers {
		if msg := fixKind(&n.Triggers[j]); msg != "" {
			ruleErr(fmt.Sprintf("triggers[%d]", j), msg, nil)
		}
	}
	for j := range n.Exclusions {
		if msg := fixKind(&n.Exclusions[j]); msg != "" {
			ruleErr(fmt.Sprintf("exclusions[%d]", j), msg, nil)
		}
	}
	if n.AllowRegex {
		for j, t := range n.Triggers {
			if err := checkRegex(t); err != nil {
				ruleErr(fmt.Sprintf("triggers[%d]", j), "invalid regular expression, trigger will not match", err)
			}
		}
		for j, t := range n.Exclusions {
			if err := checkRegex(t); err != nil {
				ruleErr(fmt.Sprintf("exclusions[%d]", j), "invalid regular expression, exclusion will not match", err)
			}
		}
	}

	if id, err := NormalizeSoundID(n.Sound.ID); err != nil {
		ruleErr("sound.id", fmt.Sprintf("%v, using %s", err, DefaultSoundID), err)
		n.Sound.ID = DefaultSoundID
	} else {
		n.Sound.ID = id
	}
	if n.Sound.Volume < MinVolume || n.Sound.Volume > MaxVolume {
		ruleErr("sound.volume", fmt.Sprintf("%v out of range, using 1", n.Sound.Volume), nil)
		n.Sound.Volume = 1
	}
	if n.Sound.Pitch < MinPitch || n.Sound.Pitch > MaxPitch {
		ruleErr("sound.pitch", fmt.Sprintf("%v out of range, using 1", n.Sound.Pitch), nil)
		n.Sound.Pitch = 1
	}

	responses := n.Responses[:0]
	for _, r := range n.Responses {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		if r.Delay < 0 {
			r.Delay = 0
		}
		responses = append(responses, r)
	}
	n.Responses = responses

	return issues
}

func cleanTriggers(ts []Trigger) []Trigger {
	out := ts[:0]
	for _, t := range ts {
		if t.IsBlank() {
			continue
		}
		out = append(out, t)
	}
	return out
}

func fixKind(t *Trigger) string {
	switch t.Kind {
	case KindLiteral, KindRegex:
		return ""
	case KindKey:
		t.SetString(t.String)
		return ""
	case "":
		t.Kind = KindLiteral
		return ""
	}
	msg := fmt.Sprintf("unknown kind %q, using %q", t.Kind, KindLiteral)
	t.Kind = KindLiteral
	return msg
}

func checkRegex(t Trigger) error {
	if t.Kind != KindRegex {
		return nil
	}
	_, err := regexp2.Compile(t.String, regexp2.None)
	return err
}

// normalizePrefixes trims, lower-cases and de-duplicates prefixes and sorts
// them longest first so the most specific prefix is tried first.
func normalizePrefixes(prefixes []string) []string {
	seen := make(map[string]struct{}, len(prefixes))
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return len(out[a]) > len(out[b])
	})
	return out
}
