// Package echo remembers recently sent chat text so that the server's
// reflection of a message can be told apart from a line sent by someone else.
//
// A Cache is not safe for concurrent use; the engine serializes access.
package echo

import (
	"strings"
	"time"
)

const (
	// DefaultWindow is how long a sent message is remembered in timed mode.
	DefaultWindow = 5 * time.Second

	// MaxEntries bounds the cache. When full, the oldest entry is dropped.
	MaxEntries = 32
)

type entry struct {
	seq     uint64
	expires time.Time
	text    string
}

// Candidate is a possible self-echo found by Lookup.
type Candidate struct {
	// Offset is the byte offset of the last occurrence of Text in the line.
	Offset int
	// Text is the remembered, lower-cased message.
	Text string

	seq uint64
}

// Cache holds recently sent messages, oldest first.
type Cache struct {
	window  time.Duration
	untimed bool
	now     func() time.Time
	entries []entry
	nextSeq uint64
}

// New returns an empty cache. A window <= 0 selects DefaultWindow and a nil
// clock selects time.Now.
func New(window time.Duration, now func() time.Time) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{window: window, now: now}
}

// SetUntimed switches between timed expiry and capacity-only eviction.
func (c *Cache) SetUntimed(untimed bool) {
	c.untimed = untimed
}

// Record remembers an outbound message. The text is lower-cased; commands
// get a leading "/" when missing. The first of prefixes found at the start of
// the text is removed (prefixes are expected longest first) and the
// remainder trimmed. Messages that end up empty are not stored.
func (c *Cache) Record(text string, isCommand bool, prefixes []string) {
	c.Prune()

	text = strings.ToLower(strings.TrimSpace(text))
	if isCommand && !strings.HasPrefix(text, "/") {
		text = "/" + text
	}
	for _, p := range prefixes {
		p = strings.ToLower(p)
		if p != "" && strings.HasPrefix(text, p) {
			text = strings.TrimSpace(text[len(p):])
			break
		}
	}
	if text == "" || text == "/" {
		return
	}

	if len(c.entries) >= MaxEntries {
		c.entries = append(c.entries[:0], c.entries[len(c.entries)-MaxEntries+1:]...)
	}
	c.nextSeq++
	c.entries = append(c.entries, entry{
		seq:     c.nextSeq,
		expires: c.now().Add(c.window),
		text:    text,
	})
}

// Lookup returns the oldest remembered message that occurs in lowerLine at a
// non-zero offset. A message found only at offset 0 cannot have a sender
// name in front of it and is skipped. Lookup never removes the entry; call
// Consume once the match is confirmed.
func (c *Cache) Lookup(lowerLine string) (Candidate, bool) {
	c.Prune()
	for _, e := range c.entries {
		if i := strings.LastIndex(lowerLine, e.text); i > 0 {
			return Candidate{Offset: i, Text: e.text, seq: e.seq}, true
		}
	}
	return Candidate{}, false
}

// Consume removes the entry behind cand. It reports false when the entry is
// already gone.
func (c *Cache) Consume(cand Candidate) bool {
	for i, e := range c.entries {
		if e.seq == cand.seq {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Prune drops expired entries. It is a no-op in untimed mode.
func (c *Cache) Prune() {
	if c.untimed || len(c.entries) == 0 {
		return
	}
	now := c.now()
	kept := c.entries[:0]
	for _, e := range c.entries {
		if now.Before(e.expires) {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// Len returns the number of remembered messages.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Reset forgets everything.
func (c *Cache) Reset() {
	c.entries = c.entries[:0]
}
