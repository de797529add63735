package matcher

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
)

func TestMatch_LiteralBoundaries(t *testing.T) {
	m := New()
	tests := []struct {
		text    string
		trigger string
		want    string // matched span, "" for no match
	}{
		{"the cat sat", "cat", "cat"},
		{"category", "cat", ""},
		{"bobcat", "cat", ""},
		{"cat!", "cat", "cat!"},
		{"(cat)", "cat", "(cat)"},
		{"the (cat) sat", "cat", "(cat)"},
		{"THE CAT", "cat", "CAT"},
		{"cat", "CAT", "cat"},
		{"cat_food", "cat", ""},
		{"cats", "cat", ""},
		{"a big cat.", "big cat", "big cat."},
		{"((cat))", "cat", "(cat)"},
		{"§acat is here", "cat", "§acat"},
		{"hi §a§lcat", "cat", "§a§lcat"},
		{"cat§r done", "cat", "cat"},
		{"x§acat", "cat", ""},
		{"1+1=2 ok", "1+1", "1+1"},
		{"price: $5 (each)", "$5", " $5 "},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.trigger, func(t *testing.T) {
			r, ok := m.Match(config.Literal(tt.trigger), false, tt.text, "")
			if tt.want == "" {
				assert.False(t, ok, "unexpected match %q", spanOf(tt.text, r))
				return
			}
			require.True(t, ok)
			require.True(t, r.HasSpan)
			assert.Equal(t, tt.want, tt.text[r.Start:r.End])
		})
	}
}

func TestMatch_LiteralUnicode(t *testing.T) {
	m := New()

	r, ok := m.Match(config.Literal("ねこ"), false, "かわいいねこ", "")
	assert.False(t, ok, "preceded by a Unicode letter")

	r, ok = m.Match(config.Literal("ねこ"), false, "これは ねこ です", "")
	require.True(t, ok)
	assert.Equal(t, "ねこ", "これは ねこ です"[r.Start:r.End])

	r, ok = m.Match(config.Literal("ÉCOLE"), false, "à l'école!", "")
	require.True(t, ok)
	assert.Equal(t, "école!", "à l'école!"[r.Start:r.End])

	_, ok = m.Match(config.Literal("cole"), false, "école", "")
	assert.False(t, ok)
}

func TestMatch_Key(t *testing.T) {
	m := New()

	_, ok := m.Match(config.Key("."), false, "anything", "")
	assert.True(t, ok, "wildcard")

	r, ok := m.Match(config.Key("chat.type"), false, "hello", "chat.type.text")
	assert.True(t, ok)
	assert.False(t, r.HasSpan)

	_, ok = m.Match(config.Key("death"), false, "death", "chat.type.text")
	assert.False(t, ok, "keys never look at the text")

	_, ok = m.Match(config.Key("text"), false, "hello", "")
	assert.False(t, ok)
}

func TestMatch_Regex(t *testing.T) {
	m := New()
	tr := config.Regex(`(?<item>\w+) for (\d+)`)

	r, ok := m.Match(tr, true, "selling apple for 20 now", "")
	require.True(t, ok)
	assert.Equal(t, "apple for 20", "selling apple for 20 now"[r.Start:r.End])
	assert.Equal(t, "apple", r.Groups["item"])
	assert.Equal(t, "apple for 20", r.Groups["0"])
	assert.Equal(t, "20", r.Groups["1"])

	_, ok = m.Match(tr, false, "selling apple for 20 now", "")
	assert.False(t, ok, "without allowRegex the pattern is a literal")

	r, ok = m.Match(config.Regex("a.c"), false, "x a.c y", "")
	require.True(t, ok)
	assert.Nil(t, r.Groups)
}

func TestMatch_RegexIsCaseSensitive(t *testing.T) {
	m := New()
	_, ok := m.Match(config.Regex("Hello"), true, "hello", "")
	assert.False(t, ok)
	_, ok = m.Match(config.Regex("(?i)Hello"), true, "hello", "")
	assert.True(t, ok)
}

func TestMatch_InvalidRegexWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	m := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	tr := config.Regex("(unclosed")

	for i := 0; i < 3; i++ {
		_, ok := m.Match(tr, true, "(unclosed", "")
		assert.False(t, ok)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "invalid trigger pattern"))
	assert.Equal(t, 1, m.cache.Len())
}

func TestMatch_RegexTooLong(t *testing.T) {
	m := New()
	_, ok := m.Match(config.Regex(strings.Repeat("a", MaxPatternLength+1)), true, strings.Repeat("a", MaxPatternLength+1), "")
	assert.False(t, ok)
}

func TestMatch_DisabledAndBlank(t *testing.T) {
	m := New()
	off := config.Literal("cat")
	off.Enabled = false
	_, ok := m.Match(off, false, "cat", "")
	assert.False(t, ok)

	_, ok = m.Match(config.Literal("  "), false, "a  b", "")
	assert.False(t, ok)
}

func TestMatchAny(t *testing.T) {
	m := New()
	ts := []config.Trigger{config.Literal("dog"), config.Literal("cat"), config.Literal("the")}

	tr, r, ok := m.MatchAny(ts, false, "the cat", "")
	require.True(t, ok)
	assert.Equal(t, "cat", tr.String, "first trigger in order, not first in text")
	assert.Equal(t, 4, r.Start)

	_, _, ok = m.MatchAny(ts, false, "bird", "")
	assert.False(t, ok)
}

func TestRuneSpanToBytes(t *testing.T) {
	s := "§ab ねこ"
	tests := []struct {
		idx, n     int
		start, end int
	}{
		{0, 2, 0, 3},
		{2, 1, 3, 4},
		{4, 2, 5, 11},
		{6, 0, 11, 11},
	}
	for _, tt := range tests {
		start, end := runeSpanToBytes(s, tt.idx, tt.n)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}

func TestPatternCache_LRU(t *testing.T) {
	m := New(WithCacheSize(2))
	for _, s := range []string{"a", "b", "a", "c"} {
		m.Match(config.Literal(s), false, "a b c", "")
	}
	assert.Equal(t, 2, m.cache.Len())

	// "b" was least recently used and must be recompiled.
	_, fresh, err := m.compile(LiteralPattern("b"), regexp2.IgnoreCase, false)
	require.NoError(t, err)
	assert.True(t, fresh)
	_, fresh, _ = m.compile(LiteralPattern("c"), regexp2.IgnoreCase, false)
	assert.False(t, fresh)
}

func spanOf(text string, r Result) string {
	if !r.HasSpan {
		return ""
	}
	return text[r.Start:r.End]
}

func FuzzMatchLiteral(f *testing.F) {
	f.Add("the cat sat", "cat")
	f.Add("§acat", "cat")
	f.Add("ねこ", "ね")
	f.Add("\xff\xfe cat", "cat")
	f.Add("a(b)c", "(b)")

	m := New()
	f.Fuzz(func(t *testing.T, text, trigger string) {
		r, ok := m.Match(config.Literal(trigger), false, text, "")
		if !ok {
			return
		}
		if r.Start < 0 || r.End > len(text) || r.Start > r.End {
			t.Fatalf("span [%d,%d) out of range for %q", r.Start, r.End, text)
		}
	})
}
