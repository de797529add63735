package richtext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

func TestPlain_Literal(t *testing.T) {
	n := &richtext.Literal{
		Text: "hello ",
		Siblings: []richtext.Node{
			richtext.Text("big "),
			richtext.Group(richtext.Style{}, richtext.Text("world")),
		},
	}
	assert.Equal(t, "hello big world", richtext.Plain(n))
}

func TestPlain_Template(t *testing.T) {
	n := &richtext.Template{
		Key: "chat.type.text",
		Args: []richtext.Arg{
			richtext.NodeArg(richtext.Text("Alice")),
			richtext.StringArg("hello world"),
		},
	}
	assert.Equal(t, "<Alice> hello world", richtext.Plain(n))
}

func TestPlain_TemplateFallback(t *testing.T) {
	n := &richtext.Template{
		Key:      "custom.greeting",
		Fallback: "%2$s, %1$s! 100%%",
		Args:     []richtext.Arg{richtext.StringArg("Bob"), richtext.StringArg("Hi")},
	}
	assert.Equal(t, "Hi, Bob! 100%", richtext.Plain(n))

	unknown := &richtext.Template{Key: "no.such.key"}
	assert.Equal(t, "no.such.key", richtext.Plain(unknown))
}

func TestPlain_MissingArgument(t *testing.T) {
	n := &richtext.Template{Key: "chat.type.text", Args: []richtext.Arg{richtext.StringArg("Alice")}}
	assert.Equal(t, "<Alice> ", richtext.Plain(n))
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "chat.type.text", richtext.EventKey(&richtext.Template{Key: "chat.type.text"}))
	assert.Equal(t, "", richtext.EventKey(richtext.Text("x")))
}

func TestWithStyle_DoesNotMutate(t *testing.T) {
	orig := richtext.Text("x")
	red := richtext.Style{}.WithColor(0xff0000)
	got := richtext.WithStyle(orig, red)

	assert.True(t, orig.Style.IsEmpty())
	require.NotNil(t, richtext.StyleOf(got).Color)
	assert.Equal(t, richtext.Color(0xff0000), *richtext.StyleOf(got).Color)
}

func TestStyle_Inherit(t *testing.T) {
	parent := richtext.Style{Bold: richtext.On, Insertion: "ins"}.WithColor(0x00ff00)
	child := richtext.Style{Bold: richtext.Off}
	got := child.Inherit(parent)

	assert.Equal(t, richtext.Off, got.Bold)
	assert.Equal(t, "ins", got.Insertion)
	require.NotNil(t, got.Color)
	assert.Equal(t, richtext.Color(0x00ff00), *got.Color)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    richtext.Color
		wantErr bool
	}{
		{in: "#ffaa00", want: 0xffaa00},
		{in: "FFAA00", want: 0xffaa00},
		{in: "gold", want: 0xffaa00},
		{in: "#fff", wantErr: true},
		{in: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := richtext.ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColor_TextRoundTrip(t *testing.T) {
	var c richtext.Color
	require.NoError(t, c.UnmarshalText([]byte("#12ab9f")))
	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#12ab9f", string(b))
}

func TestStripFormatting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"§ahi §lbob", "hi bob"},
		{"§Ahi", "hi"},
		{"50§", "50§"},
		{"§zkeep", "§zkeep"},
		{"§a§§bx", "§x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, richtext.StripFormatting(tt.in), "input %q", tt.in)
	}
}

func TestActiveFormatting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"§ahi ", "§a"},
		{"§ahi §l", "§a§l"},
		{"§l§ahi", "§a§l"},
		{"§a§l§r", ""},
		{"§a§c", "§c"},
		{"§l§l", "§l"},
		{"§z§a", "§a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, richtext.ActiveFormatting(tt.in), "input %q", tt.in)
	}
}

func TestSkipFormatting(t *testing.T) {
	s := "§a§lbob"
	assert.Equal(t, len("§a§l"), richtext.SkipFormatting(s, 0))
	assert.Equal(t, len("§a§l"), richtext.SkipFormatting(s, len("§a")))
	assert.Equal(t, len("§a§lb"), richtext.SkipFormatting(s, len("§a§lb")))
}

func TestTrimDanglingMarker(t *testing.T) {
	s := "bob§a"
	assert.Equal(t, len("bob"), richtext.TrimDanglingMarker(s, len("bob§")))
	assert.Equal(t, len("bob"), richtext.TrimDanglingMarker(s, len("bob")))
}

func TestSegments(t *testing.T) {
	segs := richtext.Segments("a§cred§lbold§rplain")
	require.Len(t, segs, 4)
	assert.Equal(t, "a", segs[0].Text)
	assert.True(t, segs[0].Style.IsEmpty())
	assert.Equal(t, "red", segs[1].Text)
	require.NotNil(t, segs[1].Style.Color)
	assert.Equal(t, richtext.Color(0xff5555), *segs[1].Style.Color)
	assert.Equal(t, "bold", segs[2].Text)
	assert.Equal(t, richtext.On, segs[2].Style.Bold)
	assert.NotNil(t, segs[2].Style.Color)
	assert.Equal(t, "plain", segs[3].Text)
	assert.True(t, segs[3].Style.IsEmpty())
}
