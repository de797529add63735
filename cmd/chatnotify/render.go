package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

// renderANSI renders a chat line for the terminal. Structural styles and
// legacy codes both become ANSI attributes; the visible text is exactly
// richtext.Plain with the codes removed. Without a color terminal lipgloss
// emits the bare text.
func renderANSI(n richtext.Node) string {
	var sb strings.Builder
	renderNode(&sb, n, richtext.Style{})
	return sb.String()
}

func renderNode(sb *strings.Builder, n richtext.Node, parent richtext.Style) {
	if n == nil {
		return
	}
	style := richtext.StyleOf(n).Inherit(parent)
	switch n := n.(type) {
	case *richtext.Literal:
		renderText(sb, n.Text, style)
	case *richtext.Template:
		for _, p := range richtext.ParseFormat(richtext.FormatOf(n)) {
			if p.Arg < 0 {
				renderText(sb, p.Text, style)
				continue
			}
			if p.Arg >= len(n.Args) {
				continue
			}
			if a := n.Args[p.Arg]; a.Node != nil {
				renderNode(sb, a.Node, style)
			} else {
				renderText(sb, a.Text, style)
			}
		}
	}
	for _, s := range richtext.SiblingsOf(n) {
		renderNode(sb, s, style)
	}
}

func renderText(sb *strings.Builder, text string, style richtext.Style) {
	for _, seg := range richtext.Segments(text) {
		if seg.Text == "" {
			continue
		}
		sb.WriteString(termStyle(seg.Style.Inherit(style)).Render(seg.Text))
	}
}

// termStyle maps a resolved style to its closest terminal rendering.
// Obfuscated text blinks instead of scrambling.
func termStyle(s richtext.Style) lipgloss.Style {
	ts := lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if s.Color != nil {
		ts = ts.Foreground(lipgloss.Color(s.Color.Hex()))
	}
	return ts.
		Bold(s.Bold == richtext.On).
		Italic(s.Italic == richtext.On).
		Underline(s.Underlined == richtext.On).
		Strikethrough(s.Strikethrough == richtext.On).
		Blink(s.Obfuscated == richtext.On)
}
