// Package restyle applies a notification's text style to the matched part of
// a rich text tree.
//
// Apply never modifies its input. Nodes that contain no match are reused in
// the output, every node on the path to a match is rebuilt.
package restyle

import (
	"unicode"
	"unicode/utf8"

	"github.com/chatnotify/chatnotify-go/internal/matcher"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

// Request describes what to restyle.
type Request struct {
	Matcher    *matcher.Matcher
	Trigger    config.Trigger
	AllowRegex bool
	Style      config.TextStyle
	// Whole restyles the root node's own style instead of searching for the
	// trigger. It is used for matches without a span, such as key triggers.
	Whole bool
	// Skip is the number of leading occurrences of the trigger, in tree
	// order, that are left unstyled.
	Skip int
}

// Apply returns n restyled per req. When the trigger cannot be located in a
// single text node, for example a regex anchored across a template, the root
// node's style is changed instead. An inactive style returns n itself.
func Apply(n richtext.Node, req Request) richtext.Node {
	if n == nil || !req.Style.IsActive() {
		return n
	}
	if !req.Whole {
		if out, changed := req.node(n); changed {
			return out
		}
	}
	return richtext.WithStyle(n, req.Style.Apply(richtext.StyleOf(n)))
}

func (req *Request) node(n richtext.Node) (richtext.Node, bool) {
	switch n := n.(type) {
	case *richtext.Template:
		return req.template(n)
	case *richtext.Composite:
		siblings, changed := req.siblings(n.Siblings)
		if !changed {
			return n, false
		}
		return &richtext.Composite{Style: n.Style, Siblings: siblings}, true
	case *richtext.Literal:
		if len(n.Siblings) == 0 {
			return req.literal(n)
		}
		// The text cannot be split without moving it behind the siblings, so
		// wrap it: the copy goes first and inherits the original style.
		wrapped := &richtext.Composite{
			Style:    n.Style,
			Siblings: append([]richtext.Node{richtext.Text(n.Text)}, n.Siblings...),
		}
		out, changed := req.node(wrapped)
		if !changed {
			return n, false
		}
		return out, true
	}
	return n, false
}

func (req *Request) template(t *richtext.Template) (richtext.Node, bool) {
	var args []richtext.Arg
	for i, a := range t.Args {
		var out richtext.Node
		var changed bool
		if a.Node != nil {
			out, changed = req.node(a.Node)
		} else {
			out, changed = req.literal(richtext.Text(a.Text))
		}
		if !changed {
			continue
		}
		if args == nil {
			args = append([]richtext.Arg(nil), t.Args...)
		}
		args[i] = richtext.NodeArg(out)
	}

	siblings, siblingsChanged := req.siblings(t.Siblings)
	if args == nil && !siblingsChanged {
		return t, false
	}

	c := *t
	if args != nil {
		c.Args = args
	}
	c.Siblings = siblings
	return &c, true
}

func (req *Request) siblings(ns []richtext.Node) ([]richtext.Node, bool) {
	var out []richtext.Node
	for i, s := range ns {
		r, changed := req.node(s)
		if !changed {
			continue
		}
		if out == nil {
			out = append([]richtext.Node(nil), ns...)
		}
		out[i] = r
	}
	if out == nil {
		return ns, false
	}
	return out, true
}

// literal splits a sibling-less literal into prefix, match and suffix. The
// split points never fall inside a legacy formatting sequence, and codes in
// effect at the end of the match are repeated at the start of the suffix.
func (req *Request) literal(l *richtext.Literal) (richtext.Node, bool) {
	text := l.Text
	from := 0
	for ; req.Skip > 0; req.Skip-- {
		res, ok := req.Matcher.Match(req.Trigger, req.AllowRegex, text[from:], "")
		if !ok || !res.HasSpan {
			return l, false
		}
		from += res.End
	}
	res, ok := req.Matcher.Match(req.Trigger, req.AllowRegex, text[from:], "")
	if !ok {
		return l, false
	}
	if !res.HasSpan {
		return richtext.WithStyle(l, req.Style.Apply(l.Style)), true
	}

	start, end := from+res.Start, from+res.End
	if richtext.HasFormatting(text) {
		start = richtext.SkipFormatting(text, alignStart(text, start))
		start = skipLeadingCodes(text, start, end)
		end = richtext.TrimDanglingMarker(text, end)
	}
	if start >= end {
		return l, false
	}

	prefix, mid, suffix := text[:start], text[start:end], text[end:]
	if suffix != "" {
		suffix = richtext.ActiveFormatting(text[:end]) + suffix
	}

	var children []richtext.Node
	if prefix != "" {
		children = append(children, richtext.Styled(prefix, l.Style))
	}
	children = append(children, richtext.Styled(mid, req.Style.Apply(l.Style)))
	if suffix != "" {
		children = append(children, richtext.Styled(suffix, l.Style))
	}
	if len(children) == 1 {
		return children[0], true
	}
	return richtext.Group(richtext.Style{}, children...), true
}

// alignStart moves i past the code character when it points into the middle
// of a legacy formatting sequence.
func alignStart(s string, i int) int {
	if j := richtext.TrimDanglingMarker(s, i); j != i && richtext.SkipFormatting(s, j) > i {
		return richtext.SkipFormatting(s, j)
	}
	return i
}

// skipLeadingCodes moves start past a single non-word character and the
// formatting codes that follow it, so codes between a leading bracket and
// the trigger stay outside the highlight.
func skipLeadingCodes(s string, start, end int) int {
	if start >= end {
		return start
	}
	r, size := utf8.DecodeRuneInString(s[start:])
	if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
		return start
	}
	if j := richtext.SkipFormatting(s, start+size); j > start+size && j < end {
		return j
	}
	return start
}
