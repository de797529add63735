// Package richtext models the tree-shaped styled text that game clients use
// for chat lines.
//
// A line is a [Node]: a [*Literal] span of text, a [*Template] that renders a
// translation key with positional arguments, or a [*Composite] that only
// groups siblings under a shared style. Nodes are treated as immutable values;
// code that needs a different tree builds a new one.
package richtext

// Node is one of *Literal, *Template or *Composite.
type Node interface {
	node()
}

// Literal is a flat run of text. The text may contain legacy inline
// formatting codes (see [FormatMarker]).
type Literal struct {
	Text     string
	Style    Style
	Siblings []Node
}

// Template is a translatable node: Key selects a format string which is
// rendered with Args substituted for its %s placeholders.
type Template struct {
	Key string
	// Fallback is used as the format when Key has no known translation.
	Fallback string
	Args     []Arg
	Style    Style
	Siblings []Node
}

// Composite carries a style and children but no text of its own.
type Composite struct {
	Style    Style
	Siblings []Node
}

// Arg is a positional template argument. When Node is nil the argument is
// the plain string Text.
type Arg struct {
	Text string
	Node Node
}

func (*Literal) node()   {}
func (*Template) node()  {}
func (*Composite) node() {}

// Text returns a literal node without style.
func Text(s string) *Literal {
	return &Literal{Text: s}
}

// Styled returns a literal node with the given style.
func Styled(s string, style Style) *Literal {
	return &Literal{Text: s, Style: style}
}

// Group returns a composite node holding children.
func Group(style Style, children ...Node) *Composite {
	return &Composite{Style: style, Siblings: children}
}

// StringArg returns a plain string template argument.
func StringArg(s string) Arg {
	return Arg{Text: s}
}

// NodeArg returns a template argument holding a nested node.
func NodeArg(n Node) Arg {
	return Arg{Node: n}
}

// StyleOf returns the node's own style.
func StyleOf(n Node) Style {
	switch n := n.(type) {
	case *Literal:
		return n.Style
	case *Template:
		return n.Style
	case *Composite:
		return n.Style
	}
	return Style{}
}

// SiblingsOf returns the node's children.
func SiblingsOf(n Node) []Node {
	switch n := n.(type) {
	case *Literal:
		return n.Siblings
	case *Template:
		return n.Siblings
	case *Composite:
		return n.Siblings
	}
	return nil
}

// WithStyle returns a shallow copy of n whose own style is s.
func WithStyle(n Node, s Style) Node {
	switch n := n.(type) {
	case *Literal:
		c := *n
		c.Style = s
		return &c
	case *Template:
		c := *n
		c.Style = s
		return &c
	case *Composite:
		c := *n
		c.Style = s
		return &c
	}
	return n
}

// EventKey returns the translation key of a template root, or "" for any
// other node kind.
func EventKey(n Node) string {
	if t, ok := n.(*Template); ok {
		return t.Key
	}
	return ""
}
