package scope

import (
	"fmt"
	"strings"

	"github.com/walteh/xtn/pkg/xtn"
)

// Kind classifies what occupies a queried line
type Kind int

const (
	// KindObject is a line inside an object body that is not a key line or comment
	KindObject Kind = iota
	// KindArray is a line inside an array body that is not a key line or comment
	KindArray
	// KindKeyLine is the line that opens an element
	KindKeyLine
	// KindEndLine is the close marker of a container or text block
	KindEndLine
	// KindComplexBody is a line inside a multi-line text block
	KindComplexBody
	// KindComment is a comment line between elements
	KindComment
)

var kindNames = [...]string{
	KindObject:      "object",
	KindArray:       "array",
	KindKeyLine:     "key-line",
	KindEndLine:     "end-line",
	KindComplexBody: "complex-body",
	KindComment:     "comment",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry is one level of the scope stack: a container and the child slot the
// queried line falls under.
type Entry struct {
	Container xtn.Element
	// Key is set for object members, Index for array elements (-1 otherwise).
	Key   string
	Index int
	// Element is nil when the line is past the container's last child.
	Element xtn.Element
}

// Context holds the result of a position query
type Context struct {
	Stack []Entry
	Kind  Kind
}

// Innermost returns the deepest entry of the stack.
func (c *Context) Innermost() Entry {
	return c.Stack[len(c.Stack)-1]
}

// Path renders the stack as a dotted key path, e.g. `server.ports[1]`.
func (c *Context) Path() string {
	var b strings.Builder
	for _, e := range c.Stack {
		if e.Element == nil {
			break
		}
		if _, ok := e.Container.(*xtn.Array); ok {
			fmt.Fprintf(&b, "[%d]", e.Index)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(e.Key)
	}
	return b.String()
}

// Locate walks root down to the innermost scope enclosing the 0-based line.
// The tree must have been parsed with position tracking. Containers and text
// blocks left open by a failed parse extend to the end of the document. A
// negative line is outside every element and resolves to the root.
func Locate(root *xtn.Object, line int) *Context {
	if line < 0 {
		return &Context{Stack: []Entry{{Container: root, Index: -1}}, Kind: KindObject}
	}
	ctx := &Context{}
	pos := xtn.LinePos(line)
	var c xtn.Container = root
	for c != nil {
		entry, kind, next := step(c, pos)
		ctx.Stack = append(ctx.Stack, entry)
		ctx.Kind = kind
		c = next
	}
	return ctx
}

type child struct {
	key   string
	index int
	el    xtn.Element
}

func children(c xtn.Container) []child {
	switch c := c.(type) {
	case *xtn.Object:
		out := make([]child, 0, c.Len())
		for _, m := range c.Members() {
			out = append(out, child{key: m.Key, index: -1, el: m.Value})
		}
		return out
	case *xtn.Array:
		out := make([]child, 0, len(c.Elements))
		for i, el := range c.Elements {
			out = append(out, child{index: i, el: el})
		}
		return out
	}
	return nil
}

// step resolves pos within c. A non-nil container is returned when the line
// lies inside the body of one of c's children.
func step(c xtn.Container, pos xtn.Pos) (Entry, Kind, xtn.Container) {
	kids := children(c)
	for _, k := range kids {
		h := k.el.Head()
		if !h.Start.IsValid() || pos > h.Start && !spans(k.el, pos) {
			continue
		}
		entry := Entry{Container: c, Key: k.key, Index: k.index, Element: k.el}
		switch {
		case pos < h.Start:
			return entry, gapKind(c, kids, pos), nil
		case pos == h.Start:
			return entry, KindKeyLine, nil
		case pos == h.End:
			return entry, KindEndLine, nil
		}
		if inner, ok := k.el.(xtn.Container); ok {
			return entry, KindObject, inner
		}
		return entry, KindComplexBody, nil
	}
	return Entry{Container: c, Index: -1}, gapKind(c, kids, pos), nil
}

// spans reports whether pos is past el's key line but not past its close
// marker. Inline text only covers its key line.
func spans(el xtn.Element, pos xtn.Pos) bool {
	h := el.Head()
	if t, ok := el.(*xtn.Text); ok && !t.ForceMultiline {
		return false
	}
	return !h.End.IsValid() || pos <= h.End
}

func gapKind(c xtn.Container, kids []child, pos xtn.Pos) Kind {
	in := c.Body()
	if hasComment(in.CommentsInnerTop, pos) || hasComment(in.CommentsInnerBottom, pos) {
		return KindComment
	}
	for _, k := range kids {
		h := k.el.Head()
		if hasComment(h.CommentsAbove, pos) || hasComment(h.CommentsBelow, pos) {
			return KindComment
		}
	}
	if _, ok := c.(*xtn.Array); ok {
		return KindArray
	}
	return KindObject
}

func hasComment(cs []xtn.Comment, pos xtn.Pos) bool {
	for _, c := range cs {
		if c.Pos == pos && !c.IsBlank() {
			return true
		}
	}
	return false
}
