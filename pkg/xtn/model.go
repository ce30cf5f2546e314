package xtn

// Pos is a source line position. The zero value NoPos means the element or
// comment has no source location (it was built in memory, or it is the root).
type Pos int

const NoPos Pos = 0

// LinePos returns the position of the 0-based line i.
func LinePos(i int) Pos {
	return Pos(i + 1)
}

func (p Pos) IsValid() bool {
	return p > 0
}

// Line returns the 0-based line, or -1 for NoPos.
func (p Pos) Line() int {
	return int(p) - 1
}

// PrefixSeparator is the prefix of a `####` comment. Such a comment closes the
// current comment run and binds it to the element above.
const PrefixSeparator = "##"

// Comment is a single comment line or a blank line (empty Value and Prefix).
type Comment struct {
	Value  string
	Prefix string
	Pos    Pos
}

func (c Comment) IsBlank() bool {
	return c.Value == "" && c.Prefix == ""
}

// Element is a node of a document tree: *Text, *Array or *Object.
type Element interface {
	Head() *Header
	isElement()
}

// Header holds the span and surrounding comments shared by all elements.
type Header struct {
	Start         Pos
	End           Pos
	CommentsAbove []Comment
	CommentsBelow []Comment
}

func (h *Header) Head() *Header {
	return h
}

// Inner holds the comments inside a container's body that precede its first
// element or follow its last one.
type Inner struct {
	CommentsInnerTop    []Comment
	CommentsInnerBottom []Comment
}

func (in *Inner) Body() *Inner {
	return in
}

// Container is implemented by *Array and *Object.
type Container interface {
	Element
	Body() *Inner
}

type Text struct {
	Header
	Value          string
	ForceMultiline bool
}

func NewText(value string) *Text {
	return &Text{Value: value}
}

type Array struct {
	Header
	Inner
	Elements []Element
}

func NewArray(elements ...Element) *Array {
	return &Array{Elements: elements}
}

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Element
}

// Object is an insertion-ordered mapping of unique keys to elements.
type Object struct {
	Header
	Inner
	members []Member
	index   map[string]int
}

func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

func (o *Object) Len() int {
	return len(o.members)
}

func (o *Object) Get(key string) (Element, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Set replaces the value of an existing key in place, or appends a new key.
func (o *Object) Set(key string, value Element) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = value
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

func (o *Object) Keys() []string {
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns the key/value pairs in insertion order. The slice must not
// be modified.
func (o *Object) Members() []Member {
	return o.members
}

func (*Text) isElement()   {}
func (*Array) isElement()  {}
func (*Object) isElement() {}
