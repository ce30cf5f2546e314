package xtn

import (
	"fmt"
	"strings"
)

// frame is one open scope on the parse stack: *objectFrame, *arrayFrame or
// *textFrame.
type frame interface {
	isFrame()
	sidelinedComments() *commentBuffer
}

// sidelined holds the comment state set aside while the body of an element
// rejected by a recoverable error is consumed. It is restored when the frame
// is popped.
type sidelined struct {
	saved *commentBuffer
}

func (s *sidelined) sidelinedComments() *commentBuffer { return s.saved }

// containerFrame is a frame whose body holds keyed lines.
type containerFrame interface {
	frame
	// insert validates the key of a line opening el and links el into the
	// frame's node. A zero slot with a nil error means el was rejected by a
	// recoverable error and must be discarded.
	insert(p *parser, rawKey string, col int, el Element) (slot, error)
	node() Container
}

// slot identifies where an element lives inside its parent.
type slot struct {
	owner Container
	key   string
	index int
}

func (s slot) text() *Text {
	switch owner := s.owner.(type) {
	case *Object:
		el, _ := owner.Get(s.key)
		return el.(*Text)
	case *Array:
		return owner.Elements[s.index].(*Text)
	}
	return nil
}

type objectFrame struct {
	sidelined
	obj *Object
}

func (f *objectFrame) node() Container { return f.obj }

func (f *objectFrame) insert(p *parser, rawKey string, col int, el Element) (slot, error) {
	key := collapseSpaces(rawKey)
	if _, exists := f.obj.Get(key); exists {
		msg := fmt.Sprintf("Object keys cannot be repeated. %s already exists.", key)
		return slot{}, p.recoverable(CodeObjectKeysCannotBeRepeated, msg, col, col+len(rawKey))
	}
	f.obj.Set(key, el)
	return slot{owner: f.obj, key: key}, nil
}

type arrayFrame struct {
	sidelined
	arr *Array
}

func (f *arrayFrame) node() Container { return f.arr }

func (f *arrayFrame) insert(p *parser, rawKey string, col int, el Element) (slot, error) {
	key := collapseSpaces(rawKey)
	if key != "+" {
		if strings.HasPrefix(key, "+") {
			return slot{}, p.fail(CodeArrayElementMustNotHaveAKey, msgArrayElementMustNotHaveAKey, col, col+len(rawKey))
		}
		return slot{}, p.fail(CodeArrayElementMustStartWithPlus, msgArrayElementMustStartWithPlus, col, col+len(rawKey))
	}
	f.arr.Elements = append(f.arr.Elements, el)
	return slot{owner: f.arr, index: len(f.arr.Elements) - 1}, nil
}

// textFrame accumulates the body of a multi-line text block. The value is
// written back into the parent's slot after every line.
type textFrame struct {
	sidelined
	slot      slot
	indent    string // indentation of the key line
	char      byte   // indentation character of the body
	expIndent string // minimum indentation of a body line
	body      strings.Builder
	lines     int
}

func (f *textFrame) appendLine(s string) {
	if f.lines > 0 {
		f.body.WriteByte('\n')
	}
	f.body.WriteString(s)
	f.lines++
	f.slot.text().Value = f.body.String()
}

// expectIndent fixes the body indentation from the key line's indentation or,
// for an unindented key line, from the first body line.
func (f *textFrame) expectIndent(first string) {
	switch {
	case f.indent != "":
		f.char = f.indent[0]
		n := 4
		if f.char == '\t' {
			n = 1
		}
		f.expIndent = f.indent + strings.Repeat(string(f.char), n)
	case strings.HasPrefix(first, "\t"):
		f.char = '\t'
		f.expIndent = "\t"
	default:
		f.char = ' '
		f.expIndent = "    "
	}
}

func (*objectFrame) isFrame() {}
func (*arrayFrame) isFrame()  {}
func (*textFrame) isFrame()   {}
