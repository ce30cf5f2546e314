package xtn

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// commentBuffer binds comment lines to their neighbours while lines are
// scanned. Comments collect in down until an element is created (they sit
// above it) or its container closes (they sit at its inner bottom). A `####`
// separator moves the run into up, which binds to the previously created
// element instead: below a text or a closed container, at the inner top of a
// container whose body just opened.
type commentBuffer struct {
	enabled  bool
	down     []Comment
	up       []Comment
	upTarget Element
	upInner  bool
}

func (b *commentBuffer) record(trimmed string, line int) {
	if !b.enabled {
		return
	}
	pos := LinePos(line)
	if trimmed == "" {
		b.down = append(b.down, Comment{Pos: pos})
		return
	}
	value, prefix := splitComment(trimmed)
	b.down = append(b.down, Comment{Value: value, Prefix: prefix, Pos: pos})
	if prefix == PrefixSeparator {
		b.up = append(b.up, b.down...)
		b.down = nil
	}
}

// splitComment strips the comment marker from a trimmed line starting with
// '#' and returns the text and the prefix.
func splitComment(line string) (value, prefix string) {
	switch {
	case strings.HasPrefix(line, "####"):
		return trimLeftSpace(line[4:]), PrefixSeparator
	case strings.HasPrefix(line, "##"):
		line = trimLeftSpace(line[2:])
		end := strings.IndexFunc(line, unicode.IsSpace)
		if end < 0 {
			return "", line
		}
		return trimLeftSpace(line[end:]), line[:end]
	default:
		line = line[1:]
		if r, size := utf8.DecodeRuneInString(line); size > 0 && unicode.IsSpace(r) {
			line = line[size:]
		}
		return line, ""
	}
}

func (b *commentBuffer) flushUp() {
	if len(b.up) == 0 || b.upTarget == nil {
		return
	}
	if c, ok := b.upTarget.(Container); ok && b.upInner {
		in := c.Body()
		in.CommentsInnerTop = append(in.CommentsInnerTop, b.up...)
	} else {
		h := b.upTarget.Head()
		h.CommentsBelow = append(h.CommentsBelow, b.up...)
	}
	b.up = nil
}

// attach is called when el has just been created from a key line.
func (b *commentBuffer) attach(el Element) {
	if !b.enabled {
		return
	}
	b.flushUp()
	if len(b.down) > 0 {
		h := el.Head()
		h.CommentsAbove = append(h.CommentsAbove, b.down...)
		b.down = nil
	}
	b.upTarget = el
	_, isText := el.(*Text)
	b.upInner = !isText
}

// attachTrailing is called when c is closed by a close marker or by the end
// of the document.
func (b *commentBuffer) attachTrailing(c Container) {
	if !b.enabled {
		return
	}
	b.flushUp()
	b.up = nil
	if len(b.down) > 0 {
		in := c.Body()
		in.CommentsInnerBottom = append(in.CommentsInnerBottom, b.down...)
		b.down = nil
	}
	b.upTarget = c
	b.upInner = false
}
