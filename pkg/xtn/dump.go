package xtn

import (
	"strings"
	"unicode"
)

const indentUnit = "    "

// DumpOptions controls serialization.
type DumpOptions struct {
	// LineEnding terminates every emitted line. Defaults to "\n".
	LineEnding string
}

// Dump serializes obj with "\n" line endings.
func Dump(obj *Object) string {
	return DumpWith(obj, DumpOptions{})
}

// DumpWith serializes obj. Keys keep their insertion order, every nesting
// level is indented by four spaces and comments are written back into the
// slot they were read from.
func DumpWith(obj *Object, opts DumpOptions) string {
	d := &dumper{eol: opts.LineEnding}
	if d.eol == "" {
		d.eol = "\n"
	}
	d.comments(obj.CommentsAbove, "")
	d.comments(obj.CommentsInnerTop, "")
	for _, m := range obj.members {
		d.element(m.Key, m.Value, "")
	}
	d.comments(obj.CommentsInnerBottom, "")
	d.comments(obj.CommentsBelow, "")
	return d.b.String()
}

type dumper struct {
	b   strings.Builder
	eol string
}

func (d *dumper) line(parts ...string) {
	for _, p := range parts {
		d.b.WriteString(p)
	}
	d.b.WriteString(d.eol)
}

func (d *dumper) element(key string, el Element, indent string) {
	h := el.Head()
	d.comments(h.CommentsAbove, indent)
	inner := indent + indentUnit
	switch el := el.(type) {
	case *Text:
		if !needsBlock(el) {
			d.line(indent, key, ": ", el.Value)
			break
		}
		d.line(indent, key, "'':")
		if el.Value != "" {
			for _, l := range splitLines(el.Value) {
				if l == "" {
					d.line()
					continue
				}
				d.line(inner, l)
			}
		}
		d.line(indent, "----")
	case *Array:
		d.line(indent, key, "[]:")
		d.comments(el.CommentsInnerTop, inner)
		for _, child := range el.Elements {
			d.element("+", child, inner)
		}
		d.comments(el.CommentsInnerBottom, inner)
		d.line(indent, "----")
	case *Object:
		d.line(indent, key, "{}:")
		d.comments(el.CommentsInnerTop, inner)
		for _, m := range el.members {
			d.element(m.Key, m.Value, inner)
		}
		d.comments(el.CommentsInnerBottom, inner)
		d.line(indent, "----")
	}
	d.comments(h.CommentsBelow, indent)
}

func (d *dumper) comments(cs []Comment, indent string) {
	for _, c := range cs {
		d.comment(c, indent)
	}
}

func (d *dumper) comment(c Comment, indent string) {
	if c.IsBlank() {
		d.line()
		return
	}
	for i, l := range splitLines(c.Value) {
		l = trimRightSpace(l)
		switch {
		case i == 0 && c.Prefix == PrefixSeparator:
			d.line(indent, "####", spaced(l))
		case i == 0 && c.Prefix != "":
			d.line(indent, "##", c.Prefix, spaced(l))
		case l == "":
			d.line()
		default:
			d.line(indent, "# ", l)
		}
	}
}

func spaced(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

// WrittenAsBlock reports whether Dump writes t as a multi-line block rather
// than as `key: value`.
func (t *Text) WrittenAsBlock() bool {
	return needsBlock(t)
}

// needsBlock reports whether t cannot be written as `key: value`.
func needsBlock(t *Text) bool {
	v := t.Value
	if t.ForceMultiline || v == "" {
		return true
	}
	if v[0] == ' ' || v[len(v)-1] == ' ' {
		return true
	}
	return strings.IndexFunc(v, func(r rune) bool {
		return r != ' ' && unicode.IsSpace(r)
	}) >= 0
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func splitLines(s string) []string {
	return strings.Split(lineBreaks.Replace(s), "\n")
}
