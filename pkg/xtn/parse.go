package xtn

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse parses a document, tracking element positions and comments.
//
// A fatal error returns a nil tree; the *ParseError still carries the tree
// built up to the failing line. MissingColon and ObjectKeysCannotBeRepeated
// do not stop the parse: the offending line is skipped and the first such
// error is returned together with the otherwise complete tree.
func Parse(text string) (*Object, error) {
	return ParseLines(Segment(text))
}

// ParseLines is Parse for pre-segmented input.
func ParseLines(lines []Line) (*Object, error) {
	p := newParser(lines, true)
	if err := p.run(); err != nil {
		return nil, err
	}
	if p.deferred != nil {
		return p.root, p.deferred
	}
	return p.root, nil
}

type parser struct {
	lines    []Line
	track    bool
	root     *Object
	stack    []frame
	comments commentBuffer
	deferred *ParseError
	line     int
}

func newParser(lines []Line, track bool) *parser {
	root := NewObject()
	p := &parser{
		lines: lines,
		track: track,
		root:  root,
		stack: []frame{&objectFrame{obj: root}},
	}
	p.comments = commentBuffer{enabled: track, upTarget: root, upInner: true}
	return p
}

func (p *parser) run() error {
	for p.line = 0; p.line < len(p.lines); p.line++ {
		var err error
		switch f := p.top().(type) {
		case *textFrame:
			err = p.textLine(f, p.lines[p.line].Content)
		case containerFrame:
			err = p.keyLine(f, p.lines[p.line].Content)
		}
		if err != nil {
			return err
		}
	}
	return p.finish()
}

func (p *parser) top() frame {
	return p.stack[len(p.stack)-1]
}

func (p *parser) push(f frame) {
	p.stack = append(p.stack, f)
}

func (p *parser) pop() {
	f := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	if saved := f.sidelinedComments(); saved != nil {
		p.comments = *saved
	}
}

// sideline disables comment binding until the frame being opened for a
// rejected element is popped, and returns the state to restore then.
func (p *parser) sideline() *commentBuffer {
	saved := p.comments
	p.comments.enabled = false
	return &saved
}

func (p *parser) newError(code ErrorCode, msg string, start, end int) *ParseError {
	err := &ParseError{
		Code:        code,
		Line:        p.line,
		ColumnStart: start,
		ColumnEnd:   end,
		Message:     msg,
	}
	if p.track {
		err.Tree = p.root
	}
	return err
}

func (p *parser) fail(code ErrorCode, msg string, start, end int) error {
	return p.newError(code, msg, start, end)
}

// recoverable stashes the first recoverable error and returns nil so the
// caller skips the line. Without tracking every error is fatal.
func (p *parser) recoverable(code ErrorCode, msg string, start, end int) error {
	err := p.newError(code, msg, start, end)
	if !p.track {
		return err
	}
	if p.deferred == nil {
		p.deferred = err
	}
	return nil
}

// keyLine handles a line inside an object or array body.
func (p *parser) keyLine(f containerFrame, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed[0] == '#' {
		p.comments.record(trimmed, p.line)
		return nil
	}
	lead := len(raw) - len(trimLeftSpace(raw))
	_, inArray := f.(*arrayFrame)

	colon := strings.IndexByte(trimmed, ':')
	if colon < 0 {
		switch {
		case isCloseMarker(trimmed):
			return p.closeContainer(f, lead, lead+len(trimmed))
		case inArray && trimmed[0] == '+':
			return p.recoverable(CodeMissingColon, msgMissingColon, lead+1, lead+2)
		case inArray:
			return p.fail(CodeArrayElementMustStartWithPlus, msgArrayElementMustStartWithPlus, lead, lead+len(trimmed))
		default:
			return p.recoverable(CodeMissingColon, msgMissingColon, lead, lead+len(trimmed))
		}
	}

	left := trimRightSpace(trimmed[:colon])
	rawRight := trimmed[colon+1:]
	right := trimLeftSpace(rawRight)
	rightStart := lead + colon + 1 + len(rawRight) - len(right)
	rightEnd := rightStart + len(right)

	if left == "" {
		return p.fail(CodeLineMustNotStartWithColon, msgLineMustNotStartWithColon, lead+colon, lead+colon+1)
	}
	if left[0] == '+' && !inArray {
		return p.fail(CodePlusEncounteredOutsideArray, msgPlusEncounteredOutsideArray, lead, lead+1)
	}

	switch {
	case strings.HasSuffix(left, "{}"):
		if right != "" {
			return p.fail(CodeObjectMustBeOnNewLine, msgObjectMustBeOnNewLine, rightStart, rightEnd)
		}
		obj := NewObject()
		obj.Start = LinePos(p.line)
		s, err := f.insert(p, trimRightSpace(left[:len(left)-2]), lead, obj)
		if err != nil {
			return err
		}
		of := &objectFrame{obj: obj}
		if s.owner == nil {
			of.saved = p.sideline()
		} else {
			p.comments.attach(obj)
		}
		p.push(of)
	case strings.HasSuffix(left, "[]"):
		if right != "" {
			return p.fail(CodeArrayMustBeOnNewLine, msgArrayMustBeOnNewLine, rightStart, rightEnd)
		}
		arr := NewArray()
		arr.Start = LinePos(p.line)
		s, err := f.insert(p, trimRightSpace(left[:len(left)-2]), lead, arr)
		if err != nil {
			return err
		}
		af := &arrayFrame{arr: arr}
		if s.owner == nil {
			af.saved = p.sideline()
		} else {
			p.comments.attach(arr)
		}
		p.push(af)
	case strings.HasSuffix(left, "''"):
		indent := raw[:lead]
		if err := p.checkKeyIndent(indent); err != nil {
			return err
		}
		if right != "" {
			return p.fail(CodeMultilineMustBeOnNewLine, msgMultilineMustBeOnNewLine, rightStart, rightEnd)
		}
		text := &Text{ForceMultiline: true}
		text.Start = LinePos(p.line)
		s, err := f.insert(p, trimRightSpace(left[:len(left)-2]), lead, text)
		if err != nil {
			return err
		}
		tf := &textFrame{indent: indent}
		if s.owner == nil {
			// repeated key: the block is still consumed, into a throwaway slot
			scratch := NewObject()
			scratch.Set("", text)
			s = slot{owner: scratch}
			tf.saved = p.sideline()
		} else {
			p.comments.attach(text)
		}
		tf.slot = s
		p.push(tf)
	default:
		text := NewText(regularSpaces(right))
		text.Start = LinePos(p.line)
		s, err := f.insert(p, left, lead, text)
		if err != nil {
			return err
		}
		if s.owner != nil {
			p.comments.attach(text)
		}
	}
	return nil
}

func (p *parser) checkKeyIndent(indent string) error {
	if indent == "" {
		return nil
	}
	c := indent[0]
	if c != ' ' && c != '\t' {
		return p.fail(CodeIndentationMustBeSpaceOrTab, msgIndentationMustBeSpaceOrTab, 0, 1)
	}
	if rest := strings.TrimLeft(indent, string(c)); rest != "" {
		start := len(indent) - len(rest)
		return p.fail(CodeIndentationMustNotBeMixed, msgIndentationMustNotBeMixed, start, len(indent))
	}
	return nil
}

func (p *parser) closeContainer(f containerFrame, start, end int) error {
	node := f.node()
	p.comments.attachTrailing(node)
	if len(p.stack) == 1 {
		return p.fail(CodeUnmatchedCloseMarker, msgUnmatchedCloseMarker, start, end)
	}
	node.Head().End = LinePos(p.line)
	p.pop()
	return nil
}

// textLine handles a line inside a multi-line text block.
func (p *parser) textLine(f *textFrame, raw string) error {
	if f.expIndent == "" {
		f.expectIndent(raw)
	}
	prefix := raw[:min(len(f.expIndent), len(raw))]
	act := len(prefix) - len(strings.TrimLeft(prefix, string(f.char)))
	rest := raw[act:]

	if act < len(f.expIndent) {
		if r, size := utf8.DecodeRuneInString(rest); size > 0 && unicode.IsSpace(r) {
			return p.fail(CodeIndentationMustNotBeMixed, msgIndentationMustNotBeMixed, act, act+size)
		}
		if isCloseMarker(trimRightSpace(rest)) {
			if act != len(f.indent) {
				return p.fail(CodeIncorrectIndentation, msgIncorrectIndentation, 0, act)
			}
			text := f.slot.text()
			text.End = LinePos(p.line)
			p.pop()
			return nil
		}
		// a short line is only allowed when it is blank
		if rest != "" {
			return p.fail(CodeInsufficientIndentation, msgInsufficientIndentation, 0, act)
		}
	}
	f.appendLine(rest)
	return nil
}

func (p *parser) finish() error {
	if f, ok := p.top().(containerFrame); ok {
		p.comments.attachTrailing(f.node())
	}
	if len(p.stack) > 1 {
		p.line = len(p.lines)
		return p.fail(CodeMissingCloseMarker, msgMissingCloseMarker, 0, 1)
	}
	return nil
}

// isCloseMarker reports whether s is four or more '-'.
func isCloseMarker(s string) bool {
	if len(s) < 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			return false
		}
	}
	return true
}

// collapseSpaces replaces every run of whitespace with a single space.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// regularSpaces replaces every whitespace character with a plain space.
func regularSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

func trimLeftSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

func trimRightSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
