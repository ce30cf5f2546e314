package xtn

import "strings"

// Line is one physical line of input together with its original terminator.
type Line struct {
	Content    string
	Terminator string // "", "\n", "\r" or "\r\n"
}

func (l Line) String() string {
	return l.Content + l.Terminator
}

// Segment splits text into lines, keeping each line's terminator. A trailing
// empty fragment (text ending in a line break) does not produce a line.
func Segment(text string) []Line {
	lines := make([]Line, 0, strings.Count(text, "\n")+1)
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, Line{Content: text[start:i], Terminator: "\n"})
			start = i + 1
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				lines = append(lines, Line{Content: text[start:i], Terminator: "\r\n"})
				i++
			} else {
				lines = append(lines, Line{Content: text[start:i], Terminator: "\r"})
			}
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, Line{Content: text[start:]})
	}
	return lines
}
