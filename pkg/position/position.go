package position

import (
	"fmt"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/mattn/go-runewidth"
)

// Place is a 1-based line and character. Characters count grapheme clusters,
// so a tab or an accented letter made of two code points is one character.
type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

type Range struct {
	Start Place
	End   Place
}

func (r Range) String() string {
	if r.Start.Line == r.End.Line {
		return fmt.Sprintf("%s-%d", r.Start, r.End.Character)
	}
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Column returns the 1-based grapheme column of the byte offset within line.
// Offsets outside the line are clamped to its bounds.
func Column(line string, offset int) int {
	offset = max(0, min(offset, len(line)))
	n, err := textseg.TokenCount([]byte(line[:offset]), textseg.ScanGraphemeClusters)
	if err != nil {
		// invalid utf-8 is counted byte by byte
		return offset + 1
	}
	return n + 1
}

// NewLineRange converts the byte span [start, end) of the 0-based line with the
// given content into a 1-based Range.
func NewLineRange(line int, content string, start, end int) Range {
	return Range{
		Start: Place{Line: line + 1, Character: Column(content, start)},
		End:   Place{Line: line + 1, Character: Column(content, end)},
	}
}

// DisplayWidth returns the number of terminal cells s occupies.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}
