package diagnostic

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xtn/pkg/position"
	"github.com/walteh/xtn/pkg/xtn"
)

// Diagnostic represents a single diagnostic message. Line and Column are
// 1-based; columns count grapheme clusters.
type Diagnostic struct {
	Message  string
	Code     string
	Line     int
	Column   int
	EndLine  int
	EndCol   int
	Severity DiagnosticSeverity

	// byte span on the line, for rendering
	start, end int
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
	Info    DiagnosticSeverity = "info"
	Hint    DiagnosticSeverity = "hint"
)

// Check parses text and reports its syntax errors. The returned tree is the
// best-effort tree, which is non-nil even when the parse failed.
func Check(text string) ([]Diagnostic, *xtn.Object) {
	lines := xtn.Segment(text)
	tree, err := xtn.ParseLines(lines)
	if err == nil {
		return nil, tree
	}
	var pe *xtn.ParseError
	if !errors.As(err, &pe) {
		return []Diagnostic{{Message: err.Error(), Line: 1, Column: 1, EndLine: 1, EndCol: 1, Severity: Error}}, tree
	}
	return []Diagnostic{FromParseError(pe, lines)}, pe.Tree
}

// FromParseError converts pe into a diagnostic using lines to translate byte
// offsets into columns.
func FromParseError(pe *xtn.ParseError, lines []xtn.Line) Diagnostic {
	content := ""
	if pe.Line < len(lines) {
		content = lines[pe.Line].Content
	}
	r := position.NewLineRange(pe.Line, content, pe.ColumnStart, pe.ColumnEnd)
	if pe.ColumnEnd > len(content) {
		// spans past the end of the line (end of document) keep their width
		r.End.Character = r.Start.Character + pe.ColumnEnd - pe.ColumnStart
	}
	return Diagnostic{
		Message:  pe.Message,
		Code:     pe.Code.String(),
		Line:     r.Start.Line,
		Column:   r.Start.Character,
		EndLine:  r.End.Line,
		EndCol:   r.End.Character,
		Severity: Error,
		start:    pe.ColumnStart,
		end:      pe.ColumnEnd,
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s [%s]", d.Line, d.Column, d.Severity, d.Message, d.Code)
}

var severityColors = map[DiagnosticSeverity]*color.Color{
	Error:   color.New(color.FgRed, color.Bold),
	Warning: color.New(color.FgYellow, color.Bold),
	Info:    color.New(color.FgBlue, color.Bold),
	Hint:    color.New(color.FgCyan),
}

// Render writes diags in a compiler-like layout with the offending source line
// and a caret underline.
func Render(w io.Writer, filename string, lines []xtn.Line, diags []Diagnostic, colorize bool) error {
	sev := func(s DiagnosticSeverity) string {
		if c, ok := severityColors[s]; ok && colorize {
			return c.Sprint(s)
		}
		return string(s)
	}
	caret := func(s string) string {
		if colorize {
			return color.New(color.FgGreen, color.Bold).Sprint(s)
		}
		return s
	}

	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "%s:%d:%d: %s: %s", filename, d.Line, d.Column, sev(d.Severity), d.Message)
		if d.Code != "" {
			fmt.Fprintf(&b, " [%s]", d.Code)
		}
		b.WriteByte('\n')

		idx := d.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		content := lines[idx].Content
		start := max(0, min(d.start, len(content)))
		end := max(start, min(d.end, len(content)))

		gutter := fmt.Sprintf("%4d | ", d.Line)
		fmt.Fprintf(&b, "%s%s\n", gutter, expandTabs(content))
		pad := position.DisplayWidth(expandTabs(content[:start]))
		width := max(1, position.DisplayWidth(expandTabs(content[start:end])))
		fmt.Fprintf(&b, "%*s | %s%s\n", len(gutter)-3, "", strings.Repeat(" ", pad), caret(strings.Repeat("^", width)))
	}
	_, err := io.WriteString(w, b.String())
	if err != nil {
		return errors.Errorf("writing diagnostics: %w", err)
	}
	return nil
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

type jsonPlace struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type jsonRange struct {
	Start jsonPlace `json:"start"`
	End   jsonPlace `json:"end"`
}

type jsonDiagnostic struct {
	File     string    `json:"file,omitempty"`
	Severity int       `json:"severity"`
	Code     string    `json:"code,omitempty"`
	Message  string    `json:"message"`
	Range    jsonRange `json:"range"`
}

var severityNumbers = map[DiagnosticSeverity]int{
	Error:   1,
	Warning: 2,
	Info:    3,
	Hint:    4,
}

// FormatJSON encodes diags per file in the editor protocol shape: 0-based
// lines and characters, numeric severities.
func FormatJSON(byFile map[string][]Diagnostic, files []string) ([]byte, error) {
	result := make([]jsonDiagnostic, 0)
	for _, f := range files {
		for _, d := range byFile[f] {
			result = append(result, jsonDiagnostic{
				File:     f,
				Severity: severityNumbers[d.Severity],
				Code:     d.Code,
				Message:  d.Message,
				Range: jsonRange{
					Start: jsonPlace{Line: d.Line - 1, Character: d.Column - 1},
					End:   jsonPlace{Line: d.EndLine - 1, Character: d.EndCol - 1},
				},
			})
		}
	}
	out, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Errorf("encoding diagnostics: %w", err)
	}
	return out, nil
}
