package diagnostic_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/xtn/pkg/diagnostic"
	"github.com/walteh/xtn/pkg/xtn"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     []diagnostic.Diagnostic
		wantTree bool
	}{
		{
			name:     "valid document",
			text:     "a: 1\nb{}:\n    c: 2\n----\n",
			want:     nil,
			wantTree: true,
		},
		{
			name: "missing colon",
			text: "a: 1\nl[]:\n    + x\n----\n",
			want: []diagnostic.Diagnostic{
				{
					Message:  "A colon was expected",
					Code:     "MissingColon",
					Line:     3,
					Column:   6,
					EndLine:  3,
					EndCol:   7,
					Severity: diagnostic.Error,
				},
			},
			wantTree: true,
		},
		{
			name: "columns count graphemes",
			text: "ключ{}: значение\n",
			want: []diagnostic.Diagnostic{
				{
					Message:  "An object must start on a new line",
					Code:     "ObjectMustBeOnNewLine",
					Line:     1,
					Column:   9,
					EndLine:  1,
					EndCol:   17,
					Severity: diagnostic.Error,
				},
			},
			wantTree: true,
		},
		{
			name: "missing close marker past the last line",
			text: "o{}:\n    a: 1\n",
			want: []diagnostic.Diagnostic{
				{
					Message:  "A close marker ---- was expected",
					Code:     "MissingCloseMarker",
					Line:     3,
					Column:   1,
					EndLine:  3,
					EndCol:   2,
					Severity: diagnostic.Error,
				},
			},
			wantTree: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tree := diagnostic.Check(tt.text)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				w, g := tt.want[i], got[i]
				assert.Equal(t, w.Message, g.Message)
				assert.Equal(t, w.Code, g.Code)
				assert.Equal(t, w.Severity, g.Severity)
				assert.Equal(t, []int{w.Line, w.Column, w.EndLine, w.EndCol}, []int{g.Line, g.Column, g.EndLine, g.EndCol})
			}
			assert.Equal(t, tt.wantTree, tree != nil)
		})
	}
}

func TestRender(t *testing.T) {
	text := "a: 1\nl[]:\n\t+ x\n----\n"
	lines := xtn.Segment(text)
	diags, _ := diagnostic.Check(text)
	require.Len(t, diags, 1)

	var buf bytes.Buffer
	err := diagnostic.Render(&buf, "doc.xtn", lines, diags, false)
	require.NoError(t, err)

	want := "doc.xtn:3:3: error: A colon was expected [MissingColon]\n" +
		"   3 |     + x\n" +
		"     |      ^\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderPastLastLine(t *testing.T) {
	text := "o{}:\n"
	diags, _ := diagnostic.Check(text)
	require.Len(t, diags, 1)

	var buf bytes.Buffer
	require.NoError(t, diagnostic.Render(&buf, "doc.xtn", xtn.Segment(text), diags, false))
	assert.Equal(t, "doc.xtn:2:1: error: A close marker ---- was expected [MissingCloseMarker]\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	diags, _ := diagnostic.Check("----\n")
	out, err := diagnostic.FormatJSON(map[string][]diagnostic.Diagnostic{"a.xtn": diags}, []string{"a.xtn", "b.xtn"})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a.xtn", got[0]["file"])
	assert.Equal(t, float64(1), got[0]["severity"])
	assert.Equal(t, "UnmatchedCloseMarker", got[0]["code"])
	assert.Equal(t, map[string]any{
		"start": map[string]any{"line": float64(0), "character": float64(0)},
		"end":   map[string]any{"line": float64(0), "character": float64(4)},
	}, got[0]["range"])
}

func TestFormatJSONEmpty(t *testing.T) {
	out, err := diagnostic.FormatJSON(nil, []string{"a.xtn"})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}
