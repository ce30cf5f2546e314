package xtn_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/xtn/pkg/xtn"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []xtn.Line
	}{
		{
			name: "empty",
			text: "",
			want: []xtn.Line{},
		},
		{
			name: "single unterminated line",
			text: "a: 1",
			want: []xtn.Line{{Content: "a: 1"}},
		},
		{
			name: "trailing newline adds no phantom line",
			text: "a: 1\n",
			want: []xtn.Line{{Content: "a: 1", Terminator: "\n"}},
		},
		{
			name: "mixed terminators",
			text: "a\r\nb\rc\nd",
			want: []xtn.Line{
				{Content: "a", Terminator: "\r\n"},
				{Content: "b", Terminator: "\r"},
				{Content: "c", Terminator: "\n"},
				{Content: "d"},
			},
		},
		{
			name: "blank lines",
			text: "\n\r\n",
			want: []xtn.Line{
				{Terminator: "\n"},
				{Terminator: "\r\n"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := xtn.Segment(tt.text)
			assert.Equal(t, tt.want, got)

			var b strings.Builder
			for _, l := range got {
				b.WriteString(l.String())
			}
			assert.Equal(t, tt.text, b.String(), "segments must reproduce the input")
		})
	}
}
