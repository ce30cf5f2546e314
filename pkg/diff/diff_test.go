package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/xtn/pkg/diff"
)

func TestUnified(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   string
	}{
		{
			name:   "equal",
			before: "a: 1\n",
			after:  "a: 1\n",
			want:   "",
		},
		{
			name:   "single line",
			before: "a:   1\n",
			after:  "a: 1\n",
			want:   "--- a/doc.xtn\n+++ b/doc.xtn\n@@ -1 +1 @@\n-a:   1\n+a: 1\n",
		},
		{
			name:   "context lines",
			before: "a: 1\nb{}:\n  c: 2\n----\n",
			after:  "a: 1\nb{}:\n    c: 2\n----\n",
			want: "--- a/doc.xtn\n+++ b/doc.xtn\n@@ -1,4 +1,4 @@\n" +
				" a: 1\n b{}:\n-  c: 2\n+    c: 2\n ----\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := diff.Unified("doc.xtn", tt.before, tt.after)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
