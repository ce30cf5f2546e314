package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/docs/a.xtn", []byte("k:   v\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cfg/crlf.yaml", []byte("line_ending: crlf\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/docs/bad.xtn", []byte("----\n"), 0o644))

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{
			name: "raw version",
			args: []string{"raw-version"},
		},
		{
			name: "format with explicit config",
			args: []string{"--config", "/cfg/crlf.yaml", "format", "/docs/a.xtn"},
			want: "k: v\r\n",
		},
		{
			name:    "diagnostics failure",
			args:    []string{"get-diagnostics", "--no-color", "/docs/bad.xtn"},
			want:    "/docs/bad.xtn:1:1: error: The close marker ---- does not match any open object or array [UnmatchedCloseMarker]\n   1 | ----\n     | ^^^^\n",
			wantErr: "failed to execute command",
		},
		{
			name:    "unknown command",
			args:    []string{"nope"},
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			err := run(context.Background(), fs, tt.args, &stdout, io.Discard)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.want != "" {
				assert.Equal(t, tt.want, stdout.String())
			}
		})
	}
}
