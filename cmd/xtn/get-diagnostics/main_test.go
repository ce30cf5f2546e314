package get_diagnostics_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	get_diagnostics "github.com/walteh/xtn/cmd/xtn/get-diagnostics"
)

func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := get_diagnostics.NewGetDiagnosticsCommand(fs)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/docs/good.xtn":     "a: 1\nl[]:\n    +: x\n----\n",
		"/docs/missing.xtn":  "a: 1\nb\n",
		"/docs/sub/open.xtn": "o{}:\n    k: v\n",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestGetDiagnosticsText(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{
			name: "clean file",
			args: []string{"/docs/good.xtn"},
			want: "",
		},
		{
			name: "recoverable error",
			args: []string{"/docs/missing.xtn"},
			want: "/docs/missing.xtn:2:1: error: A colon was expected [MissingColon]\n" +
				"   2 | b\n" +
				"     | ^\n",
			wantErr: "found 1 problems in 1 files",
		},
		{
			name: "directory",
			args: []string{"/docs"},
			want: "/docs/missing.xtn:2:1: error: A colon was expected [MissingColon]\n" +
				"   2 | b\n" +
				"     | ^\n" +
				"/docs/sub/open.xtn:3:1: error: A close marker ---- was expected [MissingCloseMarker]\n",
			wantErr: "found 2 problems in 2 files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, newFs(t), tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestGetDiagnosticsJSON(t *testing.T) {
	out, err := run(t, newFs(t), "--format", "json", "/docs/good.xtn", "/docs/missing.xtn")
	require.Error(t, err)

	want := `[{"file":"/docs/missing.xtn","severity":1,"code":"MissingColon","message":"A colon was expected",` +
		`"range":{"start":{"line":1,"character":0},"end":{"line":1,"character":1}}}]` + "\n"
	assert.JSONEq(t, want, out)
}

func TestGetDiagnosticsUnknownFormat(t *testing.T) {
	_, err := run(t, newFs(t), "--format", "xml", "/docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestGetDiagnosticsMissingFile(t *testing.T) {
	_, err := run(t, newFs(t), "/docs/nope.xtn")
	require.Error(t, err)
}
