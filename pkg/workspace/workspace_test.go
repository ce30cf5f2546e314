package workspace_test

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/xtn/pkg/workspace"
)

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestOpen(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/repo/.xtn.yaml":      "include: [\"**/*.xtn\"]\nexclude: [\"vendor/**\"]\njobs: 2\n",
		"/repo/a.xtn":          "a: 1\n",
		"/repo/sub/b.xtn":      "b: 2\n",
		"/repo/vendor/c.xtn":   "c: 3\n",
		"/repo/sub/readme.txt": "hi",
	})

	ws, err := workspace.Open(fs, "", "/repo/sub")
	require.NoError(t, err)
	assert.Equal(t, "/repo/.xtn.yaml", ws.ConfigPath)
	assert.Equal(t, 2, ws.Jobs())

	paths, err := ws.Resolve(context.Background(), []string{"/repo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/a.xtn", "/repo/sub/b.xtn"}, paths)
}

func TestOpenExplicitConfig(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/cfg/custom.hcl": "jobs = 3\n",
	})

	ws, err := workspace.Open(fs, "/cfg/custom.hcl", "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, 3, ws.Jobs())

	_, err = workspace.Open(fs, "/cfg/missing.hcl", "/")
	require.Error(t, err)
}

func TestEach(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/a.xtn": "a",
		"/b.xtn": "bad",
		"/c.xtn": "c",
	})
	ws, err := workspace.Open(fs, "", "/")
	require.NoError(t, err)

	var calls atomic.Int32
	got := make([]string, 4)
	err = ws.Each(context.Background(), []string{"/a.xtn", "/b.xtn", "/c.xtn", "/missing.xtn"},
		func(_ context.Context, i int, path string, data []byte) error {
			calls.Add(1)
			got[i] = string(data)
			if string(data) == "bad" {
				return assert.AnError
			}
			return nil
		})

	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []string{"a", "bad", "c", ""}, got)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "/b.xtn")
	assert.Contains(t, err.Error(), "reading /missing.xtn")
	assert.Less(t, strings.Index(err.Error(), "/b.xtn"), strings.Index(err.Error(), "/missing.xtn"))
}

func TestWriteFile(t *testing.T) {
	fs := newFs(t, map[string]string{"/dir/doc.xtn": "old\n"})
	require.NoError(t, fs.Chmod("/dir/doc.xtn", 0o600))

	require.NoError(t, workspace.WriteFile(fs, "/dir/doc.xtn", []byte("new\n")))

	data, err := afero.ReadFile(fs, "/dir/doc.xtn")
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))

	info, err := fs.Stat("/dir/doc.xtn")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := afero.ReadDir(fs, "/dir")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
	assert.Equal(t, "doc.xtn", entries[0].Name())
}
