package finder

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultFinder matches slash-separated paths relative to the searched root
// against doublestar globs.
type DefaultFinder struct {
	fs      afero.Fs
	include []string
	exclude []string
}

// NewDefaultFinder creates a new DefaultFinder
func NewDefaultFinder(fs afero.Fs, include, exclude []string) (*DefaultFinder, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid glob %q", p)
		}
	}
	return &DefaultFinder{fs: fs, include: include, exclude: exclude}, nil
}

// Find returns the path of every file below root matching the finder's globs,
// in walk order. Files are not opened.
func (f *DefaultFinder) Find(ctx context.Context, root string) ([]string, error) {
	if _, err := f.fs.Stat(root); err != nil {
		return nil, errors.Errorf("searching %s: %w", root, err)
	}

	var found []string
	err := afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel != "." && (matchAny(f.exclude, rel) || matchAny(f.exclude, rel+"/**")) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(f.exclude, rel) || !matchAny(f.include, rel) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}
	return found, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		// patterns are validated up front, so Match cannot fail
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Resolve expands command line arguments: files are taken as they are and
// directories are searched with Find. An empty argument list searches ".".
func (f *DefaultFinder) Resolve(ctx context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var paths []string
	for _, arg := range args {
		info, err := f.fs.Stat(arg)
		if err != nil {
			return nil, errors.Errorf("resolving %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := f.Find(ctx, arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}
