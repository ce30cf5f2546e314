// Package workspace ties the configuration, the file finder and the
// filesystem together for the command line tools.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/xtn/pkg/config"
	"github.com/walteh/xtn/pkg/finder"
)

type Workspace struct {
	Fs         afero.Fs
	Config     *config.Config
	ConfigPath string

	finder *finder.DefaultFinder
}

// Open loads the config at configPath, or the closest one above dir when
// configPath is empty.
func Open(fs afero.Fs, configPath, dir string) (*Workspace, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(fs, configPath)
	} else {
		cfg, configPath, err = config.Find(fs, dir)
	}
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	f, err := finder.NewDefaultFinder(fs, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, errors.Errorf("creating finder: %w", err)
	}

	return &Workspace{Fs: fs, Config: cfg, ConfigPath: configPath, finder: f}, nil
}

// OpenFor is Open with the config looked up from the first command line
// argument, or the working directory without arguments.
func OpenFor(fs afero.Fs, configPath string, args []string) (*Workspace, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
		if info, err := fs.Stat(dir); err == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}
	}
	return Open(fs, configPath, dir)
}

// Resolve expands command line arguments into the files to process.
func (w *Workspace) Resolve(ctx context.Context, args []string) ([]string, error) {
	return w.finder.Resolve(ctx, args)
}

func (w *Workspace) Jobs() int {
	if w.Config.Jobs > 0 {
		return w.Config.Jobs
	}
	return runtime.NumCPU()
}

// Each reads every path and calls fn with its content, running at most Jobs
// calls at once. A failing file does not stop the others; all failures are
// returned together in path order.
func (w *Workspace) Each(ctx context.Context, paths []string, fn func(ctx context.Context, i int, path string, data []byte) error) error {
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.Jobs())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			zerolog.Ctx(ctx).Debug().Str("file", path).Msg("processing")

			data, err := afero.ReadFile(w.Fs, path)
			if err != nil {
				errs[i] = errors.Errorf("reading %s: %w", path, err)
				return nil
			}
			if err := fn(ctx, i, path, data); err != nil {
				errs[i] = errors.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// WriteFile replaces path with data through a temporary file in the same
// directory, keeping the permissions of an existing file.
func WriteFile(fs afero.Fs, path string, data []byte) (err error) {
	perm := os.FileMode(0o644)
	if info, err := fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp)
		}
	}()

	_, werr := f.Write(data)
	if err := multierr.Combine(werr, f.Close()); err != nil {
		return errors.Errorf("writing %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return errors.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
