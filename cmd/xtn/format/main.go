package format

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xtn/pkg/diff"
	"github.com/walteh/xtn/pkg/workspace"
	"github.com/walteh/xtn/pkg/xtn"
)

type Handler struct {
	fs         afero.Fs
	out        io.Writer
	configPath string
	paths      []string
	write      bool
	check      bool
	diff       bool
}

func NewFormatCommand(fs afero.Fs) *cobra.Command {
	me := &Handler{fs: fs}

	cmd := &cobra.Command{
		Use:   "format [path...]",
		Short: "rewrite xtn documents in their canonical layout",
		Long: "format prints the canonical form of every document found under the given paths.\n" +
			"Documents with syntax errors are reported and left untouched.",
	}

	cmd.Flags().BoolVarP(&me.write, "write", "w", false, "write the result back to the source files instead of printing it")
	cmd.Flags().BoolVar(&me.check, "check", false, "list the files that are not formatted and fail if there are any")
	cmd.Flags().BoolVarP(&me.diff, "diff", "d", false, "print a unified diff for every file that is not formatted")
	cmd.MarkFlagsMutuallyExclusive("write", "check", "diff")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.paths = args
		me.out = cmd.OutOrStdout()
		if f := cmd.Flag("config"); f != nil {
			me.configPath = f.Value.String()
		}
		return me.Run(cmd.Context())
	}

	return cmd
}

type result struct {
	path      string
	original  string
	formatted string
	changed   bool
}

func (me *Handler) Run(ctx context.Context) error {
	ws, err := workspace.OpenFor(me.fs, me.configPath, me.paths)
	if err != nil {
		return err
	}
	paths, err := ws.Resolve(ctx, me.paths)
	if err != nil {
		return err
	}

	results := make([]*result, len(paths))
	eachErr := ws.Each(ctx, paths, func(ctx context.Context, i int, path string, data []byte) error {
		eol, err := ws.Config.LineEndingFor(me.fs, path)
		if err != nil {
			return err
		}
		formatted, err := Format(string(data), eol)
		if err != nil {
			return err
		}
		res := &result{path: path, original: string(data), formatted: formatted, changed: formatted != string(data)}
		results[i] = res

		if me.write && res.changed {
			if err := workspace.WriteFile(me.fs, path, []byte(formatted)); err != nil {
				return err
			}
			zerolog.Ctx(ctx).Info().Str("file", path).Msg("formatted")
		}
		return nil
	})

	unformatted := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		switch {
		case me.diff:
			d, err := diff.Unified(strings.TrimPrefix(filepath.ToSlash(res.path), "/"), res.original, res.formatted)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(me.out, d); err != nil {
				return errors.Errorf("writing output: %w", err)
			}
		case me.check:
			if res.changed {
				unformatted++
				fmt.Fprintln(me.out, res.path)
			}
		case !me.write:
			if _, err := io.WriteString(me.out, res.formatted); err != nil {
				return errors.Errorf("writing output: %w", err)
			}
		}
	}

	if eachErr != nil {
		return eachErr
	}
	if unformatted > 0 {
		return errors.Errorf("%d of %d files are not formatted", unformatted, len(paths))
	}
	return nil
}

// Format returns the canonical form of text, with lines ending in eol. A
// document that does not parse cleanly is refused, as is one whose canonical
// form would read back as a different tree.
func Format(text, eol string) (string, error) {
	tree, err := xtn.Parse(text)
	if err != nil {
		return "", errors.Errorf("parsing: %w", err)
	}

	out := xtn.DumpWith(tree, xtn.DumpOptions{LineEnding: eol})

	again, err := xtn.Parse(out)
	if err != nil {
		return "", errors.Errorf("formatted output does not parse: %w", err)
	}
	if !xtn.Equal(tree, again) {
		return "", errors.Errorf("formatted output changes the document")
	}
	return out, nil
}
