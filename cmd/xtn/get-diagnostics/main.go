package get_diagnostics

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xtn/pkg/diagnostic"
	"github.com/walteh/xtn/pkg/workspace"
	"github.com/walteh/xtn/pkg/xtn"
)

type Handler struct {
	fs         afero.Fs
	out        io.Writer
	configPath string
	paths      []string
	format     string // text, json
	noColor    bool
}

func NewGetDiagnosticsCommand(fs afero.Fs) *cobra.Command {
	me := &Handler{fs: fs}

	cmd := &cobra.Command{
		Use:   "get-diagnostics [path...]",
		Short: "report syntax errors in xtn documents",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "the format of the diagnostics (text, json)")
	cmd.Flags().BoolVar(&me.noColor, "no-color", false, "disable colored output")

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

type fileReport struct {
	lines []xtn.Line
	diags []diagnostic.Diagnostic
}

func (me *Handler) Run(ctx context.Context) error {
	if me.format != "text" && me.format != "json" {
		return errors.Errorf("unknown format %q", me.format)
	}

	ws, err := workspace.OpenFor(me.fs, me.configPath, me.paths)
	if err != nil {
		return err
	}
	paths, err := ws.Resolve(ctx, me.paths)
	if err != nil {
		return err
	}

	reports := make([]fileReport, len(paths))
	if err := ws.Each(ctx, paths, func(_ context.Context, i int, _ string, data []byte) error {
		text := string(data)
		diags, _ := diagnostic.Check(text)
		reports[i] = fileReport{lines: xtn.Segment(text), diags: diags}
		return nil
	}); err != nil {
		return err
	}

	problems, files := 0, 0
	byFile := make(map[string][]diagnostic.Diagnostic, len(paths))
	for i, r := range reports {
		if len(r.diags) == 0 {
			continue
		}
		problems += len(r.diags)
		files++
		byFile[paths[i]] = r.diags
	}

	switch me.format {
	case "json":
		out, err := diagnostic.FormatJSON(byFile, paths)
		if err != nil {
			return err
		}
		if _, err := me.out.Write(append(out, '\n')); err != nil {
			return errors.Errorf("writing output: %w", err)
		}
	default:
		colorize := !me.noColor && !color.NoColor
		for i, r := range reports {
			if err := diagnostic.Render(me.out, paths[i], r.lines, r.diags, colorize); err != nil {
				return err
			}
		}
	}

	if problems > 0 {
		return errors.Errorf("found %d problems in %d files", problems, files)
	}
	return nil
}
