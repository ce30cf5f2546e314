package convert

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xtn/pkg/convert"
	"github.com/walteh/xtn/pkg/workspace"
)

type Handler struct {
	fs     afero.Fs
	out    io.Writer
	input  string
	output string
	from   string
	to     string
}

func NewConvertCommand(fs afero.Fs) *cobra.Command {
	me := &Handler{fs: fs}

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "convert a document between xtn, json, yaml, toml and msgpack",
	}

	cmd.Flags().StringVar(&me.from, "from", "", "the input format, detected from the file extension when empty")
	cmd.Flags().StringVar(&me.to, "to", "", "the output format")
	cmd.Flags().StringVarP(&me.output, "output", "o", "", "write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("to")
	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.input = args[0]
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	from := me.from
	if from == "" {
		from = strings.TrimPrefix(filepath.Ext(me.input), ".")
	}
	inFormat, err := convert.ParseFormat(from)
	if err != nil {
		return errors.Errorf("input format: %w", err)
	}
	outFormat, err := convert.ParseFormat(me.to)
	if err != nil {
		return errors.Errorf("output format: %w", err)
	}

	data, err := afero.ReadFile(me.fs, me.input)
	if err != nil {
		return errors.Errorf("reading %s: %w", me.input, err)
	}

	tree, err := convert.Decode(data, inFormat)
	if err != nil {
		return errors.Errorf("decoding %s: %w", me.input, err)
	}
	out, err := convert.Encode(tree, outFormat)
	if err != nil {
		return errors.Errorf("encoding %s: %w", outFormat, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("input", me.input).
		Str("from", string(inFormat)).
		Str("to", string(outFormat)).
		Int("bytes", len(out)).
		Msg("converted")

	if me.output != "" {
		return workspace.WriteFile(me.fs, me.output, out)
	}
	if _, err := me.out.Write(out); err != nil {
		return errors.Errorf("writing output: %w", err)
	}
	return nil
}
