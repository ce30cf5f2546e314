package get_scope

import (
	"context"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xtn/pkg/convert"
	"github.com/walteh/xtn/pkg/diagnostic"
	"github.com/walteh/xtn/pkg/scope"
	"github.com/walteh/xtn/pkg/xtn"
)

type Handler struct {
	fs     afero.Fs
	out    io.Writer
	file   string
	line   int // 1-based
	format string
}

func NewGetScopeCommand(fs afero.Fs) *cobra.Command {
	me := &Handler{fs: fs}

	cmd := &cobra.Command{
		Use:   "get-scope <file> <line>",
		Short: "describe the scope enclosing a line of an xtn document",
		Long: "get-scope prints the stack of containers enclosing the 1-based line and the kind of\n" +
			"position the line is at. Documents with syntax errors are queried on the tree parsed so far.",
	}

	cmd.Flags().StringVar(&me.format, "format", "xtn", "the output format (xtn, json, yaml, toml, msgpack)")
	cmd.Args = cobra.ExactArgs(2)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		line, err := strconv.Atoi(args[1])
		if err != nil || line < 1 {
			return errors.Errorf("line must be a positive number, got %q", args[1])
		}
		me.file = args[0]
		me.line = line
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	f, err := convert.ParseFormat(me.format)
	if err != nil {
		return err
	}

	data, err := afero.ReadFile(me.fs, me.file)
	if err != nil {
		return errors.Errorf("reading %s: %w", me.file, err)
	}

	diags, tree := diagnostic.Check(string(data))
	for _, d := range diags {
		zerolog.Ctx(ctx).Warn().Str("file", me.file).Msg(d.String())
	}

	out, err := convert.Encode(Describe(scope.Locate(tree, me.line-1)), f)
	if err != nil {
		return err
	}
	if _, err := me.out.Write(out); err != nil {
		return errors.Errorf("writing output: %w", err)
	}
	return nil
}

// Describe renders a scope query result as a document.
func Describe(c *scope.Context) *xtn.Object {
	stack := xtn.NewArray()
	for _, e := range c.Stack {
		stack.Elements = append(stack.Elements, describeEntry(e))
	}

	doc := xtn.NewObject()
	doc.Set("kind", xtn.NewText(c.Kind.String()))
	doc.Set("path", xtn.NewText(c.Path()))
	doc.Set("stack", stack)
	return doc
}

func describeEntry(e scope.Entry) *xtn.Object {
	obj := xtn.NewObject()
	obj.Set("container", xtn.NewText(elementKind(e.Container)))
	if e.Element == nil {
		return obj
	}
	if _, ok := e.Container.(*xtn.Array); ok {
		obj.Set("index", xtn.NewText(strconv.Itoa(e.Index)))
	} else {
		obj.Set("key", xtn.NewText(e.Key))
	}
	obj.Set("element", xtn.NewText(elementKind(e.Element)))

	h := e.Element.Head()
	if h.Start.IsValid() {
		obj.Set("start", xtn.NewText(strconv.Itoa(h.Start.Line()+1)))
	}
	if h.End.IsValid() {
		obj.Set("end", xtn.NewText(strconv.Itoa(h.End.Line()+1)))
	}
	return obj
}

func elementKind(el xtn.Element) string {
	switch el.(type) {
	case *xtn.Object:
		return "object"
	case *xtn.Array:
		return "array"
	case *xtn.Text:
		return "text"
	}
	return "unknown"
}
