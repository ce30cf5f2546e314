package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/xtn/pkg/scope"
	"github.com/walteh/xtn/pkg/xtn"
)

const document = `# top
a: 1
o{}:
    # c
    b: 2

    l[]:
        +: x
        +'':
            text
        ----
    ----
----
# tail
`

func TestLocate(t *testing.T) {
	root, err := xtn.Parse(document)
	require.NoError(t, err)

	tests := []struct {
		name     string
		line     int
		wantKind scope.Kind
		wantPath string
		depth    int
	}{
		{"comment above first key", 0, scope.KindComment, "a", 1},
		{"inline key line", 1, scope.KindKeyLine, "a", 1},
		{"object key line", 2, scope.KindKeyLine, "o", 1},
		{"comment inside object", 3, scope.KindComment, "o.b", 2},
		{"nested key line", 4, scope.KindKeyLine, "o.b", 2},
		{"blank line inside object", 5, scope.KindObject, "o.l", 2},
		{"array key line", 6, scope.KindKeyLine, "o.l", 2},
		{"array element", 7, scope.KindKeyLine, "o.l[0]", 3},
		{"text block key line", 8, scope.KindKeyLine, "o.l[1]", 3},
		{"text block body", 9, scope.KindComplexBody, "o.l[1]", 3},
		{"text block end", 10, scope.KindEndLine, "o.l[1]", 3},
		{"array end", 11, scope.KindEndLine, "o.l", 2},
		{"object end", 12, scope.KindEndLine, "o", 1},
		{"trailing comment", 13, scope.KindComment, "", 1},
		{"past the document", 20, scope.KindObject, "", 1},
		{"before the document", -1, scope.KindObject, "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := scope.Locate(root, tt.line)
			assert.Equal(t, tt.wantKind, ctx.Kind, "got %s", ctx.Kind)
			assert.Equal(t, tt.wantPath, ctx.Path())
			assert.Len(t, ctx.Stack, tt.depth)
			assert.Same(t, root, ctx.Stack[0].Container)
		})
	}
}

func TestLocateEntries(t *testing.T) {
	root, err := xtn.Parse(document)
	require.NoError(t, err)

	ctx := scope.Locate(root, 9)
	require.Len(t, ctx.Stack, 3)

	o, _ := root.Get("o")
	l, _ := o.(*xtn.Object).Get("l")
	arr := l.(*xtn.Array)

	inner := ctx.Innermost()
	assert.Same(t, arr, inner.Container)
	assert.Equal(t, 1, inner.Index)
	assert.Equal(t, "", inner.Key)
	assert.Same(t, arr.Elements[1], inner.Element)

	assert.Equal(t, "l", ctx.Stack[1].Key)
	assert.Equal(t, -1, ctx.Stack[1].Index)

	past := scope.Locate(root, 13).Innermost()
	assert.Nil(t, past.Element)
	assert.Equal(t, -1, past.Index)
}

func TestLocateUnterminated(t *testing.T) {
	_, err := xtn.Parse("o{}:\n    a: 1\n    l[]:\n        +: x\n\n")
	var pe *xtn.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, xtn.CodeMissingCloseMarker, pe.Code)

	ctx := scope.Locate(pe.Tree, 4)
	assert.Equal(t, scope.KindArray, ctx.Kind)
	assert.Len(t, ctx.Stack, 3)
	assert.Equal(t, "o.l", ctx.Path())
	assert.Nil(t, ctx.Innermost().Element)

	_, err = xtn.Parse("note'':\n    one\n    two\n")
	require.ErrorAs(t, err, &pe)
	ctx = scope.Locate(pe.Tree, 2)
	assert.Equal(t, scope.KindComplexBody, ctx.Kind)
	assert.Equal(t, "note", ctx.Path())
}

func TestLocateNegativeLineIgnoresUnpositionedComments(t *testing.T) {
	root := xtn.NewObject()
	root.CommentsInnerTop = []xtn.Comment{{Value: "built"}}
	text := xtn.NewText("v")
	text.CommentsAbove = []xtn.Comment{{Value: "above"}}
	root.Set("k", text)

	for _, line := range []int{-1, -2} {
		ctx := scope.Locate(root, line)
		assert.Equal(t, scope.KindObject, ctx.Kind, "got %s", ctx.Kind)
		require.Len(t, ctx.Stack, 1)
		assert.Same(t, root, ctx.Stack[0].Container)
		assert.Equal(t, -1, ctx.Stack[0].Index)
		assert.Nil(t, ctx.Stack[0].Element)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "complex-body", scope.KindComplexBody.String())
	assert.Equal(t, "Kind(42)", scope.Kind(42).String())
}
