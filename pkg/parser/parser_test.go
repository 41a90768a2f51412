package parser

import (
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte("def f():\n    return 1\n"), "valid.py")
	require.NoError(t, err)
	assert.Equal(t, "valid.py", res.Path)
	assert.Equal(t, "module", res.Tree.RootNode().Type())
}

func TestParseInvalidSyntax(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte("def f(:\n    return\n"), "broken.py")
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "broken.py", parseErr.Path)
}

func TestParseEmpty(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse(nil, "empty.py")
	require.NoError(t, err)
	assert.Equal(t, 0, int(res.Tree.RootNode().ChildCount()))
}

func TestFunctions(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte(`def outer(x):
    def inner():
        pass
    return inner

class C:
    def method(self):
        return 1
`), "funcs.py")
	require.NoError(t, err)

	fns := Functions(res)
	require.Len(t, fns, 3)

	names := make([]string, 0, len(fns))
	for _, fn := range fns {
		names = append(names, fn.Name)
		assert.NotNil(t, fn.Body)
		assert.GreaterOrEqual(t, fn.EndLine, fn.StartLine)
	}
	assert.ElementsMatch(t, []string{"outer", "inner", "method"}, names)
}

func TestFunctionLineSpans(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte("x = 1\n\ndef f():\n    a = 1\n    return a\n"), "span.py")
	require.NoError(t, err)

	fns := Functions(res)
	require.Len(t, fns, 1)
	assert.Equal(t, uint32(3), fns[0].StartLine)
	assert.Equal(t, uint32(5), fns[0].EndLine)
}

func TestWalkPrunesSubtree(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte("def f():\n    if x:\n        return 1\n"), "prune.py")
	require.NoError(t, err)

	var sawIf bool
	Walk(res.Tree.RootNode(), res.Source, func(node *sitter.Node, _ []byte) bool {
		if node.Type() == "if_statement" {
			sawIf = true
		}
		// Prune at the function: nothing inside should be visited.
		return node.Type() != "function_definition"
	})
	assert.False(t, sawIf)
}

func TestCountNodes(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte("import os\nimport sys\nfrom json import loads\n"), "imports.py")
	require.NoError(t, err)

	n := CountNodes(res.Tree.RootNode(), res.Source, map[string]bool{
		"import_statement": true,
	})
	assert.Equal(t, 2, n)
}

func TestComments(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte("# first\nx = 1  # second\n"), "comments.py")
	require.NoError(t, err)

	comments := Comments(res)
	require.Len(t, comments, 2)
	assert.Equal(t, "# first", GetNodeText(comments[0], res.Source))
}

func TestGetNodeTextNil(t *testing.T) {
	assert.Equal(t, "", GetNodeText(nil, []byte("x")))
}
