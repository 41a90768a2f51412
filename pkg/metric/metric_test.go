package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

func parsePython(t *testing.T, text string) (*source.File, *parser.Result) {
	t.Helper()
	p := parser.New()
	t.Cleanup(p.Close)

	f := &source.File{Path: "test.py", Text: []byte(text)}
	res, err := p.Parse(f.Text, f.Path)
	require.NoError(t, err)
	return f, res
}

func TestDefaultRegistry(t *testing.T) {
	strategies := DefaultRegistry(config.DefaultOptions())
	require.Len(t, strategies, 8)

	seen := make(map[string]bool)
	for _, s := range strategies {
		assert.False(t, seen[s.ID()], "duplicate strategy id %s", s.ID())
		seen[s.ID()] = true
	}
	for _, id := range []string{IDLines, IDFunctions, IDClasses, IDImports, IDTodos, IDCyclomatic, IDMaintainability, IDDuplication} {
		assert.True(t, seen[id], "missing strategy %s", id)
	}
}

func TestLines(t *testing.T) {
	f, res := parsePython(t, "x = 1\n\n   \ny = 2\n")

	result, err := Lines{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, models.KindCount, result.Kind)
	assert.Equal(t, int64(2), result.Count)
}

func TestLinesEmptyFile(t *testing.T) {
	f, res := parsePython(t, "")

	result, err := Lines{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Count)
}

func TestFunctionsAndClasses(t *testing.T) {
	f, res := parsePython(t, `class Greeter:
    def greet(self):
        return "hi"

def helper():
    def inner():
        pass
    return inner
`)

	fns, err := Functions{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fns.Count, "methods and nested functions count")

	cls, err := Classes{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cls.Count)
}

func TestImports(t *testing.T) {
	f, res := parsePython(t, `import os
import sys, json
from pathlib import Path
from __future__ import annotations

x = 1
`)

	result, err := Imports{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Count, "each import statement counts once")
}

func TestTodos(t *testing.T) {
	f, res := parsePython(t, `# TODO: handle empty input
x = 1  # todo lowercase also counts
# regular comment
# FIXME: not a todo
`)

	result, err := Todos{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Count)
}

func TestCyclomaticSimpleFunction(t *testing.T) {
	f, res := parsePython(t, `def check(x):
    if x > 0:
        return 1
    return 0
`)

	result, err := Cyclomatic{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Count, "one function with one branch")
	assert.Equal(t, int64(1), result.Samples)
}

func TestCyclomaticNoFunctions(t *testing.T) {
	f, res := parsePython(t, "x = 1\nif x:\n    x = 2\n")

	result, err := Cyclomatic{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Count, "module-level branches belong to no function")
	assert.Equal(t, int64(0), result.Samples)
}

func TestCyclomaticDecisionKinds(t *testing.T) {
	f, res := parsePython(t, `def busy(items):
    total = 0
    for item in items:
        if item and total < 10:
            total += 1
        elif item is None:
            total -= 1
    while total > 0:
        total -= 1
    try:
        return total if total else -1
    except ValueError:
        return 0
`)

	// 1 + for + if + and + elif + while + conditional + except = 8
	result, err := Cyclomatic{}.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, int64(8), result.Count)
}

func TestMaintainabilityBounds(t *testing.T) {
	cases := map[string]string{
		"trivial": "def f():\n    return 1\n",
		"branchy": `def g(a, b, c):
    if a and b:
        return a
    elif b or c:
        return b
    for i in range(10):
        if i > 5:
            c += i
    return c
`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			f, res := parsePython(t, text)
			result, err := Maintainability{}.Compute(f, res)
			require.NoError(t, err)
			assert.Equal(t, models.KindScore, result.Kind)
			assert.GreaterOrEqual(t, result.Score, 0.0)
			assert.LessOrEqual(t, result.Score, 100.0)
		})
	}
}

func TestMaintainabilityOrdersByComplexity(t *testing.T) {
	fSimple, resSimple := parsePython(t, "def f():\n    return 1\n")
	simple, err := Maintainability{}.Compute(fSimple, resSimple)
	require.NoError(t, err)

	fBusy, resBusy := parsePython(t, `def g(a, b, c, d):
    out = []
    for i in range(a):
        if i % 2 and b > i:
            out.append(i)
        elif c or d:
            out.append(-i)
        else:
            while d > 0:
                d -= 1
    return out

def h(x):
    if x:
        return [v for v in x if v]
    return None
`)
	busy, err := Maintainability{}.Compute(fBusy, resBusy)
	require.NoError(t, err)

	assert.Greater(t, simple.Score, busy.Score)
}

func TestMaintainabilityRoundedToOneDecimal(t *testing.T) {
	f, res := parsePython(t, "def f(a, b):\n    if a:\n        return b\n    return a\n")
	result, err := Maintainability{}.Compute(f, res)
	require.NoError(t, err)
	assert.InDelta(t, math.Round(result.Score*10), result.Score*10, 1e-6)
}

func TestHalsteadVolumeEmptyish(t *testing.T) {
	_, res := parsePython(t, "")
	assert.Equal(t, 0.0, halsteadVolume(res.Tree.RootNode(), res.Source))
}
