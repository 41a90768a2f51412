package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/source"
)

func dupOptions(window int, scope config.Scope) config.Options {
	return config.Options{DuplicationWindow: window, DuplicationScope: scope}
}

func TestDuplicationRepeatedBlock(t *testing.T) {
	// Ten content lines where the first four repeat as the last four. With
	// a window of 4 the two blocks match, covering 8 of 10 lines.
	f, res := parsePython(t, `a = 1
b = 2
c = 3
d = 4
e = 5
f = 6
a = 1
b = 2
c = 3
d = 4
`)

	d := NewDuplication(dupOptions(4, config.ScopePerFile))
	result, err := d.Compute(f, res)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, result.Score, 1e-9)
}

func TestDuplicationAllDistinct(t *testing.T) {
	f, res := parsePython(t, "a = 1\nb = 2\nc = 3\nd = 4\ne = 5\n")

	d := NewDuplication(dupOptions(4, config.ScopePerFile))
	result, err := d.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
}

func TestDuplicationShorterThanWindow(t *testing.T) {
	f, res := parsePython(t, "a = 1\nb = 2\n")

	d := NewDuplication(dupOptions(4, config.ScopePerFile))
	result, err := d.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
}

func TestDuplicationIgnoresCommentsAndBlanks(t *testing.T) {
	withNoise := `a = 1

# a comment
b = 2   # trailing
c = 3
d = 4
a = 1
b = 2
c = 3  # another trailing
d = 4
`
	bare := "a = 1\nb = 2\nc = 3\nd = 4\na = 1\nb = 2\nc = 3\nd = 4\n"

	f1, r1 := parsePython(t, withNoise)
	f2, r2 := parsePython(t, bare)

	d := NewDuplication(dupOptions(4, config.ScopePerFile))
	noisy, err := d.Compute(f1, r1)
	require.NoError(t, err)
	clean, err := d.Compute(f2, r2)
	require.NoError(t, err)
	assert.Equal(t, clean.Score, noisy.Score)
}

func TestDuplicationCorpusScope(t *testing.T) {
	// The same block in two different files: invisible per-file, fully
	// duplicated corpus-wide.
	block := "a = 1\nb = 2\nc = 3\nd = 4\n"
	fileA := &source.File{Path: "a.py", Text: []byte(block)}
	fileB := &source.File{Path: "b.py", Text: []byte(block)}

	perFile := NewDuplication(dupOptions(4, config.ScopePerFile))
	_, resA := parsePython(t, block)
	got, err := perFile.Compute(fileA, resA)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Score)

	corpus := NewDuplication(dupOptions(4, config.ScopeCorpus))
	corpus.PrepareCorpus([]*source.File{fileA, fileB})
	got, err = corpus.Compute(fileA, resA)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Score)
}

func TestDuplicationWindowSizeMatters(t *testing.T) {
	// Two identical 3-line runs separated by distinct lines: found with a
	// window of 3, invisible with a window of 4.
	text := `a = 1
b = 2
c = 3
x = 9
y = 8
a = 1
b = 2
c = 3
`
	f, res := parsePython(t, text)

	w3 := NewDuplication(dupOptions(3, config.ScopePerFile))
	got, err := w3.Compute(f, res)
	require.NoError(t, err)
	assert.Greater(t, got.Score, 0.0)

	w4 := NewDuplication(dupOptions(4, config.ScopePerFile))
	got, err = w4.Compute(f, res)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Score)
}

func TestNormalizeLines(t *testing.T) {
	lines := NormalizeLines([]byte("  a   =  1 \n\n# only comment\nb = 2  # trailing\n   \n"))
	assert.Equal(t, []string{"a = 1", "b = 2"}, lines)
}

func TestWindowHashesDistinguishLineBoundaries(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must hash differently.
	h1 := windowHashes([]string{"ab", "c"}, 2)
	h2 := windowHashes([]string{"a", "bc"}, 2)
	require.Len(t, h1, 1)
	require.Len(t, h2, 1)
	assert.NotEqual(t, h1[0], h2[0])
}
