package metric

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

// Duplication computes the duplicated-line ratio of a file: normalized
// lines are grouped into overlapping windows of W consecutive lines, each
// window is hashed, and a window is duplicated when its hash occurs more
// than once in scope (within the file, or anywhere in the corpus when the
// scope is corpus-wide). The ratio is the number of normalized lines
// covered by at least one duplicated window, divided by the normalized
// line count. Hash-index matching keeps the cost linear in total lines.
type Duplication struct {
	window int
	scope  config.Scope
	index  map[uint64]int // corpus-wide window counts, built by PrepareCorpus
}

// NewDuplication creates the duplication strategy for validated options.
func NewDuplication(opts config.Options) *Duplication {
	return &Duplication{
		window: opts.DuplicationWindow,
		scope:  opts.DuplicationScope,
	}
}

func (d *Duplication) ID() string        { return IDDuplication }
func (d *Duplication) Kind() models.Kind { return models.KindScore }

// PrepareCorpus builds the corpus-wide window hash index. In per-file
// scope it is a no-op. The index is read-only after this call.
func (d *Duplication) PrepareCorpus(files []*source.File) {
	if d.scope != config.ScopeCorpus {
		return
	}
	index := make(map[uint64]int)
	for _, f := range files {
		for _, h := range windowHashes(NormalizeLines(f.Text), d.window) {
			index[h]++
		}
	}
	d.index = index
}

func (d *Duplication) Compute(f *source.File, _ *parser.Result) (models.MetricResult, error) {
	lines := NormalizeLines(f.Text)
	if len(lines) < d.window {
		// Too short to form a single window: zero duplication, never a
		// division error.
		return models.NewScore(IDDuplication, 0), nil
	}

	hashes := windowHashes(lines, d.window)
	counts := d.index
	if counts == nil {
		counts = make(map[uint64]int, len(hashes))
		for _, h := range hashes {
			counts[h]++
		}
	}

	// Each duplicated line counts once no matter how many overlapping
	// windows cover it.
	covered := roaring.New()
	for i, h := range hashes {
		if counts[h] > 1 {
			covered.AddRange(uint64(i), uint64(i+d.window))
		}
	}

	ratio := float64(covered.GetCardinality()) / float64(len(lines))
	return models.NewScore(IDDuplication, ratio), nil
}

// NormalizeLines reduces source text to comparable content lines: blank
// lines and comment-only lines are dropped, trailing comments stripped, and
// runs of whitespace collapsed to single spaces.
func NormalizeLines(text []byte) []string {
	var lines []string
	for _, raw := range strings.Split(string(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
			if line == "" {
				continue
			}
		}
		lines = append(lines, strings.Join(strings.Fields(line), " "))
	}
	return lines
}

// windowHashes returns one xxhash64 per window of w consecutive lines.
// Returns nil when fewer than w lines exist.
func windowHashes(lines []string, w int) []uint64 {
	if w < 1 || len(lines) < w {
		return nil
	}
	hashes := make([]uint64, 0, len(lines)-w+1)
	for i := 0; i+w <= len(lines); i++ {
		h := xxhash.New()
		for j := i; j < i+w; j++ {
			_, _ = h.WriteString(lines[j])
			_, _ = h.Write([]byte{'\n'})
		}
		hashes = append(hashes, h.Sum64())
	}
	return hashes
}
