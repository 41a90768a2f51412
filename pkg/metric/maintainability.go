package metric

import (
	"math"

	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

// Maintainability computes the maintainability index for a file on a 0-100
// scale using the classic formula
//
//	raw = 171 - 5.2*ln(V) - 0.23*CC - 16.2*ln(LOC)
//
// rescaled by 100/171 and clamped to [0, 100]. V is the Halstead volume
// proxy over the file's tokens, CC the file's summed cyclomatic complexity,
// LOC the summed line spans of its functions. V, CC and LOC are floored at
// 1 so the logarithms stay defined; the result is rounded to one decimal so
// scores stay comparable across files.
type Maintainability struct{}

func (Maintainability) ID() string        { return IDMaintainability }
func (Maintainability) Kind() models.Kind { return models.KindScore }

func (Maintainability) Compute(_ *source.File, tree *parser.Result) (models.MetricResult, error) {
	var loc int64
	for _, fn := range parser.Functions(tree) {
		loc += int64(fn.EndLine - fn.StartLine + 1)
	}
	cc, _ := FileComplexity(tree)
	volume := halsteadVolume(tree.Tree.RootNode(), tree.Source)

	v := math.Max(volume, 1)
	c := math.Max(float64(cc), 1)
	l := math.Max(float64(loc), 1)

	raw := 171.0 - 5.2*math.Log(v) - 0.23*c - 16.2*math.Log(l)
	mi := raw * 100.0 / 171.0
	mi = math.Round(mi*10) / 10
	if mi < 0 {
		mi = 0
	} else if mi > 100 {
		mi = 100
	}
	return models.NewScore(IDMaintainability, mi), nil
}
