package metric

import (
	"strings"

	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

// Lines counts non-blank source lines. A line is blank when it contains
// only whitespace.
type Lines struct{}

func (Lines) ID() string        { return IDLines }
func (Lines) Kind() models.Kind { return models.KindCount }

func (Lines) Compute(f *source.File, _ *parser.Result) (models.MetricResult, error) {
	var n int64
	for _, line := range strings.Split(string(f.Text), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return models.NewCount(IDLines, n), nil
}
