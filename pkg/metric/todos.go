package metric

import (
	"strings"

	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

// Todos counts comment lines carrying the TODO marker, case-insensitive.
// Python comments are single-line, so one comment node is one line.
type Todos struct{}

func (Todos) ID() string        { return IDTodos }
func (Todos) Kind() models.Kind { return models.KindCount }

func (Todos) Compute(_ *source.File, tree *parser.Result) (models.MetricResult, error) {
	var n int64
	for _, c := range parser.Comments(tree) {
		text := parser.GetNodeText(c, tree.Source)
		if strings.Contains(strings.ToUpper(text), "TODO") {
			n++
		}
	}
	return models.NewCount(IDTodos, n), nil
}
