package metric

import (
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

var importKinds = map[string]bool{
	"import_statement":        true,
	"import_from_statement":   true,
	"future_import_statement": true,
}

// Imports counts import statements.
type Imports struct{}

func (Imports) ID() string        { return IDImports }
func (Imports) Kind() models.Kind { return models.KindCount }

func (Imports) Compute(_ *source.File, tree *parser.Result) (models.MetricResult, error) {
	n := parser.CountNodes(tree.Tree.RootNode(), tree.Source, importKinds)
	return models.NewCount(IDImports, int64(n)), nil
}
