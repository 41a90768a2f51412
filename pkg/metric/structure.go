package metric

import (
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

// Functions counts function definitions at any nesting depth.
type Functions struct{}

func (Functions) ID() string        { return IDFunctions }
func (Functions) Kind() models.Kind { return models.KindCount }

func (Functions) Compute(_ *source.File, tree *parser.Result) (models.MetricResult, error) {
	n := parser.CountNodes(tree.Tree.RootNode(), tree.Source, map[string]bool{
		"function_definition": true,
	})
	return models.NewCount(IDFunctions, int64(n)), nil
}

// Classes counts class definitions at any nesting depth.
type Classes struct{}

func (Classes) ID() string        { return IDClasses }
func (Classes) Kind() models.Kind { return models.KindCount }

func (Classes) Compute(_ *source.File, tree *parser.Result) (models.MetricResult, error) {
	n := parser.CountNodes(tree.Tree.RootNode(), tree.Source, map[string]bool{
		"class_definition": true,
	})
	return models.NewCount(IDClasses, int64(n)), nil
}
