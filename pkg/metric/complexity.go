package metric

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

// decisionKinds are the node kinds that introduce an alternative execution
// path. Each boolean_operator node is one and/or operator.
var decisionKinds = map[string]bool{
	"if_statement":           true,
	"elif_clause":            true,
	"for_statement":          true,
	"while_statement":        true,
	"except_clause":          true,
	"boolean_operator":       true,
	"conditional_expression": true,
}

// Cyclomatic computes cyclomatic complexity: per function, 1 plus the
// number of decision points in its subtree. The file value is the sum over
// all functions; a file with no functions has complexity 0. Samples carries
// the function count so the aggregator can average per function across the
// corpus.
type Cyclomatic struct{}

func (Cyclomatic) ID() string        { return IDCyclomatic }
func (Cyclomatic) Kind() models.Kind { return models.KindCount }

func (Cyclomatic) Compute(_ *source.File, tree *parser.Result) (models.MetricResult, error) {
	total, functions := FileComplexity(tree)
	return models.NewCountWithSamples(IDCyclomatic, total, int64(functions)), nil
}

// FileComplexity returns the summed function-level cyclomatic complexity
// and the number of functions in the file.
func FileComplexity(tree *parser.Result) (int64, int) {
	functions := parser.Functions(tree)
	var total int64
	for _, fn := range functions {
		total += FunctionComplexity(fn, tree.Source)
	}
	return total, len(functions)
}

// FunctionComplexity computes 1 + decision points for one function. Nested
// function bodies count toward the enclosing function as well as their own.
func FunctionComplexity(fn parser.FunctionNode, source []byte) int64 {
	if fn.Body == nil {
		return 1
	}
	var decisions int64
	parser.WalkTyped(fn.Body, source, func(_ *sitter.Node, kind string, _ []byte) bool {
		if decisionKinds[kind] {
			decisions++
		}
		return true
	})
	return 1 + decisions
}
