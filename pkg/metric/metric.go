// Package metric implements the individual software-quality metric
// strategies. Each strategy computes one metric for one parsed file; the
// aggregator iterates the registry without knowing any strategy's identity.
package metric

import (
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

// Metric identifiers.
const (
	IDLines           = "loc"
	IDFunctions       = "functions"
	IDClasses         = "classes"
	IDImports         = "imports"
	IDTodos           = "todos"
	IDCyclomatic      = "cyclomatic"
	IDMaintainability = "maintainability"
	IDDuplication     = "duplication"
)

// Strategy computes one metric for one file. Implementations are stateless
// with respect to their inputs: the same file, tree and configuration always
// yield the same result, and strategies never observe each other's results.
// A strategy fails only when its required input is absent; metric arithmetic
// edge cases (empty files, zero functions) resolve to defined values.
type Strategy interface {
	ID() string
	Kind() models.Kind
	Compute(f *source.File, tree *parser.Result) (models.MetricResult, error)
}

// CorpusStrategy is implemented by strategies that need one corpus-wide
// pass before per-file computation. PrepareCorpus is called exactly once per
// analysis, before any Compute; the prepared state is read-only afterwards
// so Compute stays safe for concurrent use.
type CorpusStrategy interface {
	Strategy
	PrepareCorpus(files []*source.File)
}

// DefaultRegistry returns the full strategy set in canonical order. Adding
// a metric means adding a strategy here; the aggregator contract does not
// change.
func DefaultRegistry(opts config.Options) []Strategy {
	return []Strategy{
		Lines{},
		Functions{},
		Classes{},
		Imports{},
		Todos{},
		Cyclomatic{},
		Maintainability{},
		NewDuplication(opts),
	}
}
