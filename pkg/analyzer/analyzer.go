// Package analyzer runs every registered metric strategy over a corpus and
// reduces the per-file results into one analysis report. It is the single
// entry point for metric computation: callers never see individual
// strategies, and adding a metric is a registry change only.
package analyzer

import (
	"context"
	"errors"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/repolens/repolens/internal/fileproc"
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/metric"
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
)

// Registry builds the strategy set for a given set of options.
type Registry func(config.Options) []metric.Strategy

// Analyzer computes all registered metrics over a corpus.
type Analyzer struct {
	registry Registry
	progress fileproc.ProgressFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRegistry replaces the default strategy registry.
func WithRegistry(reg Registry) Option {
	return func(a *Analyzer) {
		a.registry = reg
	}
}

// WithProgress sets a callback invoked after each file is processed.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.progress = fn
	}
}

// New creates an analyzer with the default strategy registry.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{registry: metric.DefaultRegistry}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ComputeAll parses every file in the corpus and runs every registered
// strategy over the parsed files, in parallel across files. A file that
// fails to parse is recorded and skipped; the rest of the corpus proceeds.
// The returned report is a deterministic function of corpus content and
// options: files sorted by path, sums for count metrics, means for score
// metrics, and weighted means for count metrics that carry sample counts.
func (a *Analyzer) ComputeAll(ctx context.Context, corpus *source.Corpus, opts config.Options) (*models.AnalysisReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	strategies := a.registry(opts)
	for _, s := range strategies {
		if cs, ok := s.(metric.CorpusStrategy); ok {
			cs.PrepareCorpus(corpus.Files)
		}
	}

	files, errs := fileproc.MapFiles(ctx, corpus.Files, func(psr *parser.Parser, f *source.File) (models.FileReport, error) {
		res, err := psr.Parse(f.Text, f.Path)
		if err != nil {
			return models.FileReport{}, err
		}
		fr := models.FileReport{
			Path:    f.Path,
			Lines:   f.LineCount(),
			Metrics: make(map[string]models.MetricResult, len(strategies)),
		}
		for _, s := range strategies {
			result, err := s.Compute(f, res)
			if err != nil {
				return models.FileReport{}, err
			}
			fr.Metrics[s.ID()] = result
		}
		return fr, nil
	}, a.progress)

	if errs != nil {
		for _, fe := range errs.Errors {
			if errors.Is(fe.Err, context.Canceled) || errors.Is(fe.Err, context.DeadlineExceeded) {
				return nil, fe.Err
			}
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	report := &models.AnalysisReport{
		Repo:              corpus.Root,
		AnalyzedAt:        time.Now().UTC(),
		DuplicationWindow: opts.DuplicationWindow,
		DuplicationScope:  string(opts.DuplicationScope),
		Files:             files,
		Summary:           buildSummary(strategies, files),
	}
	if errs != nil {
		failures := make([]models.FileFailure, 0, len(errs.Errors))
		for _, fe := range errs.Errors {
			failures = append(failures, models.FileFailure{Path: fe.Path, Reason: fe.Err.Error()})
		}
		sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
		report.Failures = failures
	}
	report.Summary.NumFiles = len(files)
	report.Summary.ParseFailures = len(report.Failures)
	return report, nil
}

// buildSummary reduces per-file results: sums for count metrics, means for
// score metrics over the parsed files, and sum/samples for count metrics
// with a per-unit denominator (files contributing zero samples drop out of
// that denominator).
func buildSummary(strategies []metric.Strategy, files []models.FileReport) models.Summary {
	summary := models.Summary{
		Totals:   make(map[string]int64),
		Averages: make(map[string]float64),
	}

	for _, s := range strategies {
		id := s.ID()
		switch s.Kind() {
		case models.KindCount:
			var total, samples int64
			for _, fr := range files {
				result := fr.Metrics[id]
				total += result.Count
				samples += result.Samples
			}
			summary.Totals[id] = total
			if samples > 0 {
				summary.Averages[id] = float64(total) / float64(samples)
			}
		case models.KindScore:
			scores := make([]float64, 0, len(files))
			for _, fr := range files {
				scores = append(scores, fr.Metrics[id].Score)
			}
			if len(scores) > 0 {
				summary.Averages[id] = stat.Mean(scores, nil)
			}
		}
	}
	return summary
}
