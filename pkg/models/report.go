// Package models defines the report types produced by the metrics engine.
// All types serialize to a stable JSON form so reports can be persisted and
// redisplayed without recomputation.
package models

import (
	"encoding/json"
	"time"
)

// Kind discriminates how a metric value is typed and aggregated.
type Kind string

const (
	// KindCount values are non-negative integers summed at corpus level.
	KindCount Kind = "count"
	// KindScore values are bounded floats averaged at corpus level.
	KindScore Kind = "score"
)

// MetricResult is one metric's value for one file.
type MetricResult struct {
	Metric string `json:"metric"`
	Kind   Kind   `json:"kind"`
	Count  int64  `json:"count"`
	Score  float64 `json:"score"`
	// Samples is the number of units Count sums over (functions for
	// cyclomatic complexity). The aggregator uses it as the denominator
	// weight when averaging a count metric across the corpus. Zero for
	// metrics without a per-unit denominator.
	Samples int64 `json:"samples,omitempty"`
}

// NewCount builds a count-kind result.
func NewCount(metric string, n int64) MetricResult {
	return MetricResult{Metric: metric, Kind: KindCount, Count: n}
}

// NewCountWithSamples builds a count-kind result carrying an averaging weight.
func NewCountWithSamples(metric string, n, samples int64) MetricResult {
	return MetricResult{Metric: metric, Kind: KindCount, Count: n, Samples: samples}
}

// NewScore builds a score-kind result.
func NewScore(metric string, v float64) MetricResult {
	return MetricResult{Metric: metric, Kind: KindScore, Score: v}
}

// FileReport holds every metric computed for one successfully parsed file.
// Every registered strategy contributes exactly one entry to Metrics.
type FileReport struct {
	Path    string                  `json:"path"`
	Lines   int                     `json:"lines"`
	Metrics map[string]MetricResult `json:"metrics"`
}

// FileFailure records a file excluded from analysis.
type FileFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary aggregates per-file results over the whole corpus. Totals holds
// sums for count metrics; Averages holds means for score metrics plus
// weighted averages for count metrics that carry Samples.
type Summary struct {
	NumFiles      int                `json:"num_files"`
	ParseFailures int                `json:"parse_failures"`
	Totals        map[string]int64   `json:"totals"`
	Averages      map[string]float64 `json:"averages"`
}

// AnalysisReport is the full result of analyzing one corpus with one
// configuration. Files are sorted by path; aggregate values are
// deterministic functions of the per-file reports.
type AnalysisReport struct {
	Repo              string        `json:"repo"`
	AnalyzedAt        time.Time     `json:"analyzed_at"`
	DuplicationWindow int           `json:"duplication_window"`
	DuplicationScope  string        `json:"duplication_scope"`
	Files             []FileReport  `json:"files"`
	Failures          []FileFailure `json:"failures,omitempty"`
	Summary           Summary       `json:"summary"`
}

// Marshal serializes the report to its stable JSON form.
func (r *AnalysisReport) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalReport deserializes a report previously produced by Marshal.
func UnmarshalReport(data []byte) (*AnalysisReport, error) {
	var r AnalysisReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
