// Package cache persists analysis reports keyed by corpus content and
// analysis options, and fronts the analyzer with a gate that returns a
// stored report when one exists for the key.
package cache

import "github.com/repolens/repolens/pkg/models"

// Store persists analysis reports by key. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the report stored under key, or found=false when none
	// exists. An error means the lookup itself failed.
	Get(key string) (report *models.AnalysisReport, found bool, err error)

	// Put stores a report under key, replacing any previous entry.
	Put(key string, report *models.AnalysisReport) error
}
