package cache

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/source"
)

// Computer is the analysis engine the gate fronts.
type Computer interface {
	ComputeAll(ctx context.Context, corpus *source.Corpus, opts config.Options) (*models.AnalysisReport, error)
}

// WarnFunc reports a non-fatal cache problem to the caller.
type WarnFunc func(format string, args ...any)

// Gate sits between callers and the analyzer: a report already stored for
// the (corpus content, options) key is returned without recomputation.
// Cache read and write failures degrade to a plain computation; they never
// fail the analysis. Concurrent requests for the same key compute once.
type Gate struct {
	store    Store
	computer Computer
	warn     WarnFunc

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithWarnFunc sets the sink for cache degradation warnings.
func WithWarnFunc(fn WarnFunc) GateOption {
	return func(g *Gate) {
		g.warn = fn
	}
}

// NewGate creates a gate over the given store and computer.
func NewGate(store Store, computer Computer, opts ...GateOption) *Gate {
	g := &Gate{
		store:    store,
		computer: computer,
		warn:     func(string, ...any) {},
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key derives the cache key for a corpus and options: the BLAKE3 digest of
// the corpus fingerprint and every option that affects metric values.
// ForceRecompute changes behavior, not results, so it is excluded.
func Key(corpus *source.Corpus, opts config.Options) string {
	h := blake3.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s\x00", corpus.Fingerprint(), opts.DuplicationWindow, opts.DuplicationScope)
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Gate) keyLock(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	return l
}

// GetOrCompute returns the stored report for the derived key, or computes
// and stores one. With opts.ForceRecompute set, the lookup is skipped and
// the fresh report overwrites any stored entry.
func (g *Gate) GetOrCompute(ctx context.Context, corpus *source.Corpus, opts config.Options) (*models.AnalysisReport, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	key := Key(corpus, opts)

	if !opts.ForceRecompute {
		report, found, err := g.store.Get(key)
		if err != nil {
			g.warn("cache read failed, recomputing: %v", err)
		} else if found {
			return report, true, nil
		}
	}

	l := g.keyLock(key)
	l.Lock()
	defer l.Unlock()

	// Another caller may have stored the report while this one waited.
	if !opts.ForceRecompute {
		if report, found, err := g.store.Get(key); err == nil && found {
			return report, true, nil
		}
	}

	report, err := g.computer.ComputeAll(ctx, corpus, opts)
	if err != nil {
		return nil, false, err
	}
	if err := g.store.Put(key, report); err != nil {
		g.warn("cache write failed, result not persisted: %v", err)
	}
	return report, false, nil
}
