package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/pkg/models"
)

func sampleReport(repo string) *models.AnalysisReport {
	return &models.AnalysisReport{
		Repo:              repo,
		AnalyzedAt:        time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		DuplicationWindow: 4,
		DuplicationScope:  "corpus-wide",
		Files: []models.FileReport{
			{
				Path:  "a.py",
				Lines: 3,
				Metrics: map[string]models.MetricResult{
					"loc": models.NewCount("loc", 3),
				},
			},
		},
		Summary: models.Summary{
			NumFiles: 1,
			Totals:   map[string]int64{"loc": 3},
			Averages: map[string]float64{},
		},
	}
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestStoreMissingKey(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			report, found, err := store.Get("absent")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, report)
		})
	}
}

func TestStorePutGet(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleReport("example")
			require.NoError(t, store.Put("key1", want))

			got, found, err := store.Get("key1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, want, got)
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put("key1", sampleReport("first")))
			require.NoError(t, store.Put("key1", sampleReport("second")))

			got, found, err := store.Get("key1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "second", got.Repo)
		})
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put("key1", sampleReport("example")))

	first, _, err := store.Get("key1")
	require.NoError(t, err)
	first.Repo = "mutated"

	second, _, err := store.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, "example", second.Repo)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Put("key1", sampleReport("example")))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	got, found, err := second.Get("key1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "example", got.Repo)
}

func TestSQLiteHistory(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("key-a", sampleReport("repo-a")))
	require.NoError(t, store.Put("key-b", sampleReport("repo-b")))

	entries, err := store.History(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	repos := []string{entries[0].Repo, entries[1].Repo}
	assert.ElementsMatch(t, []string{"repo-a", "repo-b"}, repos)
	assert.Equal(t, 1, entries[0].Summary.NumFiles)
}

func TestSQLiteHistoryLimit(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("key-a", sampleReport("repo-a")))
	require.NoError(t, store.Put("key-b", sampleReport("repo-b")))
	require.NoError(t, store.Put("key-c", sampleReport("repo-c")))

	entries, err := store.History(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
