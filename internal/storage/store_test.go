package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAnalysisCacheRoundTrip(t *testing.T) {
	store := newTestStore(t)

	// Empty cache returns nil, nil
	got, err := store.GetAnalysisCache("deadbeef")
	require.NoError(t, err)
	assert.Nil(t, got)

	analysis := []byte(`{"damages": [], "totalEstimatedCostINR": 0, "costFactors": []}`)
	require.NoError(t, store.SetAnalysisCache("deadbeef", analysis))

	got, err = store.GetAnalysisCache("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, analysis, got)
}

func TestAnalysisCacheOverwrite(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetAnalysisCache("hash", []byte(`{"v": 1}`)))
	require.NoError(t, store.SetAnalysisCache("hash", []byte(`{"v": 2}`)))

	got, err := store.GetAnalysisCache("hash")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v": 2}`), got)
}

func TestAnalysisCacheSeparateKeys(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetAnalysisCache("a", []byte(`{"v": 1}`)))

	got, err := store.GetAnalysisCache("b")
	require.NoError(t, err)
	assert.Nil(t, got)
}
