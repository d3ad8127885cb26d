package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/rag-bench/internal/domain"
)

func TestFileRunStore_CreatesUniqueRunDirs(t *testing.T) {
	resultsDir := t.TempDir()

	first, err := NewFileRunStore(resultsDir)
	require.NoError(t, err)
	second, err := NewFileRunStore(resultsDir)
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir(), second.Dir())
	assert.DirExists(t, first.Dir())
	assert.DirExists(t, second.Dir())
}

func TestFileRunStore_SaveRunRoundTrips(t *testing.T) {
	store, err := NewFileRunStore(t.TempDir())
	require.NoError(t, err)

	run := domain.ImplementationRun{
		Name:    "baseline",
		Dataset: "toy-3",
		Scores: []domain.ScoreSet{
			{"m": domain.AvailableResult("m", 0.8)},
			{"m": domain.UnavailableResult("m", "gated")},
		},
	}
	require.NoError(t, store.SaveRun(run))

	data, err := os.ReadFile(filepath.Join(store.Dir(), "runs", "baseline.json"))
	require.NoError(t, err)

	var loaded domain.ImplementationRun
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, run.Name, loaded.Name)
	assert.Equal(t, run.Dataset, loaded.Dataset)
	require.Len(t, loaded.Scores, 2)
	assert.False(t, loaded.Scores[0]["m"].Unavailable)
	assert.True(t, loaded.Scores[1]["m"].Unavailable)
	assert.Equal(t, "gated", loaded.Scores[1]["m"].Reason)
}

func TestFileRunStore_SaveReportAndArtifact(t *testing.T) {
	store, err := NewFileRunStore(t.TempDir())
	require.NoError(t, err)

	report := domain.NewComparisonReport([]domain.ImplementationRun{
		{Name: "baseline", Scores: []domain.ScoreSet{
			{"m": domain.AvailableResult("m", 0.5)},
		}},
	})
	require.NoError(t, store.SaveReport(report))
	require.NoError(t, store.SaveArtifact("bar.svg", []byte("<svg/>")))

	assert.FileExists(t, filepath.Join(store.Dir(), "report.json"))

	artifact, err := os.ReadFile(filepath.Join(store.Dir(), "bar.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(artifact))
}

func TestFileRunStore_SanitizesNames(t *testing.T) {
	store, err := NewFileRunStore(t.TempDir())
	require.NoError(t, err)

	run := domain.ImplementationRun{Name: "chunk_size=512/variant"}
	require.NoError(t, store.SaveRun(run))

	assert.FileExists(t, filepath.Join(store.Dir(), "runs", "chunk_size=512_variant.json"))
}
