package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithScores(name string, scores ...ScoreSet) ImplementationRun {
	return ImplementationRun{Name: name, Dataset: "test", Scores: scores}
}

func TestNewComparisonReport_MeanExcludesUnavailable(t *testing.T) {
	// Five examples, two of them unavailable: the mean denominator is 3.
	run := runWithScores("baseline",
		ScoreSet{"faithfulness": AvailableResult("faithfulness", 0.6)},
		ScoreSet{"faithfulness": UnavailableResult("faithfulness", "missing reference")},
		ScoreSet{"faithfulness": AvailableResult("faithfulness", 0.9)},
		ScoreSet{"faithfulness": UnavailableResult("faithfulness", "batch failed")},
		ScoreSet{"faithfulness": AvailableResult("faithfulness", 0.3)},
	)

	report := NewComparisonReport([]ImplementationRun{run})

	cell, ok := report.Cell("baseline", "faithfulness")
	require.True(t, ok)
	assert.False(t, cell.NoData)
	assert.Equal(t, 3, cell.Samples)
	assert.InDelta(t, 0.6, cell.Mean, 1e-9)
}

func TestNewComparisonReport_Variance(t *testing.T) {
	run := runWithScores("baseline",
		ScoreSet{"m": AvailableResult("m", 0.2)},
		ScoreSet{"m": AvailableResult("m", 0.8)},
	)

	report := NewComparisonReport([]ImplementationRun{run})

	cell, ok := report.Cell("baseline", "m")
	require.True(t, ok)
	assert.InDelta(t, 0.5, cell.Mean, 1e-9)
	assert.InDelta(t, 0.09, cell.Variance, 1e-9)
}

func TestNewComparisonReport_NoDataDistinctFromZero(t *testing.T) {
	allUnavailable := runWithScores("gapped",
		ScoreSet{"m": UnavailableResult("m", "gated")},
		ScoreSet{"m": UnavailableResult("m", "gated")},
	)
	zeroScores := runWithScores("zeroed",
		ScoreSet{"m": AvailableResult("m", 0)},
	)

	report := NewComparisonReport([]ImplementationRun{allUnavailable, zeroScores})

	gapped, ok := report.Cell("gapped", "m")
	require.True(t, ok)
	assert.True(t, gapped.NoData)
	assert.Zero(t, gapped.Samples)

	zeroed, ok := report.Cell("zeroed", "m")
	require.True(t, ok)
	assert.False(t, zeroed.NoData)
	assert.Equal(t, 1, zeroed.Samples)
	assert.Zero(t, zeroed.Mean)
}

func TestNewComparisonReport_RowOrderAndMetricUnion(t *testing.T) {
	first := runWithScores("b-first",
		ScoreSet{"zeta": AvailableResult("zeta", 1)},
	)
	second := runWithScores("a-second",
		ScoreSet{"alpha": AvailableResult("alpha", 1)},
	)

	report := NewComparisonReport([]ImplementationRun{first, second})

	// Rows keep supply order; metrics are the sorted union.
	assert.Equal(t, []string{"b-first", "a-second"}, report.Rows)
	assert.Equal(t, []string{"alpha", "zeta"}, report.Metrics)

	_, ok := report.Cell("b-first", "alpha")
	assert.False(t, ok, "metric absent from a run should not gain a cell")
}

func TestOverallScore_IgnoresNoData(t *testing.T) {
	run := runWithScores("baseline",
		ScoreSet{
			"a": AvailableResult("a", 0.4),
			"b": AvailableResult("b", 0.8),
			"c": UnavailableResult("c", "gated"),
		},
	)

	report := NewComparisonReport([]ImplementationRun{run})

	overall, ok := report.OverallScore("baseline")
	require.True(t, ok)
	assert.InDelta(t, 0.6, overall, 1e-9)

	_, ok = report.OverallScore("unknown")
	assert.False(t, ok)
}

func TestScoreSet_MetricsSortedAndCloneIndependent(t *testing.T) {
	set := ScoreSet{
		"b": AvailableResult("b", 0.5),
		"a": AvailableResult("a", 0.1),
	}
	assert.Equal(t, []string{"a", "b"}, set.Metrics())

	clone := set.Clone()
	clone["a"] = UnavailableResult("a", "mutated")
	assert.False(t, set["a"].Unavailable)
}
