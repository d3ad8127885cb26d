package domain

import (
	"sort"
	"time"
)

// ReportCell is one aggregated (row, metric) entry of a comparison
// report. A cell with zero available samples is marked NoData rather
// than reporting a mean of zero.
type ReportCell struct {
	// Mean is the arithmetic mean over available samples.
	Mean float64 `json:"mean"`

	// Variance is the population variance over available samples.
	Variance float64 `json:"variance"`

	// Samples counts the examples that contributed to the mean.
	// Examples marked unavailable for the metric are excluded from the
	// denominator, not treated as zero.
	Samples int `json:"samples"`

	// NoData indicates the metric had no available samples for this row.
	NoData bool `json:"no_data,omitempty"`
}

// ComparisonReport is a read-only aggregation of one or more
// implementation runs into per-metric summary statistics. The same
// table shape serves implementation comparisons and parameter sweeps:
// rows are run names, columns are metric names. Reports hold aggregated
// copies only and never reference the runs they summarize.
type ComparisonReport struct {
	// Rows lists the run names in the order the runs were supplied.
	Rows []string `json:"rows"`

	// Metrics lists the metric columns in sorted order.
	Metrics []string `json:"metrics"`

	// Cells maps row name to metric name to the aggregated cell.
	Cells map[string]map[string]ReportCell `json:"cells"`

	// GeneratedAt records when the aggregation was computed.
	GeneratedAt time.Time `json:"generated_at"`
}

// NewComparisonReport reduces the given runs to a comparison table.
// Aggregation is order-independent: for each (run, metric) pair the
// mean and variance are taken over exactly the examples where the
// metric has an available score.
func NewComparisonReport(runs []ImplementationRun) ComparisonReport {
	report := ComparisonReport{
		Rows:        make([]string, 0, len(runs)),
		Cells:       make(map[string]map[string]ReportCell, len(runs)),
		GeneratedAt: time.Now().UTC(),
	}

	metricSet := make(map[string]struct{})
	for _, run := range runs {
		report.Rows = append(report.Rows, run.Name)

		cells := make(map[string]ReportCell)
		for _, metric := range run.MetricNames() {
			metricSet[metric] = struct{}{}
			cells[metric] = aggregateMetric(run.Scores, metric)
		}
		report.Cells[run.Name] = cells
	}

	report.Metrics = make([]string, 0, len(metricSet))
	for metric := range metricSet {
		report.Metrics = append(report.Metrics, metric)
	}
	sort.Strings(report.Metrics)

	return report
}

// aggregateMetric computes the mean and population variance of one
// metric across a run's score sets, counting only available results.
func aggregateMetric(scores []ScoreSet, metric string) ReportCell {
	var sum float64
	var n int
	for _, set := range scores {
		result, ok := set[metric]
		if !ok || result.Unavailable {
			continue
		}
		sum += result.Score
		n++
	}

	if n == 0 {
		return ReportCell{NoData: true}
	}

	mean := sum / float64(n)

	var sq float64
	for _, set := range scores {
		result, ok := set[metric]
		if !ok || result.Unavailable {
			continue
		}
		d := result.Score - mean
		sq += d * d
	}

	return ReportCell{
		Mean:     mean,
		Variance: sq / float64(n),
		Samples:  n,
	}
}

// Cell returns the aggregated cell for the given row and metric.
// The second return value is false when the row is unknown or the
// metric never appeared in that row's run.
func (r ComparisonReport) Cell(row, metric string) (ReportCell, bool) {
	cells, ok := r.Cells[row]
	if !ok {
		return ReportCell{}, false
	}
	cell, ok := cells[metric]
	return cell, ok
}

// OverallScore returns the mean of the row's per-metric means, ignoring
// no-data cells. The second return value is false when every cell for
// the row is no-data.
func (r ComparisonReport) OverallScore(row string) (float64, bool) {
	cells, ok := r.Cells[row]
	if !ok {
		return 0, false
	}

	var sum float64
	var n int
	for _, cell := range cells {
		if cell.NoData {
			continue
		}
		sum += cell.Mean
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
