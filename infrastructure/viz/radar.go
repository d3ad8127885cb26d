package viz

import (
	"math"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// RadarRenderer draws one polygon per implementation across the metric
// axes. A no-data cell collapses that vertex to the center and marks
// the axis label, so a missing metric is visually distinct from a zero
// score.
type RadarRenderer struct{}

// NewRadarRenderer returns the radar chart renderer.
func NewRadarRenderer() ports.ReportRenderer { return RadarRenderer{} }

func (RadarRenderer) Name() string      { return "radar" }
func (RadarRenderer) Extension() string { return "svg" }

// Render produces the chart SVG.
func (RadarRenderer) Render(report domain.ComparisonReport) ([]byte, error) {
	doc := newSVGDoc(chartWidth, chartHeight)
	legend(doc, report.Rows)

	if len(report.Metrics) < 3 || len(report.Rows) == 0 {
		doc.text(chartWidth/2, chartHeight/2, 16, "middle",
			"radar chart needs at least three metrics")
		return doc.bytes(), nil
	}

	centerX := float64(chartWidth) / 2
	centerY := float64(chartHeight)/2 + 20
	radius := math.Min(float64(chartWidth), float64(chartHeight))/2 - 90

	axisCount := len(report.Metrics)
	angleOf := func(i int) float64 {
		return 2*math.Pi*float64(i)/float64(axisCount) - math.Pi/2
	}

	// Concentric guide rings at 0.25 steps.
	for tick := 0.25; tick <= 1.001; tick += 0.25 {
		ring := make([]point, axisCount)
		for i := range ring {
			angle := angleOf(i)
			ring[i] = point{
				x: centerX + radius*tick*math.Cos(angle),
				y: centerY + radius*tick*math.Sin(angle),
			}
		}
		doc.polygon(ring, "none", "#ddd", 0)
	}

	// Axes and labels.
	for i, metric := range report.Metrics {
		angle := angleOf(i)
		tipX := centerX + radius*math.Cos(angle)
		tipY := centerY + radius*math.Sin(angle)
		doc.line(centerX, centerY, tipX, tipY, "#bbb", 1)

		label := metric
		if metricMissingAnywhere(report, metric) {
			label += " (gaps)"
		}
		anchor := "middle"
		if math.Cos(angle) > 0.3 {
			anchor = "start"
		} else if math.Cos(angle) < -0.3 {
			anchor = "end"
		}
		doc.text(centerX+(radius+16)*math.Cos(angle), centerY+(radius+16)*math.Sin(angle)+4, 12, anchor, label)
	}

	for ri, row := range report.Rows {
		vertices := make([]point, axisCount)
		for i, metric := range report.Metrics {
			angle := angleOf(i)
			value := 0.0
			if cell, ok := report.Cell(row, metric); ok && !cell.NoData {
				value = clampScore(cell.Mean)
			}
			vertices[i] = point{
				x: centerX + radius*value*math.Cos(angle),
				y: centerY + radius*value*math.Sin(angle),
			}
		}
		doc.polygon(vertices, rowColor(ri), rowColor(ri), 0.15)
	}

	return doc.bytes(), nil
}

func metricMissingAnywhere(report domain.ComparisonReport, metric string) bool {
	for _, row := range report.Rows {
		cell, ok := report.Cell(row, metric)
		if !ok || cell.NoData {
			return true
		}
	}
	return false
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
