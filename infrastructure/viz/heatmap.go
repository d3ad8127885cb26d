package viz

import (
	"fmt"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// HeatmapRenderer draws the full rows-by-metrics grid with color-coded
// cells. No-data cells are gray with an "n/a" label so they cannot be
// read as low scores.
type HeatmapRenderer struct{}

// NewHeatmapRenderer returns the heatmap renderer.
func NewHeatmapRenderer() ports.ReportRenderer { return HeatmapRenderer{} }

func (HeatmapRenderer) Name() string      { return "heatmap" }
func (HeatmapRenderer) Extension() string { return "svg" }

// Render produces the chart SVG.
func (HeatmapRenderer) Render(report domain.ComparisonReport) ([]byte, error) {
	doc := newSVGDoc(chartWidth, chartHeight)

	if len(report.Metrics) == 0 || len(report.Rows) == 0 {
		doc.text(chartWidth/2, chartHeight/2, 16, "middle", "no data")
		return doc.bytes(), nil
	}

	const rowLabelWidth = 190.0
	gridLeft := rowLabelWidth
	gridTop := float64(marginTop)
	cellWidth := (float64(chartWidth) - gridLeft - marginRight) / float64(len(report.Metrics))
	cellHeight := (float64(chartHeight) - gridTop - marginBottom) / float64(len(report.Rows))

	for mi, metric := range report.Metrics {
		doc.textRotated(gridLeft+float64(mi)*cellWidth+cellWidth/2, gridTop-8, 12, -35, metric)
	}

	for ri, row := range report.Rows {
		y := gridTop + float64(ri)*cellHeight
		doc.text(gridLeft-8, y+cellHeight/2+4, 12, "end", row)

		for mi, metric := range report.Metrics {
			x := gridLeft + float64(mi)*cellWidth

			cell, ok := report.Cell(row, metric)
			if !ok || cell.NoData {
				doc.rect(x+1, y+1, cellWidth-2, cellHeight-2, noDataColor, `stroke="#999" stroke-dasharray="3,3"`)
				doc.text(x+cellWidth/2, y+cellHeight/2+4, 11, "middle", "n/a")
				continue
			}
			doc.rect(x+1, y+1, cellWidth-2, cellHeight-2, scoreColor(cell.Mean), `stroke="#fff"`)
			doc.text(x+cellWidth/2, y+cellHeight/2+4, 12, "middle", formatScore(cell.Mean))
		}
	}

	doc.text(chartWidth/2, chartHeight-8, 13, "middle", "mean score heatmap")
	return doc.bytes(), nil
}

// scoreColor maps a [0, 1] score onto a red-to-green ramp.
func scoreColor(score float64) string {
	score = clampScore(score)
	red := int(220 * (1 - score))
	green := int(170 * score)
	return fmt.Sprintf("#%02x%02x50", 35+red, 60+green)
}
