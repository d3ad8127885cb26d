package viz

import (
	"math"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// BarRenderer draws a grouped bar chart: one cluster per metric, one
// bar per implementation. No-data cells get a short hatched stub with
// an "n/a" label instead of a zero-height bar.
type BarRenderer struct{}

// NewBarRenderer returns the grouped bar chart renderer.
func NewBarRenderer() ports.ReportRenderer { return BarRenderer{} }

func (BarRenderer) Name() string      { return "bar" }
func (BarRenderer) Extension() string { return "svg" }

// Render produces the chart SVG.
func (BarRenderer) Render(report domain.ComparisonReport) ([]byte, error) {
	doc := newSVGDoc(chartWidth, chartHeight)
	legend(doc, report.Rows)

	plotWidth := float64(chartWidth - marginLeft - marginRight)
	plotHeight := float64(chartHeight - marginTop - marginBottom)
	baseline := float64(marginTop) + plotHeight

	// Axes and gridlines on the [0, 1] score scale.
	doc.line(marginLeft, marginTop, marginLeft, baseline, "#333", 1)
	doc.line(marginLeft, baseline, marginLeft+plotWidth, baseline, "#333", 1)
	for tick := 0.0; tick <= 1.001; tick += 0.25 {
		y := baseline - tick*plotHeight
		doc.line(marginLeft, y, marginLeft+plotWidth, y, "#eee", 1)
		doc.text(marginLeft-8, y+4, 12, "end", formatScore(tick))
	}

	if len(report.Metrics) == 0 || len(report.Rows) == 0 {
		doc.text(chartWidth/2, chartHeight/2, 16, "middle", "no data")
		return doc.bytes(), nil
	}

	clusterWidth := plotWidth / float64(len(report.Metrics))
	barWidth := clusterWidth * 0.8 / float64(len(report.Rows))

	for mi, metric := range report.Metrics {
		clusterX := float64(marginLeft) + float64(mi)*clusterWidth + clusterWidth*0.1

		for ri, row := range report.Rows {
			x := clusterX + float64(ri)*barWidth
			cell, ok := report.Cell(row, metric)
			if !ok || cell.NoData {
				doc.rect(x, baseline-6, barWidth*0.9, 6, noDataColor, `stroke="#999" stroke-dasharray="2,2"`)
				doc.text(x+barWidth*0.45, baseline-10, 9, "middle", "n/a")
				continue
			}
			height := math.Max(cell.Mean, 0) * plotHeight
			doc.rect(x, baseline-height, barWidth*0.9, height, rowColor(ri), "")
		}

		doc.textRotated(clusterX+clusterWidth*0.4, baseline+14, 12, -35, metric)
	}

	doc.text(chartWidth/2, chartHeight-8, 13, "middle", "mean score by metric")
	return doc.bytes(), nil
}
