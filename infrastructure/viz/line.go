package viz

import (
	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// LineRenderer draws one line per metric across the report rows in
// order. It reads naturally for parameter sweeps, where rows are
// successive values of a single knob. No-data points break the line
// rather than plotting at zero.
type LineRenderer struct{}

// NewLineRenderer returns the metric trend line renderer.
func NewLineRenderer() ports.ReportRenderer { return LineRenderer{} }

func (LineRenderer) Name() string      { return "line" }
func (LineRenderer) Extension() string { return "svg" }

// Render produces the chart SVG.
func (LineRenderer) Render(report domain.ComparisonReport) ([]byte, error) {
	doc := newSVGDoc(chartWidth, chartHeight)
	legend(doc, report.Metrics)

	plotWidth := float64(chartWidth - marginLeft - marginRight)
	plotHeight := float64(chartHeight - marginTop - marginBottom)
	baseline := float64(marginTop) + plotHeight

	doc.line(marginLeft, marginTop, marginLeft, baseline, "#333", 1)
	doc.line(marginLeft, baseline, marginLeft+plotWidth, baseline, "#333", 1)
	for tick := 0.0; tick <= 1.001; tick += 0.25 {
		y := baseline - tick*plotHeight
		doc.line(marginLeft, y, marginLeft+plotWidth, y, "#eee", 1)
		doc.text(marginLeft-8, y+4, 12, "end", formatScore(tick))
	}

	if len(report.Rows) == 0 || len(report.Metrics) == 0 {
		doc.text(chartWidth/2, chartHeight/2, 16, "middle", "no data")
		return doc.bytes(), nil
	}

	xOf := func(ri int) float64 {
		if len(report.Rows) == 1 {
			return marginLeft + plotWidth/2
		}
		return marginLeft + plotWidth*float64(ri)/float64(len(report.Rows)-1)
	}

	for ri, row := range report.Rows {
		doc.textRotated(xOf(ri), baseline+14, 12, -35, row)
	}

	for mi, metric := range report.Metrics {
		var segment []point
		flush := func() {
			if len(segment) > 1 {
				doc.polyline(segment, rowColor(mi))
			}
			segment = segment[:0]
		}

		for ri, row := range report.Rows {
			cell, ok := report.Cell(row, metric)
			if !ok || cell.NoData {
				flush()
				continue
			}
			p := point{x: xOf(ri), y: baseline - clampScore(cell.Mean)*plotHeight}
			segment = append(segment, p)
			doc.circle(p.x, p.y, 3.5, rowColor(mi))
		}
		flush()
	}

	doc.text(chartWidth/2, chartHeight-8, 13, "middle", "mean score trend")
	return doc.bytes(), nil
}
