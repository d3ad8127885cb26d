package viz

import (
	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// ScatterRenderer plots the report rows as points in the plane spanned
// by two metrics, the first two columns by default. It makes trade-offs
// between a pair of metrics visible at a glance, one labeled point per
// implementation. Rows missing either metric are listed as "n/a"
// instead of being plotted at the origin.
type ScatterRenderer struct {
	// XMetric and YMetric select the axes. Empty values fall back to the
	// report's first and second metric columns.
	XMetric string
	YMetric string
}

// NewScatterRenderer returns the two-metric scatter renderer with
// default axes.
func NewScatterRenderer() ports.ReportRenderer { return ScatterRenderer{} }

func (ScatterRenderer) Name() string      { return "scatter" }
func (ScatterRenderer) Extension() string { return "svg" }

// Render produces the chart SVG.
func (r ScatterRenderer) Render(report domain.ComparisonReport) ([]byte, error) {
	doc := newSVGDoc(chartWidth, chartHeight)
	legend(doc, report.Rows)

	xMetric, yMetric := r.XMetric, r.YMetric
	if xMetric == "" && len(report.Metrics) > 0 {
		xMetric = report.Metrics[0]
	}
	if yMetric == "" && len(report.Metrics) > 1 {
		yMetric = report.Metrics[1]
	}

	plotWidth := float64(chartWidth - marginLeft - marginRight)
	plotHeight := float64(chartHeight - marginTop - marginBottom)
	baseline := float64(marginTop) + plotHeight

	doc.line(marginLeft, marginTop, marginLeft, baseline, "#333", 1)
	doc.line(marginLeft, baseline, marginLeft+plotWidth, baseline, "#333", 1)
	for tick := 0.0; tick <= 1.001; tick += 0.25 {
		y := baseline - tick*plotHeight
		x := marginLeft + tick*plotWidth
		doc.line(marginLeft, y, marginLeft+plotWidth, y, "#eee", 1)
		doc.line(x, marginTop, x, baseline, "#eee", 1)
		doc.text(marginLeft-8, y+4, 12, "end", formatScore(tick))
		doc.text(x, baseline+16, 12, "middle", formatScore(tick))
	}

	if len(report.Rows) == 0 || xMetric == "" || yMetric == "" {
		doc.text(chartWidth/2, chartHeight/2, 16, "middle", "no data")
		return doc.bytes(), nil
	}

	doc.text(marginLeft+plotWidth/2, chartHeight-8, 13, "middle", xMetric)
	doc.textRotated(20, float64(marginTop)+plotHeight/2, 13, -90, yMetric)

	missingY := baseline + 40.0
	for ri, row := range report.Rows {
		xCell, xOK := report.Cell(row, xMetric)
		yCell, yOK := report.Cell(row, yMetric)
		if !xOK || xCell.NoData || !yOK || yCell.NoData {
			doc.text(marginLeft, missingY, 12, "start", row+": n/a")
			missingY += 16
			continue
		}

		p := point{
			x: marginLeft + clampScore(xCell.Mean)*plotWidth,
			y: baseline - clampScore(yCell.Mean)*plotHeight,
		}
		doc.circle(p.x, p.y, 6, rowColor(ri))
		doc.text(p.x+9, p.y+4, 12, "start", row)
	}

	return doc.bytes(), nil
}
