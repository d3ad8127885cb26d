// Package viz renders comparison reports into visual and tabular
// artifacts. Every renderer consumes the same aggregated table, so
// adding a chart type never touches aggregation logic. Charts are
// emitted as self-contained SVG documents with no rendering service
// dependency; cells with no data are drawn hatched or labeled "n/a"
// so a gap is never mistaken for a zero score.
package viz

import (
	"fmt"
	"strings"
)

// Chart geometry shared by the SVG renderers.
const (
	chartWidth   = 960
	chartHeight  = 540
	marginLeft   = 80
	marginRight  = 40
	marginTop    = 60
	marginBottom = 110
)

// rowPalette cycles fill colors across report rows.
var rowPalette = []string{
	"#4e79a7", "#f28e2b", "#59a14f", "#e15759",
	"#76b7b2", "#edc948", "#b07aa1", "#9c755f",
}

const noDataColor = "#d0d0d0"

func rowColor(i int) string {
	return rowPalette[i%len(rowPalette)]
}

// svgDoc accumulates an SVG document.
type svgDoc struct {
	buf strings.Builder
}

func newSVGDoc(width, height int) *svgDoc {
	doc := &svgDoc{}
	fmt.Fprintf(&doc.buf,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&doc.buf,
		`<rect width="%d" height="%d" fill="white"/>`+"\n", width, height)
	return doc
}

func (d *svgDoc) rect(x, y, w, h float64, fill string, attrs string) {
	fmt.Fprintf(&d.buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" %s/>`+"\n",
		x, y, w, h, fill, attrs)
}

func (d *svgDoc) line(x1, y1, x2, y2 float64, stroke string, width float64) {
	fmt.Fprintf(&d.buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
		x1, y1, x2, y2, stroke, width)
}

func (d *svgDoc) circle(cx, cy, r float64, fill string) {
	fmt.Fprintf(&d.buf, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", cx, cy, r, fill)
}

func (d *svgDoc) polygon(points []point, fill, stroke string, fillOpacity float64) {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmt.Sprintf("%.1f,%.1f", p.x, p.y)
	}
	fmt.Fprintf(&d.buf,
		`<polygon points="%s" fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="2"/>`+"\n",
		strings.Join(coords, " "), fill, fillOpacity, stroke)
}

func (d *svgDoc) polyline(points []point, stroke string) {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmt.Sprintf("%.1f,%.1f", p.x, p.y)
	}
	fmt.Fprintf(&d.buf,
		`<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		strings.Join(coords, " "), stroke)
}

func (d *svgDoc) text(x, y float64, size int, anchor, content string) {
	fmt.Fprintf(&d.buf,
		`<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%d" text-anchor="%s">%s</text>`+"\n",
		x, y, size, anchor, escapeXML(content))
}

func (d *svgDoc) textRotated(x, y float64, size int, angle float64, content string) {
	fmt.Fprintf(&d.buf,
		`<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%d" text-anchor="end" transform="rotate(%.0f %.1f %.1f)">%s</text>`+"\n",
		x, y, size, angle, x, y, escapeXML(content))
}

func (d *svgDoc) bytes() []byte {
	d.buf.WriteString("</svg>\n")
	return []byte(d.buf.String())
}

type point struct {
	x, y float64
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}

// legend draws the row color legend across the top of a chart.
func legend(doc *svgDoc, rows []string) {
	x := float64(marginLeft)
	for i, row := range rows {
		doc.rect(x, 14, 14, 14, rowColor(i), "")
		doc.text(x+20, 25, 13, "start", row)
		x += 30 + float64(9*len(row))
	}
}
