package viz

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// formatScore renders a score with three decimals for tables and axis
// labels.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// CSVRenderer writes the comparison table as CSV with one row per
// implementation. No-data cells are emitted as empty fields, never as
// zeros.
type CSVRenderer struct{}

// NewCSVRenderer returns the CSV table renderer.
func NewCSVRenderer() ports.ReportRenderer { return CSVRenderer{} }

func (CSVRenderer) Name() string      { return "report" }
func (CSVRenderer) Extension() string { return "csv" }

// Render produces the CSV bytes.
func (CSVRenderer) Render(report domain.ComparisonReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := append([]string{"implementation"}, report.Metrics...)
	header = append(header, "overall")
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range report.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row)
		for _, metric := range report.Metrics {
			cell, ok := report.Cell(row, metric)
			if !ok || cell.NoData {
				record = append(record, "")
				continue
			}
			record = append(record, formatScore(cell.Mean))
		}
		if overall, ok := report.OverallScore(row); ok {
			record = append(record, formatScore(overall))
		} else {
			record = append(record, "")
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("writing csv row %q: %w", row, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarkdownRenderer writes the comparison table as a GitHub-flavored
// markdown table with sample counts. No-data cells render as "n/a".
type MarkdownRenderer struct{}

// NewMarkdownRenderer returns the markdown table renderer.
func NewMarkdownRenderer() ports.ReportRenderer { return MarkdownRenderer{} }

func (MarkdownRenderer) Name() string      { return "report" }
func (MarkdownRenderer) Extension() string { return "md" }

// Render produces the markdown bytes.
func (MarkdownRenderer) Render(report domain.ComparisonReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("# Benchmark comparison\n\n")
	fmt.Fprintf(&buf, "Generated %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	buf.WriteString("| implementation |")
	for _, metric := range report.Metrics {
		fmt.Fprintf(&buf, " %s |", metric)
	}
	buf.WriteString(" overall |\n")

	buf.WriteString("| --- |")
	for range report.Metrics {
		buf.WriteString(" --- |")
	}
	buf.WriteString(" --- |\n")

	for _, row := range report.Rows {
		fmt.Fprintf(&buf, "| %s |", row)
		for _, metric := range report.Metrics {
			cell, ok := report.Cell(row, metric)
			if !ok || cell.NoData {
				buf.WriteString(" n/a |")
				continue
			}
			fmt.Fprintf(&buf, " %s (n=%d) |", formatScore(cell.Mean), cell.Samples)
		}
		if overall, ok := report.OverallScore(row); ok {
			fmt.Fprintf(&buf, " %s |\n", formatScore(overall))
		} else {
			buf.WriteString(" n/a |\n")
		}
	}

	return []byte(buf.String()), nil
}
