// Package display turns the markdown tables the extraction model produces
// into structured data the dashboard can render and chart.
package display

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Table is a parsed markdown table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Series is one numeric column prepared for charting.
type Series struct {
	Label  string
	Values []float64
}

// ParseMarkdownTables extracts every well-formed markdown table from text.
// A table is a run of consecutive pipe-delimited lines whose second line is
// the header separator. Short rows are padded, long rows truncated, so every
// row matches the header width.
func ParseMarkdownTables(text string) []*Table {
	var tables []*Table
	var block []string

	flush := func() {
		if t := parseBlock(block); t != nil {
			tables = append(tables, t)
		}
		block = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") {
			block = append(block, trimmed)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// ParseMarkdownTable returns the first table in text, or an error if none
// parses.
func ParseMarkdownTable(text string) (*Table, error) {
	tables := ParseMarkdownTables(text)
	if len(tables) == 0 {
		return nil, fmt.Errorf("no markdown table found")
	}
	return tables[0], nil
}

func parseBlock(lines []string) *Table {
	if len(lines) < 2 || !isSeparatorRow(lines[1]) {
		return nil
	}

	headers := splitRow(lines[0])
	if len(headers) == 0 {
		return nil
	}

	t := &Table{Headers: headers}
	for _, line := range lines[2:] {
		if isSeparatorRow(line) {
			continue
		}
		row := splitRow(line)
		for len(row) < len(headers) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row[:len(headers)])
	}
	if len(t.Rows) == 0 {
		return nil
	}
	return t
}

func isSeparatorRow(line string) bool {
	stripped := strings.Trim(line, "| ")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		switch r {
		case '-', ':', '|', ' ':
		default:
			return false
		}
	}
	return strings.Contains(stripped, "-")
}

func splitRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// ParseNumber coerces a table cell to a float. Currency symbols, thousands
// separators and percent signs are stripped; a parenthesized value is
// negative, accounting style.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "₹", "", "%", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// NumericColumn returns column i coerced to floats. It fails unless more than
// half the cells parse; sparse columns chart as zero-filled gaps.
func (t *Table) NumericColumn(i int) ([]float64, bool) {
	if i < 0 || i >= len(t.Headers) {
		return nil, false
	}
	values := make([]float64, len(t.Rows))
	parsed := 0
	for r, row := range t.Rows {
		if v, ok := ParseNumber(row[i]); ok {
			values[r] = v
			parsed++
		}
	}
	if parsed*2 <= len(t.Rows) {
		return nil, false
	}
	return values, true
}

// ChartData prepares a table for charting: the first column becomes the
// labels and every numeric column becomes a series.
func (t *Table) ChartData() (labels []string, series []Series) {
	if len(t.Headers) == 0 {
		return nil, nil
	}
	labels = make([]string, len(t.Rows))
	for r, row := range t.Rows {
		labels[r] = row[0]
	}
	for i := 1; i < len(t.Headers); i++ {
		if values, ok := t.NumericColumn(i); ok {
			series = append(series, Series{Label: t.Headers[i], Values: values})
		}
	}
	return labels, series
}

// CSV renders the table as RFC 4180 CSV for download.
func (t *Table) CSV() (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(t.Headers); err != nil {
		return "", err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
