package display

import (
	"strings"
	"testing"
)

const sampleAnswer = `Here is the revenue breakdown:

| Segment | FY2023 | FY2024 |
|---------|--------|--------|
| Retail  | $1,200 | $1,450 |
| Online  | $800   | ($50)  |

Margins held steady across both years.

| Metric | Value |
|--------|-------|
| ROE    | 14.2% |
`

func TestParseMarkdownTables(t *testing.T) {
	tables := ParseMarkdownTables(sampleAnswer)
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}

	first := tables[0]
	if len(first.Headers) != 3 || first.Headers[0] != "Segment" {
		t.Errorf("unexpected headers: %v", first.Headers)
	}
	if len(first.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(first.Rows))
	}
	if first.Rows[0][1] != "$1,200" {
		t.Errorf("unexpected cell: %q", first.Rows[0][1])
	}

	second := tables[1]
	if second.Headers[0] != "Metric" || second.Rows[0][1] != "14.2%" {
		t.Errorf("unexpected second table: %+v", second)
	}
}

func TestParseMarkdownTableNone(t *testing.T) {
	if _, err := ParseMarkdownTable("plain prose without any pipes"); err == nil {
		t.Error("expected error for text without tables")
	}
	// A pipe line without a separator row is not a table.
	if _, err := ParseMarkdownTable("| lonely | header |"); err == nil {
		t.Error("expected error for header without separator")
	}
}

func TestParseMarkdownTableRaggedRows(t *testing.T) {
	text := strings.Join([]string{
		"| A | B | C |",
		"|---|---|---|",
		"| 1 | 2 |",
		"| 1 | 2 | 3 | 4 |",
	}, "\n")

	table, err := ParseMarkdownTable(text)
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range table.Rows {
		if len(row) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(row))
		}
	}
	if table.Rows[0][2] != "" {
		t.Errorf("short row not padded: %v", table.Rows[0])
	}
	if table.Rows[1][2] != "3" {
		t.Errorf("long row not truncated: %v", table.Rows[1])
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,200", 1200, true},
		{"$1,450.50", 1450.5, true},
		{"14.2%", 14.2, true},
		{"(50)", -50, true},
		{"($2,000)", -2000, true},
		{"-", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{"€300", 300, true},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestChartData(t *testing.T) {
	table, err := ParseMarkdownTable(sampleAnswer)
	if err != nil {
		t.Fatal(err)
	}

	labels, series := table.ChartData()
	if len(labels) != 2 || labels[0] != "Retail" {
		t.Errorf("unexpected labels: %v", labels)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 numeric series, got %d", len(series))
	}
	if series[1].Label != "FY2024" || series[1].Values[1] != -50 {
		t.Errorf("unexpected series: %+v", series[1])
	}
}

func TestNumericColumnMostlyText(t *testing.T) {
	text := strings.Join([]string{
		"| Item | Note |",
		"|------|------|",
		"| a    | low  |",
		"| b    | 12   |",
		"| c    | high |",
	}, "\n")
	table, err := ParseMarkdownTable(text)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table.NumericColumn(1); ok {
		t.Error("mostly-text column must not coerce to numeric")
	}
}

func TestCSV(t *testing.T) {
	table := &Table{
		Headers: []string{"Segment", "Revenue"},
		Rows:    [][]string{{"Retail", "1,200"}, {"On\"line", "800"}},
	}
	out, err := table.CSV()
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 csv lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "Segment,Revenue" {
		t.Errorf("unexpected header line: %q", lines[0])
	}
	if !strings.Contains(lines[2], `"On""line"`) {
		t.Errorf("quote not escaped: %q", lines[2])
	}
}
