package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/agridash/internal/chart"
)

// Row is one labelled row of numeric cells. NaN marks an empty cell.
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// MarshalJSON encodes non-finite cells as null.
func (r Row) MarshalJSON() ([]byte, error) {
	vals := make([]*float64, len(r.Values))
	for i := range r.Values {
		v := r.Values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		vals[i] = &v
	}
	return json.Marshal(struct {
		Label  string     `json:"label"`
		Values []*float64 `json:"values"`
	}{r.Label, vals})
}

// Table is a small result grid. Corner is the header of the label column.
type Table struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Corner  string   `json:"corner,omitempty"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Add appends a row; missing trailing cells are filled with NaN.
func (t *Table) Add(label string, vals ...float64) {
	row := make([]float64, len(t.Columns))
	for i := range row {
		if i < len(vals) {
			row[i] = vals[i]
		} else {
			row[i] = math.NaN()
		}
	}
	t.Rows = append(t.Rows, Row{Label: label, Values: row})
}

// Value looks up a cell by row label and column name.
func (t Table) Value(row, col string) (float64, bool) {
	ci := -1
	for i, c := range t.Columns {
		if c == col {
			ci = i
			break
		}
	}
	if ci < 0 {
		return 0, false
	}
	for _, r := range t.Rows {
		if r.Label == row {
			return r.Values[ci], true
		}
	}
	return 0, false
}

// Result is what one analyzer returns for rendering.
type Result struct {
	Selection Selection    `json:"selection"`
	Title     string       `json:"title"`
	Charts    []chart.Spec `json:"charts,omitempty"`
	Tables    []Table      `json:"tables,omitempty"`
	Notes     []string     `json:"notes,omitempty"`
}

// Chart returns the chart with the given id.
func (r Result) Chart(id string) (chart.Spec, bool) {
	for _, c := range r.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return chart.Spec{}, false
}

// Table returns the table with the given id.
func (r Result) Table(id string) (Table, bool) {
	for _, t := range r.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return Table{}, false
}

func (r *Result) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// FormatValue renders a cell the way reports show it.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "-"
	case v == math.Trunc(v) && math.Abs(v) < 1e9:
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
}

// Markdown renders the result as a plain-text report.
func (r Result) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(r.Title)))
	for _, t := range r.Tables {
		b.WriteString(fmt.Sprintf("\n[TABLE: %s]\n", safeVal(t.Title)))
		b.WriteString("| " + safeVal(t.Corner))
		for _, c := range t.Columns {
			b.WriteString(" | " + safeVal(c))
		}
		b.WriteString(" |\n|---")
		for range t.Columns {
			b.WriteString("|---")
		}
		b.WriteString("|\n")
		for _, row := range t.Rows {
			b.WriteString("| " + safeVal(row.Label))
			for _, v := range row.Values {
				b.WriteString(" | " + FormatValue(v))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Charts) > 0 {
		b.WriteString("\n[CHARTS]\n")
		for _, c := range r.Charts {
			n := len(c.Series)
			if c.Grid != nil {
				n = len(c.Grid.Rows)
			}
			b.WriteString(fmt.Sprintf("- %s: %s (%s, %d series)\n", c.ID, safeVal(c.Title), c.Kind, n))
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- " + safeVal(n) + "\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
