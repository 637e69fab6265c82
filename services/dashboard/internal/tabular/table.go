// Package tabular holds the column-oriented table passed between source
// readers and the normalizer. Cells are strings; an empty cell is NULL.
package tabular

import "strings"

// Table is a header plus rows of string cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// New builds a table and pads or truncates every row to the header width.
func New(columns []string, rows [][]string) Table {
	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		t.Rows = append(t.Rows, fit(row, len(columns)))
	}
	return t
}

func fit(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Index finds a column by name ignoring case and surrounding whitespace.
// It returns -1 when the column is absent.
func (t Table) Index(name string) int {
	want := strings.TrimSpace(name)
	for i, col := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(col), want) {
			return i
		}
	}
	return -1
}

// IndexAny returns the index of the first of names present in the table.
func (t Table) IndexAny(names ...string) int {
	for _, name := range names {
		if idx := t.Index(name); idx >= 0 {
			return idx
		}
	}
	return -1
}

// Value returns the cell at row, col or "" when col is out of range.
func (t Table) Value(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Column returns a copy of the named column's cells, or nil if absent.
func (t Table) Column(name string) []string {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Value(i, idx)
	}
	return out
}

// Clone returns a deep copy so transforms never alias their input.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}
