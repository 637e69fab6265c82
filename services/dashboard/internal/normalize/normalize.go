// Package normalize cleans raw source tables so that the registry and the
// progress log can be joined on the site identifier.
package normalize

import (
	"strings"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/apperr"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

// Normalize trims column names, drops repeated columns (first occurrence wins)
// and canonicalises every identifier cell. A missing identifier column is a
// *apperr.SchemaError and no table is returned.
func Normalize(t tabular.Table, idColumn, dataset string) (tabular.Table, error) {
	out := DropDuplicateColumns(TrimColumns(t))

	idx := out.Index(idColumn)
	if idx < 0 {
		return tabular.Table{}, &apperr.SchemaError{Dataset: dataset, Column: idColumn}
	}

	for _, row := range out.Rows {
		row[idx] = NormalizeID(row[idx])
	}
	return out, nil
}

// TrimColumns returns a copy of t with whitespace-trimmed column names.
func TrimColumns(t tabular.Table) tabular.Table {
	out := t.Clone()
	for i, col := range out.Columns {
		out.Columns[i] = strings.TrimSpace(col)
	}
	return out
}

// DropDuplicateColumns keeps the first column of each name.
func DropDuplicateColumns(t tabular.Table) tabular.Table {
	seen := make(map[string]struct{}, len(t.Columns))
	keep := make([]int, 0, len(t.Columns))
	for i, col := range t.Columns {
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		keep = append(keep, i)
	}
	if len(keep) == len(t.Columns) {
		return t
	}

	out := tabular.Table{
		Columns: make([]string, 0, len(keep)),
		Rows:    make([][]string, len(t.Rows)),
	}
	for _, i := range keep {
		out.Columns = append(out.Columns, t.Columns[i])
	}
	for r, row := range t.Rows {
		cells := make([]string, 0, len(keep))
		for _, i := range keep {
			if i < len(row) {
				cells = append(cells, row[i])
			} else {
				cells = append(cells, "")
			}
		}
		out.Rows[r] = cells
	}
	return out
}

// NormalizeID trims and upper-cases a site identifier. Empty stays empty.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
