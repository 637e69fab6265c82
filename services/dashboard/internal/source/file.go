package source

import (
	"context"
	"fmt"
	"os"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/apperr"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

// FileReader reads a local .csv or .xlsx file.
type FileReader struct {
	Name  string
	Path  string
	Sheet string
}

// Key implements Reader.
func (r *FileReader) Key() string { return "file:" + r.Path + "#" + r.Sheet }

// Read implements Reader.
func (r *FileReader) Read(ctx context.Context) (tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, &apperr.FetchError{Source: r.Name, Err: err}
	}

	f, err := os.Open(r.Path)
	if err != nil {
		return tabular.Table{}, &apperr.FetchError{Source: r.Name, Err: err}
	}
	defer f.Close()

	var t tabular.Table
	if isXLSX(r.Path) {
		t, err = tabular.DecodeXLSX(f, r.Sheet)
	} else {
		t, err = tabular.DecodeCSV(f)
	}
	if err != nil {
		return tabular.Table{}, &apperr.FetchError{Source: r.Name, Err: fmt.Errorf("decode %s: %w", r.Path, err)}
	}
	return t, nil
}

// SQLReader reads a dataset with a query against the configured database.
type SQLReader struct {
	Name    string
	Querier TableQuerier
	Query   string
}

// Key implements Reader.
func (r *SQLReader) Key() string { return "sql:" + r.Query }

// Read implements Reader.
func (r *SQLReader) Read(ctx context.Context) (tabular.Table, error) {
	t, err := r.Querier.ReadTable(ctx, r.Query)
	if err != nil {
		return tabular.Table{}, &apperr.FetchError{Source: r.Name, Err: err}
	}
	return t, nil
}
