// Package source reads the registry and progress datasets from remote
// exports, local files or a SQL query.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

// Reader fetches one dataset. Key identifies the source for caching.
type Reader interface {
	Read(ctx context.Context) (tabular.Table, error)
	Key() string
}

// TableQuerier runs a query and returns its result set as a table.
type TableQuerier interface {
	ReadTable(ctx context.Context, query string) (tabular.Table, error)
}

// Spec describes where a dataset lives.
type Spec struct {
	Name  string // "registry" or "progress", used in errors and logs
	URL   string // http(s) URL, file:// URL or plain path
	Sheet string // worksheet for .xlsx sources
	SQL   string // when set, the dataset is read from the database instead
}

// Open picks the reader for spec. querier may be nil unless spec.SQL is set.
func Open(spec Spec, client *http.Client, querier TableQuerier) (Reader, error) {
	switch {
	case spec.SQL != "":
		if querier == nil {
			return nil, fmt.Errorf("%s: sql source configured without a database", spec.Name)
		}
		return &SQLReader{Name: spec.Name, Querier: querier, Query: spec.SQL}, nil
	case spec.URL == "":
		return nil, fmt.Errorf("%s: no source configured", spec.Name)
	}

	u, err := url.Parse(spec.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid source url: %w", spec.Name, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if client == nil {
			client = http.DefaultClient
		}
		return &HTTPReader{Name: spec.Name, Client: client, URL: spec.URL, Sheet: spec.Sheet}, nil
	case "file":
		return &FileReader{Name: spec.Name, Path: u.Path, Sheet: spec.Sheet}, nil
	case "":
		return &FileReader{Name: spec.Name, Path: spec.URL, Sheet: spec.Sheet}, nil
	default:
		return nil, errors.New(spec.Name + ": unsupported source scheme " + u.Scheme)
	}
}

func isXLSX(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}
