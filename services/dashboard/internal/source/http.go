package source

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/apperr"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HTTPReader downloads a CSV export (Google Sheets "export?format=csv") or an
// .xlsx workbook.
type HTTPReader struct {
	Name   string
	Client *http.Client
	URL    string
	Sheet  string
}

// Key implements Reader.
func (r *HTTPReader) Key() string { return "http:" + r.URL + "#" + r.Sheet }

// Read implements Reader. Every failure is an *apperr.FetchError.
func (r *HTTPReader) Read(ctx context.Context) (tabular.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return tabular.Table{}, r.fail(err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return tabular.Table{}, r.fail(fmt.Errorf("request export: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tabular.Table{}, r.fail(fmt.Errorf("unexpected status %s", resp.Status))
	}

	var t tabular.Table
	if r.wantsXLSX(resp) {
		t, err = tabular.DecodeXLSX(resp.Body, r.Sheet)
	} else {
		t, err = tabular.DecodeCSV(resp.Body)
	}
	if err != nil {
		return tabular.Table{}, r.fail(fmt.Errorf("decode payload: %w", err))
	}
	return t, nil
}

func (r *HTTPReader) wantsXLSX(resp *http.Response) bool {
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mt == xlsxMIME {
		return true
	}
	u, err := url.Parse(r.URL)
	return err == nil && isXLSX(u.Path)
}

func (r *HTTPReader) fail(err error) error {
	return &apperr.FetchError{Source: r.Name, Err: err}
}
