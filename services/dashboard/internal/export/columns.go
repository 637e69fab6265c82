// Package export writes the filtered site table as spreadsheet, CSV and an
// HTML report.
package export

import (
	"strconv"
	"time"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

// Header is the column order shared by every tabular export.
var Header = []string{"Site ID", "Region", "Scope Status", "Status", "Installation Date", "Latitude", "Longitude"}

const dateTimeLayout = "2006-01-02 15:04:05"

func row(r models.SiteRecord) []string {
	return []string{
		r.SiteID,
		r.Region,
		r.Scope,
		string(r.Status),
		formatTime(r.InstalledAt),
		formatFloat(r.Latitude),
		formatFloat(r.Longitude),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateTimeLayout)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
