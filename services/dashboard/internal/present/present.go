// Package present shapes the reconciled table into the views consumed by the
// map, chart and export layers. Filters always run over the full table so the
// KPIs match what is visible.
package present

import (
	"sort"
	"time"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/metrics"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

// View is the read-only output for one filter.
type View struct {
	Records      []models.SiteRecord   `json:"records"`
	Geo          []models.GeoRecord    `json:"geo"`
	Summary      models.Summary        `json:"summary"`
	Trend        []models.TrendPoint   `json:"trend"`
	StatusCounts map[models.Status]int `json:"status_counts"`
}

// Apply filters records and recomputes every aggregate over the subset.
func Apply(records []models.SiteRecord, f models.Filter) View {
	subset := Filter(records, f)
	summary, trend := metrics.Compute(subset)
	return View{
		Records:      subset,
		Geo:          GeoRecords(subset),
		Summary:      summary,
		Trend:        trend,
		StatusCounts: metrics.StatusCounts(subset),
	}
}

// Filter applies the status, region and date-range filters in that order.
func Filter(records []models.SiteRecord, f models.Filter) []models.SiteRecord {
	out := ByStatus(records, f.Statuses)
	out = ByRegion(out, f.Regions)
	if f.DateRange != nil {
		out = ByDateRange(out, *f.DateRange)
	}
	return out
}

// ByStatus keeps records whose status is listed. An empty list keeps all.
func ByStatus(records []models.SiteRecord, statuses []models.Status) []models.SiteRecord {
	if len(statuses) == 0 {
		return clone(records)
	}
	want := make(map[models.Status]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	return keep(records, func(r models.SiteRecord) bool {
		_, ok := want[r.Status]
		return ok
	})
}

// ByRegion keeps records in the listed regions. An empty list means every
// region, not no region.
func ByRegion(records []models.SiteRecord, regions []string) []models.SiteRecord {
	if len(regions) == 0 {
		return clone(records)
	}
	want := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		want[r] = struct{}{}
	}
	return keep(records, func(r models.SiteRecord) bool {
		_, ok := want[r.Region]
		return ok
	})
}

// ByDateRange keeps records installed between Start and End inclusive, at day
// granularity. Records without a timestamp are dropped.
func ByDateRange(records []models.SiteRecord, dr models.DateRange) []models.SiteRecord {
	start := dayOf(dr.Start)
	end := dayOf(dr.End)
	return keep(records, func(r models.SiteRecord) bool {
		if r.InstalledAt == nil {
			return false
		}
		d := dayOf(*r.InstalledAt)
		return !d.Before(start) && !d.After(end)
	})
}

// dayOf drops the clock but keeps the calendar date as seen in t's own location.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GeoRecords lists records with both coordinates, preserving order.
func GeoRecords(records []models.SiteRecord) []models.GeoRecord {
	out := make([]models.GeoRecord, 0, len(records))
	for _, r := range records {
		if !r.HasGeo() {
			continue
		}
		g := models.GeoRecord{
			SiteID:      r.SiteID,
			Lat:         *r.Latitude,
			Lon:         *r.Longitude,
			Status:      r.Status,
			InstalledAt: r.InstalledAt,
		}
		if r.Region != "" {
			region := r.Region
			g.Region = &region
		}
		out = append(out, g)
	}
	return out
}

// Regions returns the distinct non-empty regions, sorted.
func Regions(records []models.SiteRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if r.Region == "" {
			continue
		}
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		out = append(out, r.Region)
	}
	sort.Strings(out)
	return out
}

func keep(records []models.SiteRecord, pred func(models.SiteRecord) bool) []models.SiteRecord {
	out := make([]models.SiteRecord, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func clone(records []models.SiteRecord) []models.SiteRecord {
	return append(make([]models.SiteRecord, 0, len(records)), records...)
}
