// Package metrics turns a reconciled site table into KPIs and a daily trend.
package metrics

import (
	"sort"
	"time"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

const (
	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// Compute is pure: the summary and trend depend only on records.
func Compute(records []models.SiteRecord) (models.Summary, []models.TrendPoint) {
	return Summarize(records), Trend(records)
}

// Summarize counts the KPI block.
func Summarize(records []models.SiteRecord) models.Summary {
	s := models.Summary{TotalSites: len(records)}

	var first, last time.Time
	dated := 0
	for _, rec := range records {
		if rec.Status != models.StatusInstalled {
			continue
		}
		s.Installed++
		if rec.InstalledAt == nil {
			continue
		}
		ts := *rec.InstalledAt
		if dated == 0 || ts.Before(first) {
			first = ts
		}
		if dated == 0 || ts.After(last) {
			last = ts
		}
		dated++
	}
	s.Open = s.TotalSites - s.Installed

	if s.TotalSites > 0 {
		s.ProgressPct = ratio(int64(s.Installed), int64(s.TotalSites), 100)
	}
	if dated > 0 {
		s.DailyRate = ratio(int64(s.Installed), int64(SpanDays(first, last)), 1)
	}
	return s
}

// SpanDays is the number of whole days between first and last, floored at 1.
func SpanDays(first, last time.Time) int {
	days := int(last.Sub(first) / day)
	if days < 1 {
		return 1
	}
	return days
}

// Trend counts installed records per calendar date, ascending.
func Trend(records []models.SiteRecord) []models.TrendPoint {
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Status != models.StatusInstalled || rec.InstalledAt == nil {
			continue
		}
		counts[rec.InstalledAt.Format(dateLayout)]++
	}

	out := make([]models.TrendPoint, 0, len(counts))
	for date, n := range counts {
		out = append(out, models.TrendPoint{Date: date, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// StatusCounts feeds the status distribution chart.
func StatusCounts(records []models.SiteRecord) map[models.Status]int {
	out := map[models.Status]int{
		models.StatusInstalled: 0,
		models.StatusOpen:      0,
	}
	for _, rec := range records {
		out[rec.Status]++
	}
	return out
}
