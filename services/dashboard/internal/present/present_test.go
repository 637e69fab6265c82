package present

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

func ptr[T any](v T) *T { return &v }

func sampleRecords() []models.SiteRecord {
	return []models.SiteRecord{
		{SiteID: "A1", Region: "Riyadh", Status: models.StatusInstalled, Latitude: ptr(24.0), Longitude: ptr(46.0), InstalledAt: ptr(time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC))},
		{SiteID: "A2", Region: "Makkah", Status: models.StatusOpen, Latitude: ptr(21.4), Longitude: ptr(39.8)},
		{SiteID: "A3", Region: "Riyadh", Status: models.StatusInstalled, Latitude: ptr(24.7), Longitude: ptr(46.6), InstalledAt: ptr(time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC))},
		{SiteID: "A4", Status: models.StatusOpen},
	}
}

func ids(records []models.SiteRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.SiteID)
	}
	return out
}

func TestFilter(t *testing.T) {
	records := sampleRecords()

	t.Run("no filter keeps everything", func(t *testing.T) {
		assert.Equal(t, []string{"A1", "A2", "A3", "A4"}, ids(Filter(records, models.Filter{})))
	})

	t.Run("empty region selection means all regions", func(t *testing.T) {
		got := Filter(records, models.Filter{Statuses: []models.Status{models.StatusOpen}, Regions: []string{}})
		assert.Equal(t, []string{"A2", "A4"}, ids(got))
	})

	t.Run("region selection", func(t *testing.T) {
		got := Filter(records, models.Filter{Regions: []string{"Riyadh"}})
		assert.Equal(t, []string{"A1", "A3"}, ids(got))
	})

	t.Run("date range is inclusive on both days", func(t *testing.T) {
		got := Filter(records, models.Filter{DateRange: &models.DateRange{
			Start: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		}})
		assert.Equal(t, []string{"A1", "A3"}, ids(got))

		got = Filter(records, models.Filter{DateRange: &models.DateRange{
			Start: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		}})
		assert.Empty(t, got)
	})

	t.Run("input is not modified", func(t *testing.T) {
		_ = Filter(records, models.Filter{Statuses: []models.Status{models.StatusInstalled}})
		assert.Len(t, records, 4)
	})
}

func TestStatusAndRegionFiltersCommute(t *testing.T) {
	f := gofakeit.New(99)
	regions := []string{"Riyadh", "Makkah", "Eastern", ""}
	records := make([]models.SiteRecord, 0, 200)
	for i := 0; i < 200; i++ {
		status := models.StatusOpen
		if f.Bool() {
			status = models.StatusInstalled
		}
		records = append(records, models.SiteRecord{
			SiteID: f.UUID(),
			Region: f.RandomString(regions),
			Status: status,
		})
	}

	selections := [][]string{nil, {}, {"Riyadh"}, {"Makkah", "Eastern"}}
	statuses := [][]models.Status{nil, {models.StatusInstalled}, {models.StatusOpen}, {models.StatusInstalled, models.StatusOpen}}

	for _, rs := range selections {
		for _, ss := range statuses {
			a := ByRegion(ByStatus(records, ss), rs)
			b := ByStatus(ByRegion(records, rs), ss)
			require.Equal(t, ids(a), ids(b))
		}
	}

	assert.Len(t, ByRegion(records, []string{}), len(records))
}

func TestApply(t *testing.T) {
	view := Apply(sampleRecords(), models.Filter{Regions: []string{"Riyadh", "Makkah"}})

	assert.Equal(t, models.Summary{TotalSites: 3, Installed: 2, Open: 1, ProgressPct: 66.67, DailyRate: 0.67}, view.Summary)
	assert.Equal(t, []models.TrendPoint{{Date: "2024-01-05", Count: 1}, {Date: "2024-01-09", Count: 1}}, view.Trend)
	assert.Equal(t, 2, view.StatusCounts[models.StatusInstalled])
	require.Len(t, view.Geo, 3)
	assert.Equal(t, "Riyadh", *view.Geo[0].Region)
}

func TestGeoRecordsSkipsMissingCoordinates(t *testing.T) {
	geo := GeoRecords(sampleRecords())

	require.Len(t, geo, 3)
	for _, g := range geo {
		assert.NotEqual(t, "A4", g.SiteID)
	}
}

func TestRegions(t *testing.T) {
	assert.Equal(t, []string{"Makkah", "Riyadh"}, Regions(sampleRecords()))
}
