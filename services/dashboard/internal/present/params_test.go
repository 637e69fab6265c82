package present

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

func TestParseFilter(t *testing.T) {
	riyadh := time.FixedZone("+03", 3*60*60)

	f, err := ParseFilter([]string{"installed,open"}, []string{" Riyadh ", "", "Makkah,"}, "2024-01-01", "2024-01-31", riyadh)
	require.NoError(t, err)
	assert.Equal(t, []models.Status{models.StatusInstalled, models.StatusOpen}, f.Statuses)
	assert.Equal(t, []string{"Riyadh", "Makkah"}, f.Regions)
	require.NotNil(t, f.DateRange)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, riyadh), f.DateRange.Start)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, riyadh), f.DateRange.End)

	f, err = ParseFilter(nil, nil, "", "", nil)
	require.NoError(t, err)
	assert.Empty(t, f.Statuses)
	assert.Empty(t, f.Regions)
	assert.Nil(t, f.DateRange)
}

func TestParseFilterRFC3339(t *testing.T) {
	riyadh := time.FixedZone("+03", 3*60*60)

	f, err := ParseFilter(nil, nil, "2024-01-04T22:30:00Z", "", riyadh)
	require.NoError(t, err)
	require.NotNil(t, f.DateRange)
	assert.True(t, f.DateRange.Start.Equal(time.Date(2024, 1, 5, 1, 30, 0, 0, riyadh)))
	assert.Equal(t, riyadh, f.DateRange.Start.Location())
	assert.Equal(t, 9999, f.DateRange.End.Year(), "open end stays unbounded")
}

func TestParseFilterErrors(t *testing.T) {
	cases := []struct {
		name       string
		statuses   []string
		start, end string
		msg        string
	}{
		{name: "unknown status", statuses: []string{"done"}, msg: `invalid status: "done"`},
		{name: "bad start", start: "01/02/2024", msg: `invalid start date: "01/02/2024"`},
		{name: "bad end", end: "tomorrow", msg: `invalid end date: "tomorrow"`},
		{name: "end before start", start: "2024-02-01", end: "2024-01-01", msg: "before start date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFilter(tc.statuses, nil, tc.start, tc.end, time.UTC)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}
