package present

import (
	"fmt"
	"strings"
	"time"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// ParseFilter builds a models.Filter from raw status, region and date values.
// statuses and regions may be repeated or comma separated; start and end
// accept YYYY-MM-DD in loc or RFC3339. An open bound stays unbounded.
func ParseFilter(statuses, regions []string, start, end string, loc *time.Location) (models.Filter, error) {
	var f models.Filter
	if loc == nil {
		loc = time.UTC
	}

	for _, raw := range SplitValues(statuses) {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return f, fmt.Errorf("invalid status: %q", raw)
		}
		f.Statuses = append(f.Statuses, st)
	}
	f.Regions = SplitValues(regions)

	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return f, nil
	}

	dr := models.DateRange{
		Start: time.Date(1, 1, 1, 0, 0, 0, 0, loc),
		End:   time.Date(9999, 12, 31, 0, 0, 0, 0, loc),
	}
	if start != "" {
		t, err := parseDate(start, loc)
		if err != nil {
			return f, fmt.Errorf("invalid start date: %q", start)
		}
		dr.Start = t
	}
	if end != "" {
		t, err := parseDate(end, loc)
		if err != nil {
			return f, fmt.Errorf("invalid end date: %q", end)
		}
		dr.End = t
	}
	if dr.End.Before(dr.Start) {
		return f, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	f.DateRange = &dr
	return f, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// SplitValues flattens comma separated values and drops blanks.
func SplitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
