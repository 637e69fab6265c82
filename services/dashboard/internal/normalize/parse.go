package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/apperr"
)

// isNull matches the spellings spreadsheet exports use for empty cells.
func isNull(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "nat", "null", "none", "n/a", "#n/a":
		return true
	}
	return false
}

// ParseFloat coerces a numeric cell. Empty cells yield (nil, nil); unparseable
// cells yield (nil, *apperr.ParseError) so callers can count and move on.
func ParseFloat(column, raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if isNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &apperr.ParseError{Column: column, Value: raw, Kind: "number"}
	}
	return &v, nil
}

// ParseCount coerces an integer count cell; "2.0" is accepted as 2.
func ParseCount(column, raw string) (*int64, error) {
	f, err := ParseFloat(column, raw)
	if f == nil && err == nil {
		return nil, nil
	}
	if err != nil || *f != math.Trunc(*f) {
		return nil, &apperr.ParseError{Column: column, Value: raw, Kind: "count"}
	}
	n := int64(*f)
	return &n, nil
}

// TimeParser coerces timestamp cells in a fixed location. Slash dates are
// read month-first, matching the Google Forms "Timestamp" export.
type TimeParser struct {
	Location *time.Location
}

// Parse returns (nil, nil) for empty cells and a *apperr.ParseError for
// anything dateparse cannot read.
func (p TimeParser) Parse(column, raw string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if isNull(s) {
		return nil, nil
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return nil, &apperr.ParseError{Column: column, Value: raw, Kind: "datetime"}
	}
	return &t, nil
}
