package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the derived installation state of a site.
type Status string

const (
	StatusInstalled Status = "INSTALLED"
	StatusOpen      Status = "OPEN"
)

// ParseStatus accepts the status names in any case ("Installed", "open", ...).
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusInstalled):
		return StatusInstalled, nil
	case string(StatusOpen):
		return StatusOpen, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// SiteRecord is one reconciled row per unique site identifier.
type SiteRecord struct {
	SiteID         string     `json:"site_id"`
	Latitude       *float64   `json:"lat,omitempty"`
	Longitude      *float64   `json:"lon,omitempty"`
	Region         string     `json:"region,omitempty"`
	Scope          string     `json:"scope_status,omitempty"`
	InstalledAt    *time.Time `json:"installed_at,omitempty"`
	InstalledCount *int64     `json:"installed_count,omitempty"`
	Status         Status     `json:"status"`
}

// HasGeo reports whether both coordinates are present.
func (r SiteRecord) HasGeo() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// GeoRecord is the map-bound view of a site.
type GeoRecord struct {
	SiteID      string     `json:"site_id"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	Status      Status     `json:"status"`
	Region      *string    `json:"region,omitempty"`
	InstalledAt *time.Time `json:"installed_at,omitempty"`
}

// Summary holds the KPI block shown above the map.
type Summary struct {
	TotalSites  int     `json:"total_sites"`
	Installed   int     `json:"installed"`
	Open        int     `json:"open"`
	ProgressPct float64 `json:"progress_pct"`
	DailyRate   float64 `json:"daily_rate"`
}

// TrendPoint counts installations on one calendar date (YYYY-MM-DD).
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DateRange is inclusive on both bounds, compared at day granularity.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Filter narrows the reconciled table. Empty Statuses or Regions mean no restriction.
type Filter struct {
	Statuses  []Status   `json:"status_in,omitempty"`
	Regions   []string   `json:"region_in,omitempty"`
	DateRange *DateRange `json:"date_range,omitempty"`
}

// Snapshot is the immutable output of one pipeline run.
type Snapshot struct {
	RunID       string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Available   bool         `json:"available"`
	Message     string       `json:"message,omitempty"`
	Records     []SiteRecord `json:"records"`
	Summary     Summary      `json:"summary"`
	Trend       []TrendPoint `json:"trend"`
	SkippedIDs  int          `json:"skipped_blank_ids"`
	ParseErrors int          `json:"parse_errors"`
}
