package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/pipeline"
)

const lastUpdateLayout = "2006-01-02 15:04:05 MST"

// handleV1Refresh runs the pipeline now and returns the new snapshot metadata
// POST /api/v1/refresh
func (s *Server) handleV1Refresh(c *gin.Context) {
	// The run is shared with other callers, so a client hanging up must not cancel it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*s.cfg.RequestTimeout)
	defer cancel()

	snap := s.snapshots.Trigger(ctx)
	if err := pipeline.Available(snap); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "meta": s.meta(snap)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.meta(snap)})
}

// handleV1Meta reports refresh cadence and the state of the latest run
// GET /api/v1/meta
func (s *Server) handleV1Meta(c *gin.Context) {
	snap := s.snapshots.Latest()
	c.JSON(http.StatusOK, gin.H{"data": s.meta(snap)})
}

func (s *Server) meta(snap *models.Snapshot) gin.H {
	m := gin.H{
		"refresh_interval": int(s.snapshots.Interval() / time.Second),
		"timezone":         s.cfg.Location.String(),
		"available":        false,
	}
	if snap == nil {
		return m
	}
	m["available"] = snap.Available
	m["run_id"] = snap.RunID
	m["skipped_blank_ids"] = snap.SkippedIDs
	m["parse_errors"] = snap.ParseErrors
	if snap.Message != "" {
		m["message"] = snap.Message
	}
	if !snap.GeneratedAt.IsZero() {
		m["generated_at"] = snap.GeneratedAt.UTC().Format(time.RFC3339)
		m["last_update"] = snap.GeneratedAt.In(s.cfg.Location).Format(lastUpdateLayout)
	}
	return m
}
