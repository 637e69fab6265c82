package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/export"
)

const (
	exportBaseName = "ac_installation_status"
	reportTitle    = "AC Installation Progress Report"
)

// handleV1ExportXLSX downloads the filtered table as a workbook
// GET /api/v1/dashboard/export.xlsx
func (s *Server) handleV1ExportXLSX(c *gin.Context) {
	_, v, ok := s.view(c)
	if !ok {
		return
	}
	s.attach(c, export.XLSXContentType, exportBaseName+".xlsx", func(w io.Writer) error {
		return export.WriteXLSX(w, v.Records)
	})
}

// handleV1ExportCSV downloads the filtered table as CSV
// GET /api/v1/dashboard/export.csv
func (s *Server) handleV1ExportCSV(c *gin.Context) {
	_, v, ok := s.view(c)
	if !ok {
		return
	}
	s.attach(c, "text/csv; charset=utf-8", exportBaseName+".csv", func(w io.Writer) error {
		return export.WriteCSV(w, v.Records)
	})
}

// handleV1Report renders the printable report for the filtered table
// GET /api/v1/dashboard/report.html
func (s *Server) handleV1Report(c *gin.Context) {
	snap, v, ok := s.view(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := export.WriteHTMLReport(&buf, export.Report{
		Title:       reportTitle,
		GeneratedAt: snap.GeneratedAt.In(s.cfg.Location),
		Summary:     v.Summary,
		Records:     v.Records,
	})
	if err != nil {
		s.logger.Error("render report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// attach buffers the export so a write failure can still return a JSON error.
func (s *Server) attach(c *gin.Context, contentType, filename string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		s.logger.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
