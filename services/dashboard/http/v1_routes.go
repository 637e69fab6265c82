package http

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/dashboard, plus /api/v1/refresh and /api/v1/meta
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	// Dashboard endpoints - filtered views over the latest snapshot
	dashboard := v1.Group("/dashboard")
	{
		dashboard.GET("/summary", s.handleV1Summary)
		dashboard.GET("/sites", s.handleV1Sites)
		dashboard.GET("/geo", s.handleV1Geo)
		dashboard.GET("/trend", s.handleV1Trend)
		dashboard.GET("/regions", s.handleV1Regions)

		// Downloads of the filtered table
		dashboard.GET("/export.xlsx", s.handleV1ExportXLSX)
		dashboard.GET("/export.csv", s.handleV1ExportCSV)
		dashboard.GET("/report.html", s.handleV1Report)
	}

	// Pipeline control
	v1.POST("/refresh", s.handleV1Refresh)
	v1.GET("/meta", s.handleV1Meta)
}
