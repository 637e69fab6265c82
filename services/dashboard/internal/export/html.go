package export

import (
	"html/template"
	"io"
	"time"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

// Report is the input of the printable HTML report.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Summary     models.Summary
	Records     []models.SiteRecord
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"when": formatTime,
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<p>Total Sites: {{.Summary.TotalSites}}, Installed: {{.Summary.Installed}}, Open: {{.Summary.Open}}, Progress: {{printf "%.2f" .Summary.ProgressPct}}%, Daily Rate: {{printf "%.2f" .Summary.DailyRate}} sites/day</p>
<table border="1">
<thead><tr><th>Site ID</th><th>Status</th><th>Installation Date</th></tr></thead>
<tbody>
{{- range .Records}}
<tr><td>{{.SiteID}}</td><td>{{.Status}}</td><td>{{when .InstalledAt}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// WriteHTMLReport renders the KPI header and the Site ID / Status / Date table.
func WriteHTMLReport(w io.Writer, r Report) error {
	return reportTmpl.Execute(w, r)
}
