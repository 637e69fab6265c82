package export

import (
	"encoding/csv"
	"io"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

// WriteCSV writes records with the shared export header.
func WriteCSV(w io.Writer, records []models.SiteRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
