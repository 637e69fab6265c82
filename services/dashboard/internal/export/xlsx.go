package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Installation Status"

// XLSXContentType is the MIME type of the workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes records as a single-sheet workbook. Coordinates are
// written as numbers so the sheet stays sortable.
func WriteXLSX(w io.Writer, records []models.SiteRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.SiteID, r.Region, r.Scope, string(r.Status), formatTime(r.InstalledAt), nil, nil}
		if r.Latitude != nil {
			values[5] = *r.Latitude
		}
		if r.Longitude != nil {
			values[6] = *r.Longitude
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
