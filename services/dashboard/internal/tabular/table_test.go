package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV(t *testing.T) {
	t.Run("strips bom and pads ragged rows", func(t *testing.T) {
		in := "\ufeffSite ID,Latitude,Longitude\nA1,24.0,46.0\nA2,25.0\n"
		tbl, err := DecodeCSV(strings.NewReader(in))
		require.NoError(t, err)

		assert.Equal(t, []string{"Site ID", "Latitude", "Longitude"}, tbl.Columns)
		require.Equal(t, 2, tbl.Len())
		assert.Equal(t, []string{"A2", "25.0", ""}, tbl.Rows[1])
	})

	t.Run("empty input is an error", func(t *testing.T) {
		_, err := DecodeCSV(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Tracking Sheet")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Tracking Sheet", "A1", &[]any{"Site ID", "Region"}))
	require.NoError(t, f.SetSheetRow("Tracking Sheet", "A2", &[]any{"riy0001", "Riyadh"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := DecodeXLSX(buf, "Tracking Sheet")
	require.NoError(t, err)
	assert.Equal(t, []string{"Site ID", "Region"}, tbl.Columns)
	assert.Equal(t, [][]string{{"riy0001", "Riyadh"}}, tbl.Rows)
}

func TestTableIndex(t *testing.T) {
	tbl := New([]string{" Site ID ", "Installation Date"}, [][]string{{"A1", "2024-01-05"}})

	assert.Equal(t, 0, tbl.Index("site id"))
	assert.Equal(t, 1, tbl.IndexAny("Timestamp", "installation date"))
	assert.Equal(t, -1, tbl.Index("Latitude"))
	assert.Equal(t, "", tbl.Value(0, 5))
	assert.Equal(t, []string{"2024-01-05"}, tbl.Column("Installation Date"))
}

func TestTableClone(t *testing.T) {
	tbl := New([]string{"Site ID"}, [][]string{{"A1"}})
	cp := tbl.Clone()
	cp.Rows[0][0] = "B2"
	cp.Columns[0] = "x"

	assert.Equal(t, "A1", tbl.Rows[0][0])
	assert.Equal(t, "Site ID", tbl.Columns[0])
}
