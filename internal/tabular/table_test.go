package tabular

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	t.Run("parses header and rows", func(t *testing.T) {
		table, err := ReadCSV([]byte("SKU Name,NET RATE\nWidget,10.00\nGadget,2.50\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"SKU Name", "NET RATE"}, table.Header)
		assert.Len(t, table.Rows, 2)
		assert.Equal(t, "Widget", table.Rows[0][0])
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		table, err := ReadCSV([]byte("\xef\xbb\xbfSKU Name,NET RATE\nWidget,10.00\n"))
		require.NoError(t, err)
		_, ok := table.ColumnIndex("SKU Name")
		assert.True(t, ok)
	})

	t.Run("tolerates ragged rows", func(t *testing.T) {
		table, err := ReadCSV([]byte("a,b,c\n1,2\n"))
		require.NoError(t, err)
		assert.Equal(t, "", table.Cell(table.Rows[0], 2))
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := ReadCSV([]byte(""))
		assert.Error(t, err)
	})
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"SKU Name", "NET RATE"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Widget", "10.00"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ReadXLSX(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU Name", "NET RATE"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Widget", table.Rows[0][0])
}

func TestReadXLS(t *testing.T) {
	t.Run("rejects non-OLE content", func(t *testing.T) {
		_, err := ReadXLS([]byte("not a compound document"))
		assert.Error(t, err)
	})

	t.Run("routed by extension", func(t *testing.T) {
		// An OOXML payload is a ZIP archive, not an OLE container; the
		// legacy reader handling the .xls name must reject it.
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"SKU Name"}))
		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))

		_, err := ReadTable("rates.xlsx", buf.Bytes())
		require.NoError(t, err)

		_, err = ReadTable("rates.xls", buf.Bytes())
		assert.Error(t, err)
	})
}

func TestColumnIndexFold(t *testing.T) {
	table := &Table{Header: []string{" Sku Name ", "net rate"}}

	idx, ok := table.ColumnIndexFold("SKU NAME")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = table.ColumnIndexFold("NET RATE")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = table.ColumnIndex("SKU NAME")
	assert.False(t, ok, "exact match must not fold case")
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("rates.csv"))
	assert.True(t, SupportedExtension("rates.XLSX"))
	assert.True(t, SupportedExtension("rates.xls"))
	assert.False(t, SupportedExtension("rates.pdf"))
	assert.False(t, SupportedExtension("rates"))
}
