package tabular

import (
	"bytes"

	"github.com/extrame/xls"
	ierr "github.com/meterflow/meterflow/internal/errors"
)

// ReadXLS parses the first sheet of a legacy OLE Excel workbook into a
// Table. The OOXML .xlsx format goes through ReadXLSX instead.
func ReadXLS(content []byte) (*Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The legacy Excel content could not be opened").
			Mark(ierr.ErrValidation)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ierr.NewError("workbook has no sheets").
			Mark(ierr.ErrValidation)
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("empty sheet").
			WithHint("The workbook has no header row").
			Mark(ierr.ErrValidation)
	}

	return &Table{
		Header: rows[0],
		Rows:   rows[1:],
	}, nil
}
