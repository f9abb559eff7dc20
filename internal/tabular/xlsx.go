package tabular

import (
	"bytes"

	ierr "github.com/meterflow/meterflow/internal/errors"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses the first sheet of an Excel workbook into a Table.
func ReadXLSX(content []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The Excel content could not be opened").
			Mark(ierr.ErrValidation)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ierr.NewError("workbook has no sheets").
			Mark(ierr.ErrValidation)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Sheet %q could not be read", sheets[0]).
			Mark(ierr.ErrValidation)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("empty sheet").
			WithHintf("Sheet %q has no header row", sheets[0]).
			Mark(ierr.ErrValidation)
	}

	return &Table{
		Header: rows[0],
		Rows:   rows[1:],
	}, nil
}
