package tabular

import (
	"bytes"
	"encoding/csv"
	"io"

	ierr "github.com/meterflow/meterflow/internal/errors"
)

// ReadCSV parses CSV content into a Table. Spreadsheet exports are messy:
// a UTF-8 BOM may prefix the file, quotes may be lazy, and rows may have
// uneven field counts.
func ReadCSV(content []byte) (*Table, error) {
	// Strip the BOM if present.
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var table Table
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("The CSV content could not be parsed").
				Mark(ierr.ErrValidation)
		}
		if table.Header == nil {
			table.Header = append([]string(nil), record...)
			continue
		}
		table.Rows = append(table.Rows, append([]string(nil), record...))
	}

	if table.Header == nil {
		return nil, ierr.NewError("empty csv file").
			WithHint("The file has no header row").
			Mark(ierr.ErrValidation)
	}
	return &table, nil
}
