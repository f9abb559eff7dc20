package tabular

import (
	"path/filepath"
	"strings"

	ierr "github.com/meterflow/meterflow/internal/errors"
)

// Table is a parsed tabular file: one header row plus data rows. Rows may
// be ragged; Cell returns "" past the end of a short row.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the index of the named header column, exact match.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i, true
		}
	}
	return 0, false
}

// ColumnIndexFold returns the index of the named header column, matching
// case-insensitively.
func (t *Table) ColumnIndexFold(name string) (int, bool) {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, true
		}
	}
	return 0, false
}

// Cell returns the trimmed cell at (row, col), or "" when the row is short.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// SupportedExtension reports whether the filename has a parseable tabular
// extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

// ReadTable parses the file content according to the filename extension.
func ReadTable(filename string, content []byte) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(content)
	case ".xlsx":
		return ReadXLSX(content)
	case ".xls":
		return ReadXLS(content)
	default:
		return nil, ierr.NewError("unsupported file type").
			WithHintf("File %q is not a CSV or Excel file", filename).
			Mark(ierr.ErrValidation)
	}
}
