package series

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads a time series from the first sheet of an .xlsx
// workbook. The sheet follows the CSV layout: one header row, then data.
func ParseWorkbook(r io.Reader, name string) (Series, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Series{}, &SourceReadError{Entity: name, Err: fmt.Errorf("opening workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Series{}, &SourceReadError{Entity: name, Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Series{}, &SourceReadError{Entity: name, Err: fmt.Errorf("reading sheet %q: %w", sheets[0], err)}
	}

	return decodeRows(name, rows)
}
