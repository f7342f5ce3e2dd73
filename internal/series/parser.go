package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Required column names. Header matching is case-insensitive and ignores
// surrounding whitespace; any other column is ignored.
const (
	ColumnT = "t"
	ColumnX = "x"
	ColumnY = "y"
)

// ErrNoHeader is returned for a source without a header row.
var ErrNoHeader = errors.New("missing header row")

// Parse reads a CSV time series from r. name becomes the series name.
// A missing column, a short row or an unparsable number fails the whole
// source with a *SourceReadError.
func Parse(r io.Reader, name string) (Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return Series{}, &SourceReadError{Entity: name, Line: line, Err: err}
		}
		row := make([]string, len(rec))
		copy(row, rec)
		rows = append(rows, row)
	}

	return decodeRows(name, rows)
}

// columns holds the resolved header positions of the required fields.
type columns struct {
	t, x, y int
}

func (c columns) width() int {
	return max(c.t, c.x, c.y) + 1
}

func resolveColumns(header []string) (columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	cols := columns{t: lookup(ColumnT), x: lookup(ColumnX), y: lookup(ColumnY)}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("missing required column(s) %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// decodeRows turns a header row followed by data rows into a Series.
// Blank rows are skipped.
func decodeRows(name string, rows [][]string) (Series, error) {
	if len(rows) == 0 {
		return Series{}, &SourceReadError{Entity: name, Err: ErrNoHeader}
	}

	cols, err := resolveColumns(rows[0])
	if err != nil {
		return Series{}, &SourceReadError{Entity: name, Line: 1, Err: err}
	}

	samples := make([]Sample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		if len(row) < cols.width() {
			return Series{}, &SourceReadError{
				Entity: name,
				Line:   line,
				Err:    fmt.Errorf("row has %d fields, need at least %d", len(row), cols.width()),
			}
		}

		var smp Sample
		for _, f := range []struct {
			col  int
			name string
			dst  *float64
		}{
			{cols.t, ColumnT, &smp.T},
			{cols.x, ColumnX, &smp.X},
			{cols.y, ColumnY, &smp.Y},
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[f.col]), 64)
			if err != nil {
				return Series{}, &SourceReadError{
					Entity: name,
					Line:   line,
					Err:    fmt.Errorf("column %s: %w", f.name, err),
				}
			}
			*f.dst = v
		}
		samples = append(samples, smp)
	}

	return Series{Name: name, Samples: samples}, nil
}

func blankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
