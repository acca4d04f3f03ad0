package calib

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned while building tables and curves.
var (
	ErrNoData         = errors.New("calib: table has no data rows")
	ErrLengthMismatch = errors.New("calib: wavelength and value lengths differ")
	ErrTooFewColumns  = errors.New("calib: row has too few columns")
	ErrNotNumeric     = errors.New("calib: value is not numeric")
	ErrTooFewPoints   = errors.New("calib: need at least 2 control points")
	ErrDuplicateX     = errors.New("calib: duplicate wavelength in table")
)

// Options control how raw records are read into a Table.
type Options struct {
	// ValueColumn is the zero-based index of the value column.
	// Zero selects the default, column 1 (the column after the
	// wavelength). The fiber attenuation table uses column 2 (dB/m).
	ValueColumn int
}

func normalizeOptions(opts Options) Options {
	if opts.ValueColumn <= 0 {
		opts.ValueColumn = 1
	}

	return opts
}

// Table holds one calibration table: wavelengths in nm and the raw values
// of the selected column, in file order.
type Table struct {
	Wavelengths []float64
	Values      []float64
}

// New parses raw records into a Table. If the first record fails numeric
// parsing it is treated as a header row. Any later record that fails to
// parse aborts the whole load with [ErrNotNumeric].
//
// Cells are scrubbed before parsing: every character other than digits,
// '.' and '-' is stripped, so "85.2 %" reads as 85.2.
func New(records [][]string, opts Options) (*Table, error) {
	opts = normalizeOptions(opts)

	if len(records) == 0 {
		return nil, ErrNoData
	}

	start := 0
	if _, _, err := parseRow(records[0], opts.ValueColumn); err != nil {
		start = 1 // header row
	}

	if start >= len(records) {
		return nil, ErrNoData
	}

	t := &Table{
		Wavelengths: make([]float64, 0, len(records)-start),
		Values:      make([]float64, 0, len(records)-start),
	}

	for i := start; i < len(records); i++ {
		wl, val, err := parseRow(records[i], opts.ValueColumn)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		t.Wavelengths = append(t.Wavelengths, wl)
		t.Values = append(t.Values, val)
	}

	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Wavelengths)
}

// Curve builds an interpolant over the raw values of the table.
func (t *Table) Curve() (*Curve, error) {
	return NewCurve(t.Wavelengths, t.Values)
}

// PercentCurve builds an interpolant over the values divided by 100,
// for tables that store efficiency / transmission / reflectivity percent.
func (t *Table) PercentCurve() (*Curve, error) {
	return NewPercentCurve(t.Wavelengths, t.Values)
}

func parseRow(record []string, valueColumn int) (wl, val float64, err error) {
	if len(record) <= valueColumn {
		return 0, 0, fmt.Errorf("%w: have %d, need %d", ErrTooFewColumns, len(record), valueColumn+1)
	}

	wl, err = parseCell(record[0])
	if err != nil {
		return 0, 0, fmt.Errorf("column 1: %w", err)
	}

	val, err = parseCell(record[valueColumn])
	if err != nil {
		return 0, 0, fmt.Errorf("column %d: %w", valueColumn+1, err)
	}

	return wl, val, nil
}

// parseCell strips every character other than digits, '.' and '-', then
// parses the remainder as a float.
func parseCell(cell string) (float64, error) {
	var b strings.Builder

	for _, r := range cell {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, cell)
	}

	return v, nil
}
