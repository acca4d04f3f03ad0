package calib

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// LoadCSV reads a calibration table from a CSV file.
func LoadCSV(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("calib: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("calib: read %s: %w", path, err)
	}

	return t, nil
}

// ReadCSV reads a calibration table from CSV-formatted data.
func ReadCSV(r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // column count is validated per row
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	return New(records, opts)
}

// LoadXLSX reads a calibration table from the first sheet of an XLSX
// workbook.
func LoadXLSX(path string, opts Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("calib: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("calib: %s: %w", path, ErrNoData)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("calib: read %s: %w", path, err)
	}

	t, err := New(rows, opts)
	if err != nil {
		return nil, fmt.Errorf("calib: read %s: %w", path, err)
	}

	return t, nil
}
