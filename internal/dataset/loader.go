package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"emotion-prep-go/internal/types"
)

// ErrUnsupportedFormat is returned when writing to a path that is neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Format returns the table format implied by path: "csv" or "xlsx".
func Format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".xlsx":
		return "xlsx", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// ReadTable loads a table with a header row. .xlsx files go through excelize;
// any other extension is read as CSV.
func ReadTable(path string) (*types.Table, error) {
	format, err := Format(path)
	if err != nil {
		format = "csv"
	}
	var rows [][]string
	if format == "xlsx" {
		rows, err = readXLSX(path)
	} else {
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row in %s", path)
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := types.NewTable(header...)
	for i, r := range rows[1:] {
		if len(r) > len(header) {
			return nil, fmt.Errorf("%s row %d: %d fields, header has %d", path, i+2, len(r), len(header))
		}
		t.Append(r...)
	}
	return t, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}
