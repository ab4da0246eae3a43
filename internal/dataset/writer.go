package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"emotion-prep-go/internal/types"
)

const sheetName = "Sheet1"

// WriteTable writes t with its header to path (.csv or .xlsx). The file is
// replaced atomically, so readers never see a partial table.
func WriteTable(path string, t *types.Table) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if format == "xlsx" {
		return writeAtomic(path, func(w io.Writer) error { return encodeXLSX(w, t) })
	}
	return writeAtomic(path, func(w io.Writer) error { return encodeCSV(w, t) })
}

func encodeCSV(w io.Writer, t *types.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeXLSX(w io.Writer, t *types.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	write := func(i int, row []string) error {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheetName, cell, &row)
	}
	if err := write(0, t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.Rows {
		if err := write(i+1, r); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func writeAtomic(dest string, encode func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, 0o644)
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	bw := bufio.NewWriter(tmp)
	if err := encode(bw); err != nil {
		return fail(fmt.Errorf("encode %s: %w", dest, err))
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", dest, err)
	}
	return nil
}
