// Package inspect computes file statistics locally, before a file is sent
// to the processing service.
package inspect

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/sheetscan-cli/internal/filetype"
	"github.com/KaramelBytes/sheetscan-cli/internal/stats"
)

// ErrLegacyExcel is returned for .xls workbooks, which can only be
// inspected by the processing service.
var ErrLegacyExcel = errors.New("legacy .xls workbooks cannot be inspected locally")

// Options controls local inspection.
type Options struct {
	// Sheet selects an XLSX sheet by name; empty means the active sheet.
	Sheet string
	// CheckColumns is how many leading columns are checked for alphabetic
	// content when counting rows with errors.
	CheckColumns int
	// MaxRows limits data rows processed from XLSX sheets; 0 means
	// unlimited. CSV files are always read in full.
	MaxRows int
}

// DefaultOptions mirrors the processing service's limits.
func DefaultOptions() Options {
	return Options{CheckColumns: 19, MaxRows: 100000}
}

// File reads a CSV or XLSX file and summarizes it.
func File(path string, opt Options) (*stats.FileStatistics, error) {
	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch filetype.Classify(path) {
	case filetype.CSV:
		rows, err = readCSV(path)
		opt.MaxRows = 0
	case filetype.Excel:
		if strings.HasSuffix(strings.ToLower(path), ".xls") {
			return nil, ErrLegacyExcel
		}
		rows, err = readXLSX(path, opt.Sheet)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
	if err != nil {
		return nil, err
	}
	s := Rows(rows, opt)
	s.ProcessingTimeSeconds = time.Since(start).Seconds()
	return s, nil
}

// Rows summarizes a header row followed by data rows. Short rows are padded
// with empty cells up to the header width. Only ASCII letters mark a row as
// having errors.
func Rows(rows [][]string, opt Options) *stats.FileStatistics {
	s := &stats.FileStatistics{EmptyCellsByColumn: stats.ColumnCounts{}}
	if len(rows) == 0 {
		return s
	}
	header := rows[0]
	data := rows[1:]
	if opt.MaxRows > 0 && len(data) > opt.MaxRows {
		data = data[:opt.MaxRows]
	}
	s.TotalRows = len(data)
	s.TotalColumns = len(header)

	empty := make([]int, len(header))
	for _, row := range data {
		hasError := false
		for col := range header {
			val := ""
			if col < len(row) {
				val = row[col]
			}
			if strings.TrimSpace(val) == "" {
				empty[col]++
				continue
			}
			if col < opt.CheckColumns && containsLetter(val) {
				hasError = true
			}
		}
		if hasError {
			s.RowsWithErrors++
		}
	}
	for col, name := range header {
		s.TotalEmptyCells += empty[col]
		s.EmptyCellsByColumn = append(s.EmptyCellsByColumn, stats.ColumnCount{Column: columnName(name, col), Count: empty[col]})
	}
	return s
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w (available: %s)", sheet, err, strings.Join(f.GetSheetList(), ", "))
	}
	return rows, nil
}

func containsLetter(s string) bool {
	for _, r := range s {
		if ('A' <= r && r <= 'Z') || ('a' <= r && r <= 'z') {
			return true
		}
	}
	return false
}

func columnName(name string, idx int) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("Unnamed: %d", idx)
	}
	return name
}
