// Package importer reads word lists from spreadsheet and text files for
// bulk import into a collection.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file extensions other than .xlsx,
// .csv and .txt.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Config controls how words are read.
type Config struct {
	SheetName  string // xlsx sheet; empty uses the first sheet
	SkipHeader bool   // drop the first row
}

// Result holds the words read from a file.
type Result struct {
	Words      []string
	Rows       int // rows read, header excluded
	Blank      int
	Duplicates int
}

// ReadFile reads the first column of path. Words are trimmed, lower-cased
// and de-duplicated in order; blank rows are skipped.
func ReadFile(path string, cfg Config) (*Result, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return readExcel(path, cfg)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", ext, err)
		}
		defer f.Close()
		return ReadCSV(f, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadCSV reads the first column of CSV data. Plain text files with one
// word per line parse as single-column CSV.
func ReadCSV(r io.Reader, cfg Config) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return collect(rows, cfg), nil
}

func readExcel(path string, cfg Config) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return collect(rows, cfg), nil
}

func collect(rows [][]string, cfg Config) *Result {
	if cfg.SkipHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	res := &Result{Rows: len(rows)}
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		var w string
		if len(row) > 0 {
			w = Normalize(row[0])
		}
		switch {
		case w == "":
			res.Blank++
		case seen[w]:
			res.Duplicates++
		default:
			seen[w] = true
			res.Words = append(res.Words, w)
		}
	}
	return res
}

// Normalize trims and lower-cases a word. A leading byte order mark is
// dropped.
func Normalize(w string) string {
	w = strings.TrimPrefix(w, "\ufeff")
	return strings.ToLower(strings.TrimSpace(w))
}
