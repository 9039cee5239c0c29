package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Structural failures. Anything else that goes wrong inside a file is a
// per-row warning, not an error.
var (
	ErrEmptyFile     = errors.New("file contains no data")
	ErrUndecodable   = errors.New("file could not be decoded")
	ErrNoKnownFields = errors.New("could not detect any recognizable columns")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readRows decodes an uploaded file into raw cell rows. The format is chosen
// by filename extension: .xlsx goes through excelize, everything else is
// treated as CSV.
func readRows(data []byte, filename string) ([][]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return readXLSX(data)
	}
	return readCSV(data)
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // exports routinely have ragged rows
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	// Only the first sheet is imported; accounting exports put their data
	// there and any extra sheets are charts or notes.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// isBlankRow reports whether every cell in the row is empty or whitespace.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cellAt returns the cell at column i, tolerating short rows.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
