// Package csvfile reads and writes the delimited-text files exchanged
// with user import jobs. Reading tokenizes rows into key-value maps
// with dynamic typing (boolean and numeric literals become typed
// values); writing emits a header row and never quotes, since upload
// payloads carry pre-escaped commas instead of quoting.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Read parses delimited text with a header row into one map per row.
// Empty lines are skipped. Cell values are dynamically typed: the
// literals true/false (any casing) become booleans, numeric literals
// become int64 or float64, everything else stays a string. Empty cells
// are omitted from the row map so downstream validation sees them as
// absent rather than as empty strings.
func Read(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []map[string]any
	for line := 2; ; line++ {
		cells, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if isEmptyLine(cells) {
			continue
		}
		if len(cells) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", line, len(cells), len(header))
		}

		row := make(map[string]any, len(cells))
		for i, cell := range cells {
			if cell == "" {
				continue
			}
			row[header[i]] = typeCell(cell)
		}
		rows = append(rows, row)
	}
}

// ReadFile reads and tokenizes a delimited-text file.
func ReadFile(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func isEmptyLine(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}

// typeCell applies dynamic typing to one cell.
func typeCell(cell string) any {
	switch strings.ToLower(cell) {
	case "true":
		return true
	case "false":
		return false
	}
	// A leading "+" stays a string: "+447700900123" is a phone
	// number, not an integer.
	if strings.HasPrefix(cell, "+") {
		return cell
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}

// Write serializes rows under a header row with quoting disabled.
// Cells containing literal commas must already be escaped; this writer
// joins cells verbatim.
func Write(w io.Writer, header []string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, strings.Join(header, ",")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("row %d has %d cells, header has %d", i+1, len(row), len(header))
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, ",")); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}

// WriteFile serializes rows to a file.
func WriteFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := Write(f, header, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	return nil
}
