package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format is the encoding of a history export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath infers the format from a file name or object key.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", "":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// record is one data row addressed by normalized header name.
type record struct {
	line   int
	values []string
	colMap map[string]int
}

func (r record) get(names ...string) string {
	for _, name := range names {
		if idx, ok := r.colMap[name]; ok && idx < len(r.values) {
			return strings.TrimSpace(r.values[idx])
		}
	}
	return ""
}

func (r record) has(names ...string) bool {
	for _, name := range names {
		if _, ok := r.colMap[name]; ok {
			return true
		}
	}
	return false
}

// readTable feeds every non-blank data row to fn. required lists column groups
// where any one alias must be present in the header.
func readTable(r io.Reader, format Format, required [][]string, fn func(record) error) error {
	rows, err := tableRows(r, format)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("file has no header row")
	}

	colMap := make(map[string]int)
	for i, col := range rows[0] {
		colMap[normalizeHeader(col)] = i
	}

	header := record{colMap: colMap}
	for _, aliases := range required {
		if !header.has(aliases...) {
			return fmt.Errorf("missing required column: %s", aliases[0])
		}
	}

	for i, values := range rows[1:] {
		if blank(values) {
			continue
		}
		if err := fn(record{line: i + 2, values: values, colMap: colMap}); err != nil {
			return err
		}
	}
	return nil
}

func tableRows(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatXLSX:
		return xlsxRows(r)
	default:
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return rows, nil
	}
}

// xlsxRows reads the first sheet of a workbook.
func xlsxRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func normalizeHeader(col string) string {
	col = strings.TrimPrefix(col, "\uFEFF")
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(col, " ", "_")
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "01/02/2006", "1/2/2006", "01-02-06"}

func parseDate(val string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", val)
}

// parseInt accepts float strings like "3.0" the way spreadsheet exports write them.
func parseInt(val string) (int, error) {
	if val == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", val)
	}
	return int(f), nil
}

func parseFloat(val string) (*float64, error) {
	if val == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", val)
	}
	return &f, nil
}
