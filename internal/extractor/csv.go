package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"

	"github.com/gocarina/gocsv"
)

// CSVExtractor reads bank CSV exports. A file with a recognisable header (date,
// description and amount or debit/credit columns) is rendered row by row; anything
// else is handed to the parser as plain text.
type CSVExtractor struct {
	logger logging.Logger
}

// NewCSVExtractor creates a CSVExtractor.
func NewCSVExtractor(logger logging.Logger) *CSVExtractor {
	return &CSVExtractor{logger: logging.OrDefault(logger)}
}

// Extract implements Extractor.
func (e *CSVExtractor) Extract(_ context.Context, path string) ([]models.RawLine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	records, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil || len(records) == 0 {
		e.logger.Debug("CSV has no usable header, reading as text",
			logging.F(logging.FieldFile, path))
		return splitText(string(data), 1, 1), nil
	}

	rows := mapsToRows(records)
	if !findColumns(rows[0]).usable() {
		e.logger.Debug("CSV header not recognised, reading as text",
			logging.F(logging.FieldFile, path))
		return splitText(string(data), 1, 1), nil
	}
	return rowsToLines(rows, 1), nil
}

// mapsToRows turns header-keyed records back into a header row plus value rows.
// Column roles are found by name, so header order does not matter.
func mapsToRows(records []map[string]string) [][]string {
	header := make([]string, 0, len(records[0]))
	for k := range records[0] {
		header = append(header, k)
	}
	sort.Strings(header)

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, rec := range records {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = rec[h]
		}
		rows = append(rows, row)
	}
	return rows
}
