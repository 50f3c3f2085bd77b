package extractor

import (
	"context"
	"fmt"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor reads spreadsheet statements. Each sheet is a page; a sheet whose
// first row is a recognisable header is rendered row by row, other sheets as text.
type XLSXExtractor struct {
	logger logging.Logger
}

// NewXLSXExtractor creates an XLSXExtractor.
func NewXLSXExtractor(logger logging.Logger) *XLSXExtractor {
	return &XLSXExtractor{logger: logging.OrDefault(logger)}
}

// Extract implements Extractor.
func (e *XLSXExtractor) Extract(_ context.Context, path string) ([]models.RawLine, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{FilePath: path, ExpectedFormat: "xlsx", Msg: err.Error()}
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close spreadsheet")
		}
	}()

	var out []models.RawLine
	for page, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &parsererror.DataExtractionError{
				FilePath: path,
				Reason:   fmt.Sprintf("failed to read sheet %q", sheet),
				Err:      err,
			}
		}
		rows = trimLeadingBlankRows(rows)
		out = append(out, rowsToLines(rows, page+1)...)
	}
	return out, nil
}

func trimLeadingBlankRows(rows [][]string) [][]string {
	for len(rows) > 0 {
		blank := true
		for _, c := range rows[0] {
			if c != "" {
				blank = false
				break
			}
		}
		if !blank {
			break
		}
		rows = rows[1:]
	}
	return rows
}
