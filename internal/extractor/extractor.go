// Package extractor pulls statement text out of uploaded files. Every format ends up
// as numbered text lines for the statement parser; structured sources (CSV, XLSX,
// CAMT.053) are rendered as one "YYYY-MM-DD description amount" line per row.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"
)

// Format names a supported input format.
type Format string

const (
	Text Format = "text"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
	CAMT Format = "camt"
)

// Extractor reads one file into raw lines.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]models.RawLine, error)
}

// Document is the extracted content of one upload.
type Document struct {
	Format Format
	Meta   models.FileMeta
	Lines  []models.RawLine
}

// Text joins the document lines.
func (d *Document) Text() string {
	parts := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// FormatFor maps a file extension to a format.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return Text, true
	case ".csv":
		return CSV, true
	case ".xlsx", ".xlsm":
		return XLSX, true
	case ".pdf":
		return PDF, true
	case ".xml":
		return CAMT, true
	}
	return "", false
}

// Factory selects an extractor by format.
type Factory struct {
	extractors map[Format]Extractor
	logger     logging.Logger
}

// NewFactory creates a factory with the standard extractors.
func NewFactory(logger logging.Logger) *Factory {
	logger = logging.OrDefault(logger)
	return &Factory{
		extractors: map[Format]Extractor{
			Text: NewTextExtractor(),
			CSV:  NewCSVExtractor(logger),
			XLSX: NewXLSXExtractor(logger),
			PDF:  NewPDFExtractor(logger, nil),
			CAMT: NewCAMTExtractor(logger),
		},
		logger: logger,
	}
}

// Register replaces the extractor for format.
func (f *Factory) Register(format Format, e Extractor) {
	f.extractors[format] = e
}

// Get returns the extractor for format.
func (f *Factory) Get(format Format) (Extractor, error) {
	e, ok := f.extractors[format]
	if !ok {
		return nil, fmt.Errorf("unknown input format: %s", format)
	}
	return e, nil
}

// Extract picks the extractor from the file extension and reads path.
func (f *Factory) Extract(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input %s is a directory", path)
	}

	format, ok := FormatFor(path)
	if !ok {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "txt, csv, xlsx, pdf or xml",
			Msg:            "unsupported file extension",
		}
	}
	e, err := f.Get(format)
	if err != nil {
		return nil, err
	}

	lines, err := e.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Extracted statement text",
		logging.F(logging.FieldFile, path),
		logging.F("format", string(format)),
		logging.F(logging.FieldCount, len(lines)))

	return &Document{
		Format: format,
		Meta: models.FileMeta{
			Name:      filepath.Base(path),
			Extension: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
			Size:      info.Size(),
		},
		Lines: lines,
	}, nil
}

// Scan lists the supported statement files directly under dir, sorted by name.
// Subdirectories and unsupported extensions are skipped.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFor(e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// splitText numbers the lines of text on the given page, continuing from start.
func splitText(text string, page, start int) []models.RawLine {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []models.RawLine
	for i, l := range strings.Split(text, "\n") {
		out = append(out, models.RawLine{Text: strings.TrimRight(l, " \t\r"), Page: page, Number: start + i})
	}
	return out
}
