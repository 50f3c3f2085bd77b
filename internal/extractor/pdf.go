package extractor

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"

	"github.com/ledongthuc/pdf"
)

// PageReader returns the text rows of each page of a PDF.
type PageReader interface {
	ReadPages(path string) ([][]string, error)
}

// LibPageReader reads the PDF text layer with ledongthuc/pdf.
type LibPageReader struct{}

// ReadPages implements PageReader.
// Malformed files can make the library panic; that is reported as an error.
func (LibPageReader) ReadPages(path string) (pages [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		var lines []string
		for _, row := range rows {
			var b strings.Builder
			for _, word := range row.Content {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word.S)
			}
			lines = append(lines, b.String())
		}
		pages = append(pages, lines)
	}
	return pages, nil
}

// MockPageReader returns fixed pages.
type MockPageReader struct {
	Pages [][]string
	Err   error
}

// ReadPages implements PageReader.
func (m MockPageReader) ReadPages(string) ([][]string, error) {
	return m.Pages, m.Err
}

// PDFExtractor reads the text layer of digital PDFs. Scanned PDFs without text are
// reported as needing OCR.
type PDFExtractor struct {
	reader PageReader
	logger logging.Logger
}

// NewPDFExtractor creates a PDFExtractor. A nil reader uses LibPageReader.
func NewPDFExtractor(logger logging.Logger, reader PageReader) *PDFExtractor {
	if reader == nil {
		reader = LibPageReader{}
	}
	return &PDFExtractor{reader: reader, logger: logging.OrDefault(logger)}
}

// Extract implements Extractor.
func (e *PDFExtractor) Extract(_ context.Context, path string) ([]models.RawLine, error) {
	pages, err := e.reader.ReadPages(path)
	if err != nil {
		return nil, &parsererror.DataExtractionError{FilePath: path, Reason: "failed to read PDF", Err: err}
	}

	var (
		out    []models.RawLine
		number = 1
	)
	for i, page := range pages {
		for _, text := range page {
			out = append(out, models.RawLine{Text: strings.TrimSpace(text), Page: i + 1, Number: number})
			number++
		}
	}

	if !hasText(out) {
		return nil, &parsererror.DataExtractionError{
			FilePath: path,
			Reason:   "no text layer found; the PDF needs OCR before processing",
		}
	}
	e.logger.Debug("Read PDF text layer",
		logging.F(logging.FieldFile, path), logging.F("pages", len(pages)))
	return out, nil
}

func hasText(lines []models.RawLine) bool {
	for _, l := range lines {
		if strings.TrimSpace(l.Text) != "" {
			return true
		}
	}
	return false
}
