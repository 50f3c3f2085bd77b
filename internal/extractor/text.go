package extractor

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"
)

// TextExtractor reads UTF-8 text already produced by an OCR or copy-paste step.
type TextExtractor struct{}

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

// Extract implements Extractor.
func (e *TextExtractor) Extract(_ context.Context, path string) ([]models.RawLine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, &parsererror.InvalidFormatError{FilePath: path, ExpectedFormat: "UTF-8 text", Msg: "invalid UTF-8"}
	}
	return splitText(string(data), 1, 1), nil
}
