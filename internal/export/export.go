// Package export renders processed batches as import-ready files: one CSV per posting
// module, a review list, and optionally a workbook with the same content.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/pipeline"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// ReviewFile is the name of the review list written next to the module files.
const ReviewFile = "review.csv"

// EntryRow is one journal line in the accounting import layout.
type EntryRow struct {
	SessionID   string `csv:"Session ID"`
	DocNumber   string `csv:"Doc Number"`
	DocDate     string `csv:"Doc Date"`
	Name        string `csv:"Payer/Vendor Name"`
	GLCode      string `csv:"GL Code"`
	FundCode    string `csv:"Fund Code"`
	Debit       string `csv:"Debit"`
	Credit      string `csv:"Credit"`
	Description string `csv:"Description"`
	Reference   string `csv:"Reference"`
}

// ReviewRow is one transaction that needs a human decision.
type ReviewRow struct {
	TransactionID string `csv:"Transaction ID"`
	Date          string `csv:"Date"`
	Description   string `csv:"Description"`
	Amount        string `csv:"Amount"`
	Module        string `csv:"Module"`
	DocNumber     string `csv:"Doc Number"`
	GLCode        string `csv:"GL Code"`
	Confidence    string `csv:"Confidence"`
	MatchedBy     string `csv:"Matched By"`
	DuplicateOf   string `csv:"Duplicate Of"`
	Balanced      bool   `csv:"Balanced"`
	Reasons       string `csv:"Reasons"`
}

// EntryRows lays out the entries of module, one row per journal line.
func EntryRows(res *pipeline.BatchResult, module models.Module) []EntryRow {
	var rows []EntryRow
	for _, p := range res.Postings {
		e := p.Entry
		if e.Module != module {
			continue
		}
		name := p.Result.Payee
		if name == "" {
			name = p.Result.Category
		}
		for _, l := range e.Lines {
			desc := l.Description
			if desc == "" {
				desc = e.Description
			}
			rows = append(rows, EntryRow{
				SessionID:   e.SessionID,
				DocNumber:   e.DocNumber,
				DocDate:     formatDate(e),
				Name:        name,
				GLCode:      l.GLCode,
				FundCode:    l.FundCode,
				Debit:       money(l.Debit),
				Credit:      money(l.Credit),
				Description: desc,
				Reference:   strings.Join(e.TransactionIDs, " "),
			})
		}
	}
	return rows
}

// ReviewRows lists the postings that need review, in statement order.
func ReviewRows(res *pipeline.BatchResult) []ReviewRow {
	review := res.Review()
	rows := make([]ReviewRow, 0, len(review))
	for _, p := range review {
		rows = append(rows, ReviewRow{
			TransactionID: p.Transaction.ID,
			Date:          formatDate(p.Entry),
			Description:   p.Transaction.Description,
			Amount:        p.Transaction.Amount.StringFixed(2),
			Module:        string(p.Entry.Module),
			DocNumber:     p.Entry.DocNumber,
			GLCode:        p.Result.GLCode,
			Confidence:    fmt.Sprintf("%.2f", p.Entry.Confidence),
			MatchedBy:     p.Entry.MatchedBy,
			DuplicateOf:   p.Duplicate.MatchedTransactionID,
			Balanced:      p.Entry.Balanced,
			Reasons:       p.Entry.ReviewReason(),
		})
	}
	return rows
}

func formatDate(e models.JournalEntry) string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(dateutils.DateLayoutUS)
}

// money renders a non-zero amount with two decimals and leaves zero blank.
func money(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

// Writer writes CSV files with a configurable delimiter.
type Writer struct {
	delimiter rune
	logger    logging.Logger
}

// NewWriter creates a Writer. A zero delimiter means comma.
func NewWriter(delimiter rune, logger logging.Logger) *Writer {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Writer{delimiter: delimiter, logger: logging.OrDefault(logger)}
}

// WriteCSV marshals rows, a slice of tagged structs, to out.
func (w *Writer) WriteCSV(out io.Writer, rows interface{}) error {
	csvWriter := csv.NewWriter(out)
	csvWriter.Comma = w.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteBatch writes CR.csv, CD.csv and JV.csv for the modules that have entries, and
// review.csv when anything needs review. It returns the written paths.
func (w *Writer) WriteBatch(res *pipeline.BatchResult, dir string) ([]string, error) {
	if res == nil {
		return nil, fmt.Errorf("cannot export a nil batch")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("error creating directory: %w", err)
	}

	var written []string
	for _, module := range models.PostingModules {
		rows := EntryRows(res, module)
		if len(rows) == 0 {
			continue
		}
		path := filepath.Join(dir, string(module)+".csv")
		if err := w.writeFile(path, rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if review := ReviewRows(res); len(review) > 0 {
		path := filepath.Join(dir, ReviewFile)
		if err := w.writeFile(path, review); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	w.logger.Info("Exported batch",
		logging.F(logging.FieldBatchID, res.BatchID),
		logging.F(logging.FieldCount, len(written)),
		logging.F("directory", dir))
	return written, nil
}

func (w *Writer) writeFile(path string, rows interface{}) (err error) {
	file, err := os.Create(path) // #nosec G304 -- output path chosen by the operator
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing %s: %w", path, cerr)
		}
	}()
	if err := w.WriteCSV(file, rows); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	w.logger.Debug("Wrote CSV file", logging.F(logging.FieldFile, path))
	return nil
}
