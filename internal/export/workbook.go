package export

import (
	"fmt"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/pipeline"

	"github.com/xuri/excelize/v2"
)

var (
	entryHeader  = []interface{}{"Session ID", "Doc Number", "Doc Date", "Payer/Vendor Name", "GL Code", "Fund Code", "Debit", "Credit", "Description", "Reference"}
	reviewHeader = []interface{}{"Transaction ID", "Date", "Description", "Amount", "Module", "Doc Number", "GL Code", "Confidence", "Matched By", "Duplicate Of", "Balanced", "Reasons"}
)

// SummarySheet is the first sheet of an exported workbook.
const SummarySheet = "Summary"

// WriteWorkbook writes the batch as one XLSX file: a summary sheet, one sheet per
// posting module and a Review sheet.
func (w *Writer) WriteWorkbook(res *pipeline.BatchResult, path string) error {
	if res == nil {
		return fmt.Errorf("cannot export a nil batch")
	}
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := writeSummary(f, res); err != nil {
		return err
	}

	for _, module := range models.PostingModules {
		rows := EntryRows(res, module)
		values := make([][]interface{}, len(rows))
		for i, r := range rows {
			values[i] = []interface{}{r.SessionID, r.DocNumber, r.DocDate, r.Name, r.GLCode, r.FundCode, r.Debit, r.Credit, r.Description, r.Reference}
		}
		if err := writeSheet(f, string(module), entryHeader, values); err != nil {
			return err
		}
	}

	review := ReviewRows(res)
	values := make([][]interface{}, len(review))
	for i, r := range review {
		values[i] = []interface{}{r.TransactionID, r.Date, r.Description, r.Amount, r.Module, r.DocNumber, r.GLCode, r.Confidence, r.MatchedBy, r.DuplicateOf, r.Balanced, r.Reasons}
	}
	if err := writeSheet(f, "Review", reviewHeader, values); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	w.logger.Info("Exported workbook", logging.F(logging.FieldBatchID, res.BatchID), logging.F(logging.FieldFile, path))
	return nil
}

func writeSummary(f *excelize.File, res *pipeline.BatchResult) error {
	s := res.Summary
	rows := [][]interface{}{
		{"Batch", res.BatchID},
		{"Session", res.SessionKey},
		{"Bank", res.Bank},
		{"Transactions", s.Transactions},
		{"Deposits", s.Deposits.StringFixed(2)},
		{"Withdrawals", s.Withdrawals.StringFixed(2)},
		{"Needs review", s.NeedsReview},
		{"Duplicates", s.Duplicates},
		{"Unbalanced", s.Unbalanced},
	}
	for _, m := range append(append([]models.Module(nil), models.PostingModules...), models.ModuleUnknown) {
		rows = append(rows, []interface{}{"Module " + string(m), s.ByModule[m]})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}

func writeSheet(f *excelize.File, name string, header []interface{}, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}
