package extractor

import (
	"fmt"
	"strings"

	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/statement"
	"fjacquet/gl-posting/internal/textutils"

	"github.com/adrg/strutil"
	"github.com/shopspring/decimal"
)

// Header aliases for tabular statements, compared after lower-casing and trimming.
var (
	dateHeaders        = []string{"date", "posting date", "post date", "transaction date", "booking date", "posted date"}
	descriptionHeaders = []string{"description", "memo", "details", "transaction description", "payee", "narrative"}
	amountHeaders      = []string{"amount", "transaction amount", "amount (usd)"}
	debitHeaders       = []string{"debit", "withdrawal", "withdrawals", "debits", "money out"}
	creditHeaders      = []string{"credit", "deposit", "deposits", "credits", "money in"}
	checkHeaders       = []string{"check number", "check", "check #", "check no", "cheque number"}
)

// columns maps the recognised roles to column indexes; -1 means absent.
type columns struct {
	date, description, amount, debit, credit, check int
}

func (c columns) usable() bool {
	return c.date >= 0 && c.description >= 0 && (c.amount >= 0 || c.debit >= 0 || c.credit >= 0)
}

func findColumns(header []string) columns {
	c := columns{-1, -1, -1, -1, -1, -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		set := func(target *int, names []string) {
			if *target < 0 && strutil.SliceContains(names, h) {
				*target = i
			}
		}
		set(&c.date, dateHeaders)
		set(&c.description, descriptionHeaders)
		set(&c.amount, amountHeaders)
		set(&c.debit, debitHeaders)
		set(&c.credit, creditHeaders)
		set(&c.check, checkHeaders)
	}
	return c
}

// rowsToLines renders tabular rows as generic statement lines. The first row is the
// header. Rows missing a date or an amount are kept as plain text so the parser can
// still report them.
func rowsToLines(rows [][]string, page int) []models.RawLine {
	if len(rows) == 0 {
		return nil
	}
	cols := findColumns(rows[0])
	if !cols.usable() {
		return joinedRows(rows, page)
	}

	var out []models.RawLine
	for i, row := range rows[1:] {
		number := i + 2
		if line, ok := renderRow(cols, row); ok {
			out = append(out, models.RawLine{Text: line, Page: page, Number: number})
			continue
		}
		if text := strings.TrimSpace(strings.Join(row, " ")); text != "" {
			out = append(out, models.RawLine{Text: text, Page: page, Number: number})
		}
	}
	return out
}

func renderRow(c columns, row []string) (string, bool) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, _, err := dateutils.ParseDate(cell(c.date))
	if err != nil {
		return "", false
	}
	amount, ok := rowAmount(cell(c.amount), cell(c.debit), cell(c.credit))
	if !ok {
		return "", false
	}

	desc := textutils.CollapseSpaces(cell(c.description))
	if check := cell(c.check); check != "" && textutils.ExtractCheckNumber(desc) == "" {
		desc = strings.TrimSpace(fmt.Sprintf("CHECK #%s %s", check, desc))
	}
	if desc == "" {
		desc = "NO DESCRIPTION"
	}
	return fmt.Sprintf("%s %s %s", dateutils.ToISODate(date), desc, signedAmount(amount)), true
}

// rowAmount prefers a signed amount column, then debit and credit columns.
func rowAmount(amount, debit, credit string) (decimal.Decimal, bool) {
	if amount != "" {
		a, err := statement.ParseAmount(amount)
		if err != nil {
			return decimal.Zero, false
		}
		return a.Value, true
	}
	if debit != "" {
		if a, err := statement.ParseAmount(debit); err == nil && !a.Value.IsZero() {
			return a.Value.Abs().Neg(), true
		}
	}
	if credit != "" {
		if a, err := statement.ParseAmount(credit); err == nil {
			return a.Value.Abs(), true
		}
	}
	return decimal.Zero, false
}

// signedAmount renders an explicit sign so the parser never has to guess direction.
func signedAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(2)
	}
	return "+" + d.StringFixed(2)
}

func joinedRows(rows [][]string, page int) []models.RawLine {
	var out []models.RawLine
	for i, row := range rows {
		text := strings.TrimSpace(strings.Join(row, " "))
		if text == "" {
			continue
		}
		out = append(out, models.RawLine{Text: textutils.CollapseSpaces(text), Page: page, Number: i + 1})
	}
	return out
}
