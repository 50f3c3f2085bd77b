package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"
	"fjacquet/gl-posting/internal/statement"
	"fjacquet/gl-posting/internal/xmlutils"

	"gopkg.in/xmlpath.v2"
)

// CAMTExtractor reads ISO 20022 CAMT.053 statements. The servicer name and statement
// period come first so the parser can detect the bank and the year; then one line per
// booked entry.
type CAMTExtractor struct {
	xpaths xmlutils.CAMT053
	logger logging.Logger
}

// NewCAMTExtractor creates a CAMTExtractor with the standard paths.
func NewCAMTExtractor(logger logging.Logger) *CAMTExtractor {
	return &CAMTExtractor{xpaths: xmlutils.DefaultCamt053XPaths(), logger: logging.OrDefault(logger)}
}

// Extract implements Extractor.
func (e *CAMTExtractor) Extract(_ context.Context, path string) ([]models.RawLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CAMT file: %w", err)
	}
	defer f.Close()

	root, err := xmlutils.Parse(f)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{FilePath: path, ExpectedFormat: "CAMT.053 XML", Msg: err.Error()}
	}
	if !xmlutils.Exists(root, e.xpaths.Statement.Root) {
		return nil, &parsererror.InvalidFormatError{FilePath: path, ExpectedFormat: "CAMT.053 XML", Msg: "no BkToCstmrStmt/Stmt element"}
	}

	var texts []string
	if servicer := xmlutils.First(root, e.xpaths.Statement.Servicer); servicer != "" {
		texts = append(texts, servicer)
	}
	if owner := xmlutils.First(root, e.xpaths.Statement.Owner); owner != "" {
		texts = append(texts, "Account holder: "+owner)
	}
	if period := e.period(root); period != "" {
		texts = append(texts, period)
	}

	entries, err := xmlutils.Nodes(root, e.xpaths.Statement.Entries)
	if err != nil {
		return nil, &parsererror.DataExtractionError{FilePath: path, Reason: "failed to select entries", Err: err}
	}
	skipped := 0
	for _, n := range entries {
		line, ok := e.entryLine(n)
		if !ok {
			skipped++
			continue
		}
		texts = append(texts, line)
	}
	if skipped > 0 {
		e.logger.Warn("Skipped CAMT entries without date or amount",
			logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, skipped))
	}

	out := make([]models.RawLine, len(texts))
	for i, t := range texts {
		out[i] = models.RawLine{Text: t, Page: 1, Number: i + 1}
	}
	return out, nil
}

func (e *CAMTExtractor) period(root *xmlpath.Node) string {
	from, _, errFrom := dateutils.ParseDate(firstDate(xmlutils.First(root, e.xpaths.Statement.FromDate)))
	to, _, errTo := dateutils.ParseDate(firstDate(xmlutils.First(root, e.xpaths.Statement.ToDate)))
	if errFrom != nil || errTo != nil {
		return ""
	}
	return fmt.Sprintf("Statement Period: %s to %s", from.Format(dateutils.DateLayoutUS), to.Format(dateutils.DateLayoutUS))
}

func (e *CAMTExtractor) entryLine(n *xmlpath.Node) (string, bool) {
	x := e.xpaths

	dateText := xmlutils.First(n, x.Entry.BookingDate)
	if dateText == "" {
		dateText = xmlutils.First(n, x.Entry.ValueDate)
	}
	date, _, err := dateutils.ParseDate(firstDate(dateText))
	if err != nil {
		return "", false
	}

	amt, err := statement.ParseAmount(xmlutils.First(n, x.Entry.Amount))
	if err != nil {
		return "", false
	}
	amount := amt.Value.Abs()
	if strings.EqualFold(xmlutils.First(n, x.Entry.CreditDebitInd), "DBIT") {
		amount = amount.Neg()
	}

	var parts []string
	if chk := xmlutils.First(n, x.Detail.CheckNumber); chk != "" {
		parts = append(parts, "CHECK #"+chk)
	}
	party := x.Detail.DebtorName
	if amount.IsNegative() {
		party = x.Detail.CreditorName
	}
	for _, p := range []string{party, x.Detail.UnstructuredInfo, x.Entry.AddEntryInfo, x.Detail.AdditionalTxInfo} {
		if v := xmlutils.First(n, p); v != "" && !containsFold(parts, v) {
			parts = append(parts, v)
		}
	}
	desc := strings.Join(parts, " ")
	if desc == "" {
		desc = xmlutils.First(n, x.Entry.AccountSvcRef)
	}
	if desc == "" {
		desc = "NO DESCRIPTION"
	}
	return fmt.Sprintf("%s %s %s", dateutils.ToISODate(date), desc, signedAmount(amount)), true
}

// firstDate keeps the date part of an ISO date-time.
func firstDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i == 10 {
		return s[:10]
	}
	return s
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.Contains(strings.ToLower(s), strings.ToLower(v)) {
			return true
		}
	}
	return false
}
