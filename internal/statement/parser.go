// Package statement turns extracted statement text into ordered transaction candidates
// using the bank templates in a templates.Registry.
package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/templates"
	"fjacquet/gl-posting/internal/textutils"

	"github.com/shopspring/decimal"
)

// Result is the outcome of parsing one statement. An empty Candidates slice is a valid
// "no transactions found" result, not a failure.
type Result struct {
	Bank           string
	Identifier     string
	Generic        bool
	RequiresOCR    bool
	Period         *dateutils.Period
	Candidates     []models.Candidate
	Warnings       []models.Warning
	ExpectedTotals models.StatementTotals
}

// Parser applies bank templates to statement lines.
type Parser struct {
	registry *templates.Registry
	logger   logging.Logger
	now      func() time.Time
}

// NewParser creates a parser over registry.
func NewParser(registry *templates.Registry, logger logging.Logger) *Parser {
	return &Parser{registry: registry, logger: logging.OrDefault(logger), now: time.Now}
}

// WithClock replaces the clock used as the last resort for missing years.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	cp := *p
	cp.now = now
	return &cp
}

// SplitLines turns extracted text into numbered raw lines on page 1.
func SplitLines(text string) []models.RawLine {
	var out []models.RawLine
	for i, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		out = append(out, models.RawLine{Text: l, Page: 1, Number: i + 1})
	}
	return out
}

// ParseText splits text into lines and parses them.
func (p *Parser) ParseText(text string) *Result {
	return p.Parse(SplitLines(text))
}

// Parse detects the bank from the full text and extracts candidates with its template.
func (p *Parser) Parse(lines []models.RawLine) *Result {
	tmpl, id := p.registry.Detect(joinLines(lines))
	return p.parse(lines, tmpl, id)
}

// ParseAs parses with a named template, bypassing detection.
func (p *Parser) ParseAs(lines []models.RawLine, bank string) (*Result, error) {
	tmpl, ok := p.registry.Get(bank)
	if !ok {
		return nil, fmt.Errorf("unknown bank template %q", bank)
	}
	return p.parse(lines, tmpl, ""), nil
}

func (p *Parser) parse(lines []models.RawLine, tmpl *templates.BankTemplate, identifier string) *Result {
	full := joinLines(lines)
	res := &Result{
		Bank:        tmpl.Name,
		Identifier:  identifier,
		Generic:     tmpl == p.registry.Generic(),
		RequiresOCR: tmpl.RequiresOCR,
	}
	log := p.logger.WithFields(logging.F(logging.FieldBank, tmpl.Name))

	res.Period = p.statementPeriod(tmpl, full)
	fallbackYear := dateutils.InferYear(full, p.now())
	res.ExpectedTotals = expectedTotals(tmpl, full)

	section := ""
	for _, raw := range lines {
		text := strings.TrimSpace(raw.Text)
		section = nextSection(tmpl, text, section)

		if len(text) < models.MinStatementLineChars || tmpl.Skips(text) {
			continue
		}

		pattern, match := matchLine(tmpl, text)
		if pattern == nil {
			if looksLikeTransaction(text) {
				res.Warnings = append(res.Warnings, models.Warning{
					Kind:    models.WarningParse,
					Line:    raw.Number,
					Message: fmt.Sprintf("unmatched transaction-like line: %q", text),
				})
			}
			continue
		}

		cand, err := p.candidate(tmpl, pattern, match, raw, section, res.Period, fallbackYear)
		if err != nil {
			log.Debug("Skipping line", logging.F(logging.FieldLine, raw.Number), logging.F(logging.FieldReason, err.Error()))
			res.Warnings = append(res.Warnings, models.Warning{Kind: models.WarningParse, Line: raw.Number, Message: err.Error()})
			continue
		}
		res.Candidates = append(res.Candidates, cand)
	}

	log.Info("Parsed statement",
		logging.F(logging.FieldCount, len(res.Candidates)),
		logging.F("warnings", len(res.Warnings)),
		logging.F("generic", res.Generic))
	return res
}

func matchLine(tmpl *templates.BankTemplate, text string) (*templates.LinePattern, map[string]string) {
	for i := range tmpl.Patterns {
		p := &tmpl.Patterns[i]
		m := p.Regexp().FindStringSubmatch(text)
		if m == nil {
			continue
		}
		groups := make(map[string]string, len(m))
		for j, name := range p.Regexp().SubexpNames() {
			if name != "" {
				groups[name] = strings.TrimSpace(m[j])
			}
		}
		return p, groups
	}
	return nil, nil
}

func (p *Parser) candidate(
	tmpl *templates.BankTemplate,
	pattern *templates.LinePattern,
	groups map[string]string,
	raw models.RawLine,
	section string,
	period *dateutils.Period,
	fallbackYear int,
) (models.Candidate, error) {
	amountText := groups[pattern.Group(templates.FieldAmount)]
	amount, err := ParseAmount(amountText)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("unparseable amount: %w", err)
	}

	dateText := groups[pattern.Group(templates.FieldDate)]
	if dateText == "" {
		return models.Candidate{}, fmt.Errorf("missing date")
	}
	if tmpl.OCRDayFix {
		dateText = fixOCRDay(dateText)
	}
	if !dateutils.HasYear(dateText) {
		dateText = dateutils.WithYear(dateText, resolveYear(tmpl, dateText, period, fallbackYear))
	}

	description := textutils.CollapseSpaces(groups[pattern.Group(templates.FieldDescription)])
	check := groups[pattern.Group(templates.FieldCheck)]
	if check == "" {
		check = textutils.ExtractCheckNumber(description)
	}

	txType := decideType(tmpl, pattern.TypeRule, section, description, amount)
	if description == "" {
		switch {
		case check != "":
			description = "CHECK #" + check
		case txType == models.TypeDeposit:
			description = "DEPOSIT"
		default:
			description = "WITHDRAWAL"
		}
	}

	return models.Candidate{
		Line:        raw,
		Bank:        tmpl.Name,
		Pattern:     pattern.Name,
		DateText:    dateText,
		DateFormats: tmpl.DateFormats,
		Description: description,
		AmountText:  amountText,
		Amount:      amount.Value,
		Type:        txType,
		CheckNumber: check,
	}, nil
}

// decideType applies the pattern's type rule. Section and auto rules fall back to
// keywords, then the literal sign, then withdrawal. A refund term or a hit in both
// keyword lists defers to the literal sign and otherwise means deposit.
func decideType(tmpl *templates.BankTemplate, rule templates.TypeRule, section, description string, amount Amount) models.TransactionType {
	switch rule {
	case templates.TypeDeposit:
		return models.TypeDeposit
	case templates.TypeWithdrawal:
		return models.TypeWithdrawal
	case templates.TypeSection:
		if t, ok := models.ParseTransactionType(section); ok {
			return t
		}
	}

	if tmpl.SignedAmounts {
		if amount.Sign < 0 {
			return models.TypeWithdrawal
		}
		return models.TypeDeposit
	}
	withdrawal := textutils.ContainsAny(description, tmpl.WithdrawalKeywords) != ""
	deposit := textutils.ContainsAny(description, tmpl.DepositKeywords) != ""

	// Refunds and lines naming both sides ("MOBILE CHECK DEPOSIT") are money in
	// unless the literal says otherwise.
	if textutils.IsRefund(description) || (withdrawal && deposit) {
		if amount.Sign < 0 {
			return models.TypeWithdrawal
		}
		return models.TypeDeposit
	}
	switch {
	case withdrawal:
		return models.TypeWithdrawal
	case deposit:
		return models.TypeDeposit
	case amount.Sign > 0:
		return models.TypeDeposit
	}
	return models.TypeWithdrawal
}

func nextSection(tmpl *templates.BankTemplate, line, current string) string {
	lower := strings.ToLower(line)
	if lower == "" {
		return current
	}
	hit := func(markers []string) bool {
		for _, m := range markers {
			if m != "" && strings.Contains(lower, strings.ToLower(m)) {
				return true
			}
		}
		return false
	}
	s := tmpl.Sections
	endedDeposits := hit(s.Deposits.EndMarkers)
	endedWithdrawals := hit(s.Withdrawals.EndMarkers)
	if endedDeposits && current == string(models.TypeDeposit) ||
		endedWithdrawals && current == string(models.TypeWithdrawal) {
		current = ""
	}
	switch {
	case hit(s.Deposits.StartMarkers) && !endedDeposits:
		return string(models.TypeDeposit)
	case hit(s.Withdrawals.StartMarkers) && !endedWithdrawals:
		return string(models.TypeWithdrawal)
	}
	return current
}

func resolveYear(tmpl *templates.BankTemplate, dateText string, period *dateutils.Period, fallback int) int {
	if tmpl.YearInference.Mode == templates.YearFromPeriod && period != nil {
		return period.ResolveYear(dateutils.MonthOf(dateText))
	}
	return fallback
}

func (p *Parser) statementPeriod(tmpl *templates.BankTemplate, full string) *dateutils.Period {
	if tmpl.YearInference.Mode != templates.YearFromPeriod {
		return nil
	}
	for _, re := range []*regexp.Regexp{tmpl.YearInference.Regexp(), p.registry.Generic().YearInference.Regexp()} {
		if re == nil {
			continue
		}
		m := re.FindStringSubmatch(full)
		if m == nil {
			continue
		}
		var startText, endText string
		for i, name := range re.SubexpNames() {
			switch name {
			case "start":
				startText = m[i]
			case "end":
				endText = m[i]
			}
		}
		start, _, err1 := dateutils.ParseDate(startText, tmpl.DateFormats...)
		end, _, err2 := dateutils.ParseDate(endText, tmpl.DateFormats...)
		if err1 != nil || err2 != nil {
			continue
		}
		period := dateutils.Period{Start: start, End: end}
		if period.Valid() {
			return &period
		}
	}
	return nil
}

func expectedTotals(tmpl *templates.BankTemplate, full string) models.StatementTotals {
	var totals models.StatementTotals
	if re := tmpl.SummaryPatterns.Deposits(); re != nil {
		totals.Deposits = sumMatches(re, full)
	}
	if re := tmpl.SummaryPatterns.Withdrawals(); re != nil {
		totals.Withdrawals = sumMatches(re, full)
	}
	return totals
}

// sumMatches adds the last capture group of every match.
func sumMatches(re *regexp.Regexp, text string) *decimal.Decimal {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	total := decimal.Zero
	found := false
	for _, m := range matches {
		amt, err := ParseAmount(m[len(m)-1])
		if err != nil {
			continue
		}
		total = total.Add(amt.Value.Abs())
		found = true
	}
	if !found {
		return nil
	}
	return &total
}

var (
	datelike   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}\b`)
	amountlike = regexp.MustCompile(`\d+\.\d{2}\b`)
	ocrDate    = regexp.MustCompile(`^(\d{1,2})/(\d{2})(/\d{2,4})?$`)
)

func looksLikeTransaction(line string) bool {
	return datelike.MatchString(line) && amountlike.MatchString(line)
}

// fixOCRDay repairs a day in the nineties, where OCR read a leading 0 as 9.
func fixOCRDay(dateText string) string {
	m := ocrDate.FindStringSubmatch(dateText)
	if m == nil {
		return dateText
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day <= 90 {
		return dateText
	}
	return fmt.Sprintf("%s/%02d%s", m[1], day-90, m[3])
}

func joinLines(lines []models.RawLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
