// Package templates holds the bank statement templates the statement parser applies.
// Templates are immutable once a Registry is built; adding a bank is a configuration
// change, never a code change.
package templates

import (
	"fmt"
	"regexp"
	"strings"

	"fjacquet/gl-posting/internal/parsererror"
)

// TypeRule decides how a matched line gets its transaction type.
type TypeRule string

const (
	TypeDeposit    TypeRule = "deposit"
	TypeWithdrawal TypeRule = "withdrawal"
	// TypeAuto infers the type from the template keyword lists and the amount's literal sign.
	TypeAuto TypeRule = "auto"
	// TypeSection takes the type from the statement section the line appears in,
	// falling back to TypeAuto outside any section.
	TypeSection TypeRule = "section"
)

// Logical fields a line pattern can capture.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCheck       = "check"
)

// Year inference modes.
const (
	YearFromPeriod = "period"
	YearFromText   = "text"
	YearNone       = "none"
)

// LinePattern matches one kind of transaction line.
type LinePattern struct {
	Name        string `yaml:"name"`
	LinePattern string `yaml:"line_pattern"`
	// FieldGroups maps a logical field to the named capture group holding it.
	// Unmapped fields use a group with the field's own name.
	FieldGroups map[string]string `yaml:"field_group_map,omitempty"`
	TypeRule    TypeRule          `yaml:"type_rule"`

	re *regexp.Regexp
}

// Regexp returns the compiled pattern.
func (p *LinePattern) Regexp() *regexp.Regexp {
	return p.re
}

// Group returns the capture group name for a logical field.
func (p *LinePattern) Group(field string) string {
	if g, ok := p.FieldGroups[field]; ok && g != "" {
		return g
	}
	return field
}

// Section markers switch the running transaction type while scanning a statement.
type Section struct {
	StartMarkers []string `yaml:"start_markers"`
	EndMarkers   []string `yaml:"end_markers"`
}

// Sections groups deposit and withdrawal section markers.
type Sections struct {
	Deposits    Section `yaml:"deposits"`
	Withdrawals Section `yaml:"withdrawals"`
}

// YearInference configures how dates printed without a year are resolved.
type YearInference struct {
	Mode          string `yaml:"mode"`
	PeriodPattern string `yaml:"period_pattern,omitempty"`

	re *regexp.Regexp
}

// Regexp returns the compiled statement-period pattern, nil when none is configured.
func (y *YearInference) Regexp() *regexp.Regexp {
	return y.re
}

// SummaryPatterns extract the totals a bank prints on the statement summary.
// The last capture group of each match holds the amount.
type SummaryPatterns struct {
	TotalDeposits    string `yaml:"total_deposits,omitempty"`
	TotalWithdrawals string `yaml:"total_withdrawals,omitempty"`

	deposits    *regexp.Regexp
	withdrawals *regexp.Regexp
}

// Deposits returns the compiled deposit-total pattern or nil.
func (s *SummaryPatterns) Deposits() *regexp.Regexp { return s.deposits }

// Withdrawals returns the compiled withdrawal-total pattern or nil.
func (s *SummaryPatterns) Withdrawals() *regexp.Regexp { return s.withdrawals }

// GLMapping is a bank-specific keyword hint fed into the keyword table.
type GLMapping struct {
	Keyword    string  `yaml:"keyword"`
	GLCode     string  `yaml:"gl_code"`
	FundCode   string  `yaml:"fund_code,omitempty"`
	Confidence float64 `yaml:"confidence,omitempty"`
}

// GLMappings are split by direction.
type GLMappings struct {
	Deposits    []GLMapping `yaml:"deposits,omitempty"`
	Withdrawals []GLMapping `yaml:"withdrawals,omitempty"`
}

// BankTemplate is the parsing configuration for one bank.
type BankTemplate struct {
	Name               string          `yaml:"name"`
	Identifiers        []string        `yaml:"identifiers"`
	Patterns           []LinePattern   `yaml:"patterns"`
	DepositKeywords    []string        `yaml:"deposit_keywords,omitempty"`
	WithdrawalKeywords []string        `yaml:"withdrawal_keywords,omitempty"`
	RequiresOCR        bool            `yaml:"requires_ocr"`
	SkipSections       []string        `yaml:"skip_sections,omitempty"`
	Sections           Sections        `yaml:"sections,omitempty"`
	DateFormats        []string        `yaml:"date_formats,omitempty"`
	YearInference      YearInference   `yaml:"year_inference,omitempty"`
	SummaryPatterns    SummaryPatterns `yaml:"summary_patterns,omitempty"`
	DefaultGLMappings  GLMappings      `yaml:"default_gl_mappings,omitempty"`
	// SignedAmounts marks statements printing withdrawals with a minus sign, so an
	// unsigned amount is a deposit.
	SignedAmounts bool `yaml:"signed_amounts,omitempty"`
	// OCRDayFix repairs days misread by OCR, e.g. 04/97 becomes 04/07.
	OCRDayFix bool `yaml:"ocr_day_fix,omitempty"`

	compiled bool
}

// Keyword lists applied when a template leaves them empty.
var (
	DefaultDepositKeywords    = []string{"DEPOSIT", "INTEREST", "CREDIT"}
	DefaultWithdrawalKeywords = []string{"CHECK", "DEBIT", "WITHDRAWAL", "FEE"}
)

// Compile validates the template and compiles its regular expressions.
func (t *BankTemplate) Compile() error {
	if t.compiled {
		return nil
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return &parsererror.ValidationError{Source: "bank template", Reason: "name is required"}
	}
	if len(t.Patterns) == 0 {
		return &parsererror.ValidationError{Source: t.Name, Reason: "at least one line pattern is required"}
	}
	if len(t.DepositKeywords) == 0 {
		t.DepositKeywords = DefaultDepositKeywords
	}
	if len(t.WithdrawalKeywords) == 0 {
		t.WithdrawalKeywords = DefaultWithdrawalKeywords
	}
	if t.YearInference.Mode == "" {
		t.YearInference.Mode = YearFromPeriod
	}

	for i := range t.Patterns {
		if err := t.Patterns[i].compile(t.Name); err != nil {
			return err
		}
	}

	var err error
	switch t.YearInference.Mode {
	case YearFromPeriod, YearFromText, YearNone:
	default:
		return &parsererror.ValidationError{Source: t.Name, Reason: fmt.Sprintf("unknown year inference mode %q", t.YearInference.Mode)}
	}
	if t.YearInference.re, err = compileOptional(t.YearInference.PeriodPattern); err != nil {
		return &parsererror.ValidationError{Source: t.Name, Reason: fmt.Sprintf("period pattern: %v", err)}
	}
	if t.SummaryPatterns.deposits, err = compileOptional(t.SummaryPatterns.TotalDeposits); err != nil {
		return &parsererror.ValidationError{Source: t.Name, Reason: fmt.Sprintf("total deposits pattern: %v", err)}
	}
	if t.SummaryPatterns.withdrawals, err = compileOptional(t.SummaryPatterns.TotalWithdrawals); err != nil {
		return &parsererror.ValidationError{Source: t.Name, Reason: fmt.Sprintf("total withdrawals pattern: %v", err)}
	}
	t.compiled = true
	return nil
}

func (p *LinePattern) compile(bank string) error {
	if p.TypeRule == "" {
		p.TypeRule = TypeAuto
	}
	switch p.TypeRule {
	case TypeDeposit, TypeWithdrawal, TypeAuto, TypeSection:
	default:
		return &parsererror.ValidationError{Source: bank, Reason: fmt.Sprintf("pattern %q: unknown type rule %q", p.Name, p.TypeRule)}
	}
	re, err := regexp.Compile(p.LinePattern)
	if err != nil {
		return &parsererror.ValidationError{Source: bank, Reason: fmt.Sprintf("pattern %q: %v", p.Name, err)}
	}
	names := map[string]bool{}
	for _, n := range re.SubexpNames() {
		names[n] = true
	}
	for _, field := range []string{FieldDate, FieldDescription, FieldAmount} {
		if !names[p.Group(field)] {
			return &parsererror.ValidationError{
				Source: bank,
				Reason: fmt.Sprintf("pattern %q: missing capture group %q for %s", p.Name, p.Group(field), field),
			}
		}
	}
	p.re = re
	return nil
}

func compileOptional(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	if !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

// Matches reports whether any identifier occurs in text, ignoring case.
func (t *BankTemplate) Matches(lowerText string) (string, bool) {
	for _, id := range t.Identifiers {
		id = strings.TrimSpace(id)
		if id != "" && strings.Contains(lowerText, strings.ToLower(id)) {
			return id, true
		}
	}
	return "", false
}

// Skips reports whether a line belongs to a skipped section such as balance summaries.
func (t *BankTemplate) Skips(line string) bool {
	lower := strings.ToLower(line)
	for _, s := range t.SkipSections {
		if s != "" && strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
