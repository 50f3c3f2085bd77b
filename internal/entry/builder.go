// Package entry builds balanced double-entry journal records from routed transactions
// and validates them. Validation problems are recorded on the entry, never returned as
// errors.
package entry

import (
	"time"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/router"

	"github.com/shopspring/decimal"
)

// Accounts are the ledger accounts used when a classification leaves a side open.
type Accounts struct {
	BankGL      string
	FundCode    string
	RevenueGL   string
	ExpenseGL   string
	JVIncomeGL  string
	JVExpenseGL string
}

// DefaultAccounts returns the stock chart defaults.
func DefaultAccounts() Accounts {
	return Accounts{
		BankGL:      models.DefaultBankGL,
		FundCode:    models.DefaultFundCode,
		RevenueGL:   models.DefaultRevenueGL,
		ExpenseGL:   models.DefaultExpenseGL,
		JVIncomeGL:  models.DefaultJVIncomeGL,
		JVExpenseGL: models.DefaultJVExpenseGL,
	}
}

func (a Accounts) withDefaults() Accounts {
	d := DefaultAccounts()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&a.BankGL, d.BankGL)
	fill(&a.FundCode, d.FundCode)
	fill(&a.RevenueGL, d.RevenueGL)
	fill(&a.ExpenseGL, d.ExpenseGL)
	fill(&a.JVIncomeGL, d.JVIncomeGL)
	fill(&a.JVExpenseGL, d.JVExpenseGL)
	return a
}

// DefaultTolerance is the rounding allowance for balance checks.
var DefaultTolerance = models.Cent

// Input is one classified, routed and duplicate-checked transaction.
type Input struct {
	Transaction models.Transaction
	Result      models.ClassificationResult
	Decision    router.Decision
}

// Voucher is a pre-grouped multi-line posting.
type Voucher struct {
	Date           time.Time
	Description    string
	TransactionIDs []string
	Lines          []models.JournalLine
}

// Builder turns inputs into journal entries.
type Builder struct {
	accounts  Accounts
	tolerance decimal.Decimal
	chart     map[string]string
	logger    logging.Logger
}

// NewBuilder creates a builder. An empty chart disables the account lookup; a
// non-positive tolerance uses one cent.
func NewBuilder(accounts Accounts, tolerance decimal.Decimal, chart []models.Account, logger logging.Logger) *Builder {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	b := &Builder{
		accounts:  accounts.withDefaults(),
		tolerance: tolerance,
		chart:     make(map[string]string, len(chart)),
		logger:    logging.OrDefault(logger),
	}
	for _, a := range chart {
		b.chart[a.Code] = a.Name
	}
	return b
}

// Accounts returns the effective default accounts.
func (b *Builder) Accounts() Accounts { return b.accounts }

// Build produces the entry for in. Numbers are drawn from the batch numberer.
// Zero-amount, duplicate and unclassified transactions still produce entries; their
// review reasons carry over.
func (b *Builder) Build(in Input, numbers *router.DocNumberer) models.JournalEntry {
	tx := in.Transaction
	e := models.JournalEntry{
		Module:         in.Decision.Module,
		Date:           tx.Date,
		Description:    tx.Description,
		TransactionIDs: []string{tx.ID},
		Confidence:     in.Result.Confidence,
		MatchedBy:      in.Result.MatchedBy,
	}
	if e.Module == "" {
		e.Module = models.ModuleUnknown
	}
	if numbers != nil {
		e.DocNumber, e.SessionID = numbers.Next(e.Module, tx.Date)
	}
	e.Lines = b.lines(e.Module, tx, in.Result)

	e.Flag(tx.ReviewReasons...)
	e.Flag(in.Decision.Reasons...)
	if in.Result.MatchedBy == "ai" {
		e.Flag(models.ReasonSuggestedByAI)
	}
	b.validate(&e)

	if e.NeedsReview {
		b.logger.Debug("Entry needs review",
			logging.F(logging.FieldTransactionID, tx.ID),
			logging.F(logging.FieldModule, string(e.Module)),
			logging.F(logging.FieldReason, e.ReviewReason()))
	}
	return e
}

// lines lays out the two legs. CR debits the bank; CD credits it; JV follows the sign.
// A refund is a negative disbursement: both CD legs carry the negative amount.
func (b *Builder) lines(module models.Module, tx models.Transaction, res models.ClassificationResult) []models.JournalLine {
	amount := models.RoundCents(tx.Amount.Abs())
	gl := res.GLCode
	fund := res.FundCode
	if fund == "" {
		fund = b.accounts.FundCode
	}
	bank := func(v decimal.Decimal, debit bool) models.JournalLine {
		l := models.JournalLine{GLCode: b.accounts.BankGL, FundCode: b.accounts.FundCode, Description: tx.Description}
		if debit {
			l.Debit = v
		} else {
			l.Credit = v
		}
		return l
	}
	other := func(code string, v decimal.Decimal, debit bool) models.JournalLine {
		l := models.JournalLine{GLCode: code, FundCode: fund, Description: tx.Description}
		if debit {
			l.Debit = v
		} else {
			l.Credit = v
		}
		return l
	}

	switch module {
	case models.ModuleCR:
		return []models.JournalLine{bank(amount, true), other(orDefault(gl, b.accounts.RevenueGL), amount, false)}
	case models.ModuleCD:
		if res.IsRefund {
			amount = amount.Neg()
		}
		return []models.JournalLine{other(orDefault(gl, b.accounts.ExpenseGL), amount, true), bank(amount, false)}
	case models.ModuleJV:
		if tx.IsInflow() {
			return []models.JournalLine{bank(amount, true), other(orDefault(gl, b.accounts.JVIncomeGL), amount, false)}
		}
		return []models.JournalLine{other(orDefault(gl, b.accounts.JVExpenseGL), amount, true), bank(amount, false)}
	}

	// Unknown: the bank side is certain, the other side is left for the reviewer.
	if tx.IsInflow() {
		return []models.JournalLine{bank(amount, true), other("", amount, false)}
	}
	return []models.JournalLine{other("", amount, true), bank(amount, false)}
}

// BuildVoucher produces a JV entry from pre-grouped lines. Lines without a fund use the
// default fund.
func (b *Builder) BuildVoucher(v Voucher, numbers *router.DocNumberer) models.JournalEntry {
	e := models.JournalEntry{
		Module:         models.ModuleJV,
		Date:           v.Date,
		Description:    v.Description,
		TransactionIDs: append([]string(nil), v.TransactionIDs...),
		Confidence:     1,
		MatchedBy:      "voucher",
	}
	if numbers != nil {
		e.DocNumber, e.SessionID = numbers.Next(e.Module, e.Date)
	}
	for _, l := range v.Lines {
		if l.FundCode == "" {
			l.FundCode = b.accounts.FundCode
		}
		l.Debit = models.RoundCents(l.Debit)
		l.Credit = models.RoundCents(l.Credit)
		e.Lines = append(e.Lines, l)
	}
	e.Flag(models.ReasonMultiLineVoucher)
	b.validate(&e)
	return e
}

// Validate recomputes balance and account checks on e.
func (b *Builder) Validate(e *models.JournalEntry) {
	b.validate(e)
}

func (b *Builder) validate(e *models.JournalEntry) {
	e.Variance = e.TotalDebit().Sub(e.TotalCredit())
	e.Balanced = e.Variance.Abs().LessThanOrEqual(b.tolerance)
	if !e.Balanced {
		e.Flag(models.ReasonUnbalanced)
		b.logger.Warn("Unbalanced journal entry",
			logging.F(logging.FieldModule, string(e.Module)),
			logging.F("variance", e.Variance.StringFixed(2)))
	}

	for _, l := range e.Lines {
		switch {
		case l.GLCode == "":
			e.Flag(models.ReasonMissingGL)
		case len(b.chart) > 0 && !b.known(l.GLCode):
			e.Flag(models.ReasonUnknownAccount)
		}
	}
}

func (b *Builder) known(code string) bool {
	_, ok := b.chart[code]
	return ok
}

// AccountName returns the chart name for code.
func (b *Builder) AccountName(code string) (string, bool) {
	name, ok := b.chart[code]
	return name, ok
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
