package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalLine is one leg of a journal entry. Exactly one of Debit and Credit is non-zero
// for a well-formed line.
type JournalLine struct {
	GLCode      string          `json:"gl_code"`
	FundCode    string          `json:"fund_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntry is a double-entry record built from one or more transactions.
type JournalEntry struct {
	Module         Module          `json:"module"`
	SessionID      string          `json:"session_id"`
	DocNumber      string          `json:"doc_number"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	TransactionIDs []string        `json:"transaction_ids"`
	Lines          []JournalLine   `json:"lines"`
	Balanced       bool            `json:"balanced"`
	Variance       decimal.Decimal `json:"variance"`
	Confidence     float64         `json:"confidence"`
	MatchedBy      string          `json:"matched_by,omitempty"`
	NeedsReview    bool            `json:"needs_review"`
	ReviewReasons  []ReviewReason  `json:"review_reasons,omitempty"`
}

// ReviewReason joins every recorded reason.
func (e JournalEntry) ReviewReason() string {
	return JoinReasons(e.ReviewReasons)
}

// Flag marks the entry for review.
func (e *JournalEntry) Flag(reasons ...ReviewReason) {
	if len(reasons) == 0 {
		return
	}
	e.NeedsReview = true
	e.ReviewReasons = MergeReasons(e.ReviewReasons, reasons...)
}

// TotalDebit sums the debit column.
func (e JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit column.
func (e JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}
