package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction decided by the statement parser.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

// ParseTransactionType accepts "deposit" or "withdrawal" in any case.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeDeposit:
		return TypeDeposit, true
	case TypeWithdrawal:
		return TypeWithdrawal, true
	}
	return "", false
}

// Transaction is a normalized statement transaction.
// Deposits carry positive amounts, withdrawals negative ones.
type Transaction struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Type           TransactionType `json:"type"`
	SourceBank     string          `json:"source_bank"`
	CheckNumber    string          `json:"check_number,omitempty"`
	Fingerprint    string          `json:"fingerprint"`
	Line           int             `json:"line"`
	NeedsReview    bool            `json:"needs_review"`
	ReviewReasons  []ReviewReason  `json:"review_reasons,omitempty"`
}

// IsInflow reports whether money entered the account.
func (t Transaction) IsInflow() bool {
	if t.Amount.IsZero() {
		return t.Type == TypeDeposit
	}
	return t.Amount.IsPositive()
}

// IsOutflow reports whether money left the account.
func (t Transaction) IsOutflow() bool {
	return !t.IsInflow()
}

// Flag marks the transaction for review, ignoring a reason already recorded.
func (t *Transaction) Flag(reason ReviewReason) {
	t.NeedsReview = true
	for _, r := range t.ReviewReasons {
		if r == reason {
			return
		}
	}
	t.ReviewReasons = append(t.ReviewReasons, reason)
}

// ReviewReason joins every recorded reason.
func (t Transaction) ReviewReason() string {
	return JoinReasons(t.ReviewReasons)
}

// InvertForRefund flips the sign of a positive refund so it posts as a disbursement.
// OriginalAmount keeps the statement value.
func (t *Transaction) InvertForRefund() {
	if !t.Amount.IsPositive() {
		return
	}
	t.Amount = t.Amount.Neg()
	t.Type = TypeWithdrawal
}
