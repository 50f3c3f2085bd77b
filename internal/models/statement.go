package models

import "github.com/shopspring/decimal"

// RawLine is one line of extracted statement text with its position in the source.
type RawLine struct {
	Text   string `json:"text"`
	Page   int    `json:"page"`
	Number int    `json:"number"`
}

// Candidate is a transaction extracted from a single statement line before normalization.
// DateText already carries the inferred year when the statement omitted it.
type Candidate struct {
	Line        RawLine
	Bank        string
	Pattern     string
	DateText    string
	DateFormats []string
	Description string
	AmountText  string
	Amount      decimal.Decimal
	Type        TransactionType
	CheckNumber string
}

// StatementTotals holds totals printed on the statement summary, when found.
type StatementTotals struct {
	Deposits    *decimal.Decimal `json:"deposits,omitempty"`
	Withdrawals *decimal.Decimal `json:"withdrawals,omitempty"`
}

// FileMeta describes the uploaded file the lines came from.
type FileMeta struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
}
