package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseModule(t *testing.T) {
	tests := []struct {
		in   string
		want Module
		ok   bool
	}{
		{"cr", ModuleCR, true},
		{" CD ", ModuleCD, true},
		{"jv", ModuleJV, true},
		{"unknown", ModuleUnknown, true},
		{"", "", true},
		{"AP", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseModule(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       ConfidenceBand
	}{
		{0.98, BandHigh},
		{0.85, BandHigh},
		{0.84, BandMedium},
		{0.60, BandMedium},
		{0.59, BandLow},
		{0.01, BandLow},
		{0, BandNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.confidence), "confidence %.2f", tt.confidence)
	}

	assert.Equal(t, BandNone, ClassificationResult{Confidence: 0.9}.Band(), "no matcher means no band")
}

func TestRangeOf(t *testing.T) {
	assert.Equal(t, RangeAsset, RangeOf("1070"))
	assert.Equal(t, RangeRevenue, RangeOf("4600"))
	assert.Equal(t, RangeExpense, RangeOf("6100"))
	assert.Equal(t, RangeOther, RangeOf("9999"))
	assert.Equal(t, RangeOther, RangeOf("abc"))

	assert.True(t, MatchesSign("4000", true))
	assert.False(t, MatchesSign("4000", false))
	assert.True(t, MatchesSign("7000", false))
}

func TestTransaction_InvertForRefund(t *testing.T) {
	tx := Transaction{Amount: decimal.NewFromInt(50), OriginalAmount: decimal.NewFromInt(50), Type: TypeDeposit}
	tx.InvertForRefund()
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(-50)))
	assert.True(t, tx.OriginalAmount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, TypeWithdrawal, tx.Type)

	tx.InvertForRefund()
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(-50)), "already negative amounts are left alone")
}

func TestTransaction_IsInflowForZeroAmount(t *testing.T) {
	assert.True(t, Transaction{Type: TypeDeposit}.IsInflow())
	assert.True(t, Transaction{Type: TypeWithdrawal}.IsOutflow())
}

func TestJournalEntry_Flag(t *testing.T) {
	var e JournalEntry
	e.Flag()
	assert.False(t, e.NeedsReview)

	e.Flag(ReasonZeroAmount, ReasonDuplicateBatch)
	e.Flag(ReasonZeroAmount)
	assert.True(t, e.NeedsReview)
	assert.Equal(t, "zero amount; duplicate of earlier transaction in batch", e.ReviewReason())
}

func TestIsNearZero(t *testing.T) {
	assert.True(t, IsNearZero(decimal.RequireFromString("0.009")))
	assert.True(t, IsNearZero(decimal.RequireFromString("-0.004")))
	assert.False(t, IsNearZero(Cent))
	assert.True(t, SumDecimals(Cent, Cent).Equal(decimal.RequireFromString("0.02")))
}
