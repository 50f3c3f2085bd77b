package classifier

import (
	"context"
	"testing"

	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordConfidence(t *testing.T) {
	tests := []struct {
		name  string
		entry models.KeywordEntry
		want  float64
	}{
		{"single short word", models.KeywordEntry{Keyword: "gas"}, 0.63},
		{"single word", models.KeywordEntry{Keyword: "payroll"}, 0.67},
		{"two words", models.KeywordEntry{Keyword: "rent payment"}, 0.80},
		{"long phrase is capped", models.KeywordEntry{Keyword: "transfer between savings accounts"}, 0.90},
		{"explicit confidence wins", models.KeywordEntry{Keyword: "deposit", Confidence: 0.45}, 0.45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, KeywordConfidence(tt.entry), 1e-9)
		})
	}
}

func TestKeywordMatcher_PrefersSpecificPhrase(t *testing.T) {
	m := NewKeywordMatcher([]models.KeywordEntry{
		{Keyword: "insurance", GLCode: "6600"},
		{Keyword: "health insurance", GLCode: "6300"},
		{Keyword: "", GLCode: "9999"},
	})

	res, ok, err := m.Match(context.Background(), newTx("BCBS HEALTH INSURANCE PREMIUM", "-410.00"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "6300", res.GLCode)
	assert.Equal(t, "health insurance", res.Keyword)
	assert.Equal(t, models.ModuleCD, res.Module, "module follows the direction when the entry sets none")
}

func TestKeywordMatcher_WordBoundaries(t *testing.T) {
	m := NewKeywordMatcher([]models.KeywordEntry{{Keyword: "gas", GLCode: "6500"}})

	_, ok, _ := m.Match(context.Background(), newTx("VEGAS HOTEL", "-120.00"))
	assert.False(t, ok)

	_, ok, _ = m.Match(context.Background(), newTx("SOCAL GAS CO", "-120.00"))
	assert.True(t, ok)
}

func TestRuleMatcher_LongestPhraseFirst(t *testing.T) {
	m := NewRuleMatcher([]models.FixedRule{
		{Phrase: "interest", GLCode: "4600", Module: models.ModuleCR},
		{Phrase: "interest charge", GLCode: "7600", Module: models.ModuleJV},
		{Phrase: "ignored"},
	})

	res, ok, err := m.Match(context.Background(), newTx("LOAN INTEREST CHARGE", "-5.00"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7600", res.GLCode)
	assert.InDelta(t, defaultRuleConfidence, res.Confidence, 1e-9)
}

func TestVendorMatcher(t *testing.T) {
	m := NewVendorMatcher([]models.Vendor{
		{Name: "Staples", GLCode: "7320"},
		{Name: "UPS", Aliases: []string{"united parcel"}, GLCode: "7330"},
	}, NewScorer(), 0.80)
	ctx := context.Background()

	res, ok, _ := m.Match(ctx, newTx("POS PURCHASE STAPLES #0042", "-18.20"))
	require.True(t, ok)
	assert.Equal(t, "Staples", res.Payee)
	assert.InDelta(t, vendorExactConfidence, res.Confidence, 1e-9)

	res, ok, _ = m.Match(ctx, newTx("POS PURCHASE STAPELS 0042", "-18.20"))
	require.True(t, ok, "typos still match")
	assert.Equal(t, "7320", res.GLCode)
	assert.InDelta(t, vendorFuzzyWeight, res.Confidence, 1e-9)

	_, ok, _ = m.Match(ctx, newTx("CUPS AND MUGS LTD", "-18.20"))
	assert.False(t, ok, "short names never match fuzzily")
}

func TestCustomerMatcher_GrantsFirst(t *testing.T) {
	m := NewCustomerMatcher([]models.Customer{
		{Name: "Metro Properties", Aliases: []string{"metro"}, Kind: models.PayerTenant, GLCode: "4200"},
		{Name: "Metro Housing Grant", Aliases: []string{"metro"}, Kind: models.PayerGrant, GLCode: "4100", FundCode: "2720"},
	})

	res, ok, err := m.Match(context.Background(), newTx("ACH CREDIT METRO", "900.00"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "4100", res.GLCode)
	assert.Equal(t, "2720", res.FundCode)
	assert.InDelta(t, customerAliasConfidence, res.Confidence, 1e-9)
	assert.Equal(t, string(models.PayerGrant), res.Category)
}

func TestHistoryMatcher(t *testing.T) {
	m := NewHistoryMatcher([]models.Correction{
		{Description: "CITY WATER DEPT 4481122", GLCode: "6500", Module: models.ModuleCD},
		{Description: "CITY WATER DEPT 9917733", GLCode: "6510", Module: models.ModuleCD},
		{Description: "ACME LANDSCAPING", GLCode: "6900"},
	}, NewScorer(), 0.70)
	ctx := context.Background()

	assert.Equal(t, 2, m.Len(), "corrections sharing a key collapse to the latest")

	res, ok, _ := m.Match(ctx, newTx("CITY WATER DEPT 5550001", "-80.00"))
	require.True(t, ok)
	assert.Equal(t, "6510", res.GLCode, "the latest correction wins")
	assert.InDelta(t, historyExactConfidence, res.Confidence, 1e-9)

	res, ok, _ = m.Match(ctx, newTx("ACME LANDSCAPING SPRING CLEANUP", "-300.00"))
	require.True(t, ok)
	assert.Equal(t, "6900", res.GLCode)
	assert.InDelta(t, 0.9*historyFuzzyWeight, res.Confidence, 1e-9)
	assert.Equal(t, models.ModuleCD, res.Module)

	_, ok, _ = m.Match(ctx, newTx("UNRELATED", "-1.00"))
	assert.False(t, ok)
}

func TestDescriptionSimilarity(t *testing.T) {
	s := NewScorer()
	assert.InDelta(t, 1.0, descriptionSimilarity(s, "Acme Co", "ACME CO"), 1e-9)
	assert.InDelta(t, 0.9, descriptionSimilarity(s, "acme co monthly", "acme co"), 1e-9)
	assert.Zero(t, descriptionSimilarity(s, "", "acme"))
	assert.Less(t, descriptionSimilarity(s, "acme co", "zenith bank"), 0.5)
}

func TestBetter(t *testing.T) {
	revenue := models.ClassificationResult{GLCode: "4100", Confidence: 0.7, Precedence: 2}
	expense := models.ClassificationResult{GLCode: "7300", Confidence: 0.7, Precedence: 2}

	assert.True(t, better(revenue, expense, true), "GL range fit breaks the final tie")
	assert.True(t, better(expense, revenue, false))

	earlier := expense
	earlier.Precedence = 1
	assert.True(t, better(earlier, revenue, true), "precedence beats range fit")

	higher := revenue
	higher.Confidence = 0.71
	assert.True(t, better(higher, earlier, false))

	assert.Equal(t, models.ModuleUnknown, best(nil, true).Module)
}

func TestApplies(t *testing.T) {
	deposit := newTx("X", "10.00")
	payment := newTx("X", "-10.00")

	assert.False(t, applies(MatcherVendor, deposit, false, 0))
	assert.True(t, applies(MatcherVendor, deposit, true, 0))
	assert.True(t, applies(MatcherVendor, payment, false, 0))
	assert.True(t, applies(MatcherCustomer, deposit, false, 0))
	assert.False(t, applies(MatcherCustomer, deposit, true, 0))
	assert.False(t, applies(MatcherCustomer, payment, false, 0))
	assert.True(t, applies(MatcherAI, payment, false, 0))
	assert.False(t, applies(MatcherAI, payment, false, 1))
	assert.True(t, applies(MatcherKeyword, payment, true, 3))
}

func TestBankKeywords(t *testing.T) {
	entries := BankKeywords(map[string]templates.GLMappings{
		"truist": {Withdrawals: []templates.GLMapping{{Keyword: "truist service charge", GLCode: "6100", Confidence: 0.95}}},
		"chase":  {Deposits: []templates.GLMapping{{Keyword: "zelle from", GLCode: "4400"}}},
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "chase", entries[0].Bank)
	assert.Equal(t, models.ModuleCR, entries[0].Module)
	assert.Equal(t, models.DirectionInflow, entries[0].Direction)
	assert.Equal(t, "truist", entries[1].Bank)
	assert.Equal(t, models.DirectionOutflow, entries[1].Direction)
}

func TestParseSuggestion(t *testing.T) {
	s := parseSuggestion("**GL:** 6500 Utilities\nFund: 1000\nModule: cd\nConfidence: 0.72\nReason: monthly utility bill\nnoise")
	assert.Equal(t, "6500", s.GLCode)
	assert.Equal(t, "1000", s.FundCode)
	assert.Equal(t, models.ModuleCD, s.Module)
	assert.InDelta(t, 0.72, s.Confidence, 1e-9)
	assert.Equal(t, "monthly utility bill", s.Reason)

	assert.Empty(t, parseSuggestion("I cannot decide").GLCode)
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(newTx("CITY WATER", "-80.00"), []models.Account{{Code: "6500", Name: "Utilities"}})
	assert.Contains(t, p, "Description: CITY WATER")
	assert.Contains(t, p, "Amount: -80.00")
	assert.Contains(t, p, "6500 Utilities")
}
