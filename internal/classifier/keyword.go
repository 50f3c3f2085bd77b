package classifier

import (
	"context"
	"math"
	"sort"
	"strings"

	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/templates"
	"fjacquet/gl-posting/internal/textutils"
)

// Specificity scoring for keyword entries without an explicit confidence.
const (
	keywordBase       = 0.60
	keywordPerWord    = 0.08
	keywordPerChar    = 0.01
	keywordCharCap    = 15
	keywordConfidence = 0.90
)

// KeywordMatcher looks descriptions up in the keyword-to-GL table.
type KeywordMatcher struct {
	entries []models.KeywordEntry
}

// NewKeywordMatcher builds a matcher over the table entries. Entries with an empty
// keyword or GL code are ignored.
func NewKeywordMatcher(entries []models.KeywordEntry) *KeywordMatcher {
	kept := make([]models.KeywordEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Keyword) == "" || e.GLCode == "" {
			continue
		}
		kept = append(kept, e)
	}
	return &KeywordMatcher{entries: kept}
}

// Name implements Matcher.
func (m *KeywordMatcher) Name() string { return MatcherKeyword }

// Match returns the best keyword hit. Bank-scoped entries only apply to statements
// from that bank.
func (m *KeywordMatcher) Match(_ context.Context, tx models.Transaction) (models.ClassificationResult, bool, error) {
	inflow := tx.IsInflow()
	var (
		found  bool
		winner models.ClassificationResult
	)
	for _, e := range m.entries {
		if e.Bank != "" && !strings.EqualFold(e.Bank, tx.SourceBank) {
			continue
		}
		if !e.Direction.Allows(inflow) || !textutils.ContainsPhrase(tx.Description, e.Keyword) {
			continue
		}

		module := e.Module
		if module == "" {
			module = moduleForDirection(inflow)
		}
		candidate := models.ClassificationResult{
			GLCode:     e.GLCode,
			FundCode:   e.FundCode,
			Module:     module,
			Confidence: KeywordConfidence(e),
			Category:   e.Category,
			Keyword:    e.Keyword,
		}
		if !found || preferKeyword(candidate, winner, inflow) {
			found, winner = true, candidate
		}
	}
	return winner, found, nil
}

// KeywordConfidence scores an entry: its own confidence when set, otherwise a
// specificity score that grows with the number of words and the phrase length.
func KeywordConfidence(e models.KeywordEntry) float64 {
	if e.Confidence > 0 {
		return clamp(e.Confidence, 1)
	}
	keyword := strings.TrimSpace(e.Keyword)
	words := len(strings.Fields(keyword))
	chars := len(keyword)
	if chars > keywordCharCap {
		chars = keywordCharCap
	}
	score := keywordBase + keywordPerWord*float64(words-1) + keywordPerChar*float64(chars)
	return clamp(score, keywordConfidence)
}

// preferKeyword orders hits by confidence, then keyword length, then GL range fit.
func preferKeyword(a, b models.ClassificationResult, inflow bool) bool {
	if math.Abs(a.Confidence-b.Confidence) > confidenceEpsilon {
		return a.Confidence > b.Confidence
	}
	if len(a.Keyword) != len(b.Keyword) {
		return len(a.Keyword) > len(b.Keyword)
	}
	return models.MatchesSign(a.GLCode, inflow) && !models.MatchesSign(b.GLCode, inflow)
}

// BankKeywords turns template default GL mappings into bank-scoped keyword entries.
func BankKeywords(mappings map[string]templates.GLMappings) []models.KeywordEntry {
	banks := make([]string, 0, len(mappings))
	for bank := range mappings {
		banks = append(banks, bank)
	}
	sort.Strings(banks)

	var out []models.KeywordEntry
	for _, bank := range banks {
		m := mappings[bank]
		for _, d := range m.Deposits {
			out = append(out, bankEntry(bank, d, models.ModuleCR, models.DirectionInflow))
		}
		for _, w := range m.Withdrawals {
			out = append(out, bankEntry(bank, w, models.ModuleCD, models.DirectionOutflow))
		}
	}
	return out
}

func bankEntry(bank string, m templates.GLMapping, module models.Module, dir models.Direction) models.KeywordEntry {
	return models.KeywordEntry{
		Keyword:    m.Keyword,
		GLCode:     m.GLCode,
		FundCode:   m.FundCode,
		Module:     module,
		Confidence: m.Confidence,
		Direction:  dir,
		Bank:       bank,
	}
}
