package classifier

import (
	"context"
	"sort"

	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/textutils"
)

const defaultRuleConfidence = 0.95

// RuleMatcher applies deterministic phrase rules such as "SERVICE FEE" or "CHECK #".
// Longer phrases are tried first so "INTEREST CHARGE" wins over "INTEREST".
type RuleMatcher struct {
	rules []models.FixedRule
}

// NewRuleMatcher orders rules by descending phrase length, keeping file order on ties.
func NewRuleMatcher(rules []models.FixedRule) *RuleMatcher {
	sorted := make([]models.FixedRule, 0, len(rules))
	for _, r := range rules {
		if r.Phrase == "" || r.GLCode == "" {
			continue
		}
		sorted = append(sorted, r)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Phrase) > len(sorted[j].Phrase)
	})
	return &RuleMatcher{rules: sorted}
}

// Name implements Matcher.
func (m *RuleMatcher) Name() string { return MatcherRules }

// Match implements Matcher.
func (m *RuleMatcher) Match(_ context.Context, tx models.Transaction) (models.ClassificationResult, bool, error) {
	inflow := tx.IsInflow()
	for _, r := range m.rules {
		if !r.Direction.Allows(inflow) || !textutils.ContainsPhrase(tx.Description, r.Phrase) {
			continue
		}
		confidence := r.Confidence
		if confidence <= 0 {
			confidence = defaultRuleConfidence
		}
		module := r.Module
		if module == "" {
			module = moduleForDirection(inflow)
		}
		return models.ClassificationResult{
			GLCode:     r.GLCode,
			FundCode:   r.FundCode,
			Module:     module,
			Confidence: clamp(confidence, 1),
			Category:   r.Category,
			Keyword:    r.Phrase,
		}, true, nil
	}
	return models.ClassificationResult{}, false, nil
}
