package classifier

import (
	"context"

	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/textutils"
)

const (
	historyExactConfidence = 0.95
	historyFuzzyWeight     = 0.90
)

// HistoryMatcher looks descriptions up among confirmed classifications.
// Corrections are keyed by textutils.HistoryKey; a later correction for the same key
// supersedes earlier ones.
type HistoryMatcher struct {
	byKey     map[string]models.Correction
	latest    []models.Correction
	scorer    Scorer
	threshold float64
}

// NewHistoryMatcher indexes corrections, which must be in confirmation order.
func NewHistoryMatcher(corrections []models.Correction, scorer Scorer, threshold float64) *HistoryMatcher {
	if scorer == nil {
		scorer = NewScorer()
	}
	byKey := make(map[string]models.Correction, len(corrections))
	var order []string
	for _, c := range corrections {
		key := c.Key
		if key == "" {
			key = textutils.HistoryKey(c.Description)
		}
		if key == "" || c.GLCode == "" {
			continue
		}
		c.Key = key
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = c
	}

	latest := make([]models.Correction, 0, len(order))
	for _, k := range order {
		latest = append(latest, byKey[k])
	}
	return &HistoryMatcher{byKey: byKey, latest: latest, scorer: scorer, threshold: threshold}
}

// Name implements Matcher.
func (m *HistoryMatcher) Name() string { return MatcherHistory }

// Match implements Matcher.
func (m *HistoryMatcher) Match(_ context.Context, tx models.Transaction) (models.ClassificationResult, bool, error) {
	key := textutils.HistoryKey(tx.Description)
	if key == "" {
		return models.ClassificationResult{}, false, nil
	}
	if c, ok := m.byKey[key]; ok {
		return historyResult(c, historyExactConfidence, tx.IsInflow()), true, nil
	}

	var (
		found     bool
		bestScore float64
		bestMatch models.Correction
	)
	for _, c := range m.latest {
		score := descriptionSimilarity(m.scorer, key, c.Key)
		if score >= m.threshold && score > bestScore {
			found, bestScore, bestMatch = true, score, c
		}
	}
	if !found {
		return models.ClassificationResult{}, false, nil
	}
	return historyResult(bestMatch, bestScore*historyFuzzyWeight, tx.IsInflow()), true, nil
}

// Len returns the number of distinct confirmed descriptions.
func (m *HistoryMatcher) Len() int { return len(m.latest) }

func historyResult(c models.Correction, confidence float64, inflow bool) models.ClassificationResult {
	module := c.Module
	if module == "" || module == models.ModuleUnknown {
		module = moduleForDirection(inflow)
	}
	return models.ClassificationResult{
		GLCode:     c.GLCode,
		FundCode:   c.FundCode,
		Module:     module,
		Confidence: confidence,
		Keyword:    c.Key,
	}
}
