package classifier

import (
	"context"
	"strings"

	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/textutils"
)

const (
	vendorExactConfidence = 0.95
	vendorFuzzyWeight     = 0.90
)

// VendorMatcher finds payees from the vendor master list. A name or alias found in
// the description scores 0.95; otherwise the best fuzzy match above the similarity
// threshold scores in proportion to its similarity.
type VendorMatcher struct {
	vendors   []models.Vendor
	scorer    Scorer
	threshold float64
}

// NewVendorMatcher builds a vendor matcher.
func NewVendorMatcher(vendors []models.Vendor, scorer Scorer, threshold float64) *VendorMatcher {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &VendorMatcher{vendors: vendors, scorer: scorer, threshold: threshold}
}

// Name implements Matcher.
func (m *VendorMatcher) Name() string { return MatcherVendor }

// Match implements Matcher.
func (m *VendorMatcher) Match(_ context.Context, tx models.Transaction) (models.ClassificationResult, bool, error) {
	desc := textutils.NormalizeForMatch(tx.Description)
	if desc == "" {
		return models.ClassificationResult{}, false, nil
	}

	for _, v := range m.vendors {
		for _, name := range vendorNames(v) {
			if textutils.ContainsPhrase(desc, textutils.NormalizeForMatch(name)) {
				return m.result(v, vendorExactConfidence), true, nil
			}
		}
	}

	words := strings.Fields(desc)
	var (
		found     bool
		bestScore float64
		bestMatch models.Vendor
	)
	for _, v := range m.vendors {
		for _, name := range vendorNames(v) {
			score := phraseScore(m.scorer, words, name)
			if score >= m.threshold && score > bestScore {
				found, bestScore, bestMatch = true, score, v
			}
		}
	}
	if !found {
		return models.ClassificationResult{}, false, nil
	}
	return m.result(bestMatch, bestScore*vendorFuzzyWeight), true, nil
}

func (m *VendorMatcher) result(v models.Vendor, confidence float64) models.ClassificationResult {
	return models.ClassificationResult{
		GLCode:     v.GLCode,
		FundCode:   v.FundCode,
		Module:     models.ModuleCD,
		Confidence: confidence,
		Category:   v.Category,
		Payee:      v.Name,
	}
}

func vendorNames(v models.Vendor) []string {
	names := make([]string, 0, len(v.Aliases)+1)
	if v.Name != "" {
		names = append(names, v.Name)
	}
	for _, a := range v.Aliases {
		if strings.TrimSpace(a) != "" {
			names = append(names, a)
		}
	}
	return names
}
