package classifier

import (
	"context"

	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/textutils"
)

const (
	customerNameConfidence  = 0.95
	customerAliasConfidence = 0.90
)

// CustomerMatcher recognizes grant programs, customers and tenants on deposits.
// Grant programs are checked before other payers.
type CustomerMatcher struct {
	payers []models.Customer
}

// NewCustomerMatcher orders grants first, preserving list order otherwise.
func NewCustomerMatcher(customers []models.Customer) *CustomerMatcher {
	payers := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if c.Kind == models.PayerGrant {
			payers = append(payers, c)
		}
	}
	for _, c := range customers {
		if c.Kind != models.PayerGrant {
			payers = append(payers, c)
		}
	}
	return &CustomerMatcher{payers: payers}
}

// Name implements Matcher.
func (m *CustomerMatcher) Name() string { return MatcherCustomer }

// Match implements Matcher.
func (m *CustomerMatcher) Match(_ context.Context, tx models.Transaction) (models.ClassificationResult, bool, error) {
	desc := textutils.NormalizeForMatch(tx.Description)
	for _, c := range m.payers {
		if c.GLCode == "" {
			continue
		}
		if textutils.ContainsPhrase(desc, textutils.NormalizeForMatch(c.Name)) {
			return customerResult(c, customerNameConfidence), true, nil
		}
		for _, alias := range c.Aliases {
			if alias != "" && textutils.ContainsPhrase(desc, textutils.NormalizeForMatch(alias)) {
				return customerResult(c, customerAliasConfidence), true, nil
			}
		}
	}
	return models.ClassificationResult{}, false, nil
}

func customerResult(c models.Customer, confidence float64) models.ClassificationResult {
	category := c.Category
	if category == "" {
		category = string(c.Kind)
	}
	return models.ClassificationResult{
		GLCode:     c.GLCode,
		FundCode:   c.FundCode,
		Module:     models.ModuleCR,
		Confidence: confidence,
		Category:   category,
		Payee:      c.Name,
	}
}
