package classifier

import (
	"math"

	"fjacquet/gl-posting/internal/models"
)

const confidenceEpsilon = 1e-9

// applies decides whether a matcher runs for a transaction.
// Vendors are consulted for outflows and for refunds of either sign. Customers and
// grants are consulted for inflows that are not refunds. The AI suggester only runs
// when no other matcher produced anything.
func applies(matcher string, tx models.Transaction, refund bool, candidates int) bool {
	switch matcher {
	case MatcherVendor:
		return tx.IsOutflow() || refund
	case MatcherCustomer:
		return tx.IsInflow() && !refund
	case MatcherAI:
		return candidates == 0
	}
	return true
}

// isFinal reports whether a result ends the cascade regardless of later matchers.
func isFinal(r models.ClassificationResult) bool {
	return r.MatchedBy == MatcherRules
}

// refundOverride turns a vendor match on a refund description into a disbursement.
// Only a positive amount is a refund to invert; a negative one is an ordinary payment.
func refundOverride(r models.ClassificationResult, tx models.Transaction) models.ClassificationResult {
	r.Module = models.ModuleCD
	r.IsRefund = tx.Amount.IsPositive()
	return r
}

// better reports whether a should be preferred over b: higher confidence first, then
// the earlier matcher, then the result whose GL range fits the transaction direction.
func better(a, b models.ClassificationResult, inflow bool) bool {
	if math.Abs(a.Confidence-b.Confidence) > confidenceEpsilon {
		return a.Confidence > b.Confidence
	}
	if a.Precedence != b.Precedence {
		return a.Precedence < b.Precedence
	}
	return models.MatchesSign(a.GLCode, inflow) && !models.MatchesSign(b.GLCode, inflow)
}

// best picks the preferred candidate. It returns Unknown for an empty list.
func best(candidates []models.ClassificationResult, inflow bool) models.ClassificationResult {
	if len(candidates) == 0 {
		return models.Unknown()
	}
	winner := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, winner, inflow) {
			winner = c
		}
	}
	return winner
}

// moduleForDirection is the module a result gets when its source declares none.
func moduleForDirection(inflow bool) models.Module {
	if inflow {
		return models.ModuleCR
	}
	return models.ModuleCD
}

func clamp(confidence, ceiling float64) float64 {
	if confidence > ceiling {
		return ceiling
	}
	if confidence < 0 {
		return 0
	}
	return confidence
}
