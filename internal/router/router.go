// Package router decides which accounting module a classified transaction posts
// through and numbers the resulting documents.
package router

import (
	"fjacquet/gl-posting/internal/models"
)

// Decision is the routing outcome for one transaction.
type Decision struct {
	Module  models.Module
	Reasons []models.ReviewReason
}

// NeedsReview reports whether the decision carries review reasons.
func (d Decision) NeedsReview() bool { return len(d.Reasons) > 0 }

// Router maps a classification and the transaction direction to a module.
type Router struct {
	floor float64
}

// New creates a router. Results scoring below floor are routed to UNKNOWN.
func New(floor float64) *Router {
	if floor <= 0 {
		floor = models.DefaultConfidenceFloor
	}
	return &Router{floor: floor}
}

// Floor returns the low-confidence floor.
func (r *Router) Floor() float64 { return r.floor }

// Route is deterministic in (result, transaction type, refund flag):
//   - no result, or a result below the floor, is UNKNOWN;
//   - a vendor refund is CD;
//   - a result the matcher declared JV (fees, corrections, transfers) is JV;
//   - otherwise deposits are CR and withdrawals CD.
//
// A CR or CD declaration that disagrees with the direction is flagged, not obeyed.
func (r *Router) Route(res models.ClassificationResult, tx models.Transaction) Decision {
	if !res.Found() {
		return Decision{Module: models.ModuleUnknown, Reasons: []models.ReviewReason{models.ReasonUnclassified}}
	}
	if res.Confidence < r.floor {
		return Decision{Module: models.ModuleUnknown, Reasons: []models.ReviewReason{models.ReasonLowConfidence}}
	}

	var d Decision
	switch {
	case res.IsRefund:
		d.Module = models.ModuleCD
		d.Reasons = append(d.Reasons, models.ReasonRefund)
	case res.Module == models.ModuleJV:
		d.Module = models.ModuleJV
	default:
		d.Module = directionModule(tx)
		if (res.Module == models.ModuleCR || res.Module == models.ModuleCD) && res.Module != d.Module {
			d.Reasons = append(d.Reasons, models.ReasonSignConflict)
		}
	}

	switch res.Band() {
	case models.BandMedium:
		d.Reasons = append(d.Reasons, models.ReasonMediumConfidence)
	case models.BandLow:
		d.Reasons = append(d.Reasons, models.ReasonLowConfidence)
	}
	return d
}

func directionModule(tx models.Transaction) models.Module {
	switch tx.Type {
	case models.TypeDeposit:
		return models.ModuleCR
	case models.TypeWithdrawal:
		return models.ModuleCD
	}
	if tx.IsInflow() {
		return models.ModuleCR
	}
	return models.ModuleCD
}
