// Package classifier assigns a ledger account, fund and module to normalized transactions.
//
// Matchers run in a fixed order: deterministic rules, the keyword table, the vendor
// list, the customer and grant list, confirmed history and finally an optional AI
// suggester. The first result at or above the accept threshold wins; otherwise the
// best-scoring result is returned. Reference data is held in an immutable Cascade that
// an Engine swaps atomically when new corrections are confirmed.
package classifier

import (
	"context"
	"time"

	"fjacquet/gl-posting/internal/models"
)

// Matcher names, also reported in ClassificationResult.MatchedBy.
const (
	MatcherRules    = "rules"
	MatcherKeyword  = "keyword"
	MatcherVendor   = "vendor"
	MatcherCustomer = "customer"
	MatcherHistory  = "history"
	MatcherAI       = "ai"
)

// Matcher is one stage of the classification cascade.
type Matcher interface {
	// Match returns a result and true when the matcher recognizes the transaction.
	// An error means the matcher could not run; the cascade skips it and continues.
	Match(ctx context.Context, tx models.Transaction) (models.ClassificationResult, bool, error)

	// Name identifies the matcher in results and logs.
	Name() string
}

// Options tunes the cascade.
type Options struct {
	// AcceptThreshold stops the cascade at the first result scoring at least this much.
	AcceptThreshold float64
	// VendorSimilarity is the minimum fuzzy score for a vendor match.
	VendorSimilarity float64
	// HistorySimilarity is the minimum description similarity for a history match.
	HistorySimilarity float64
	// SuggestionCap bounds the confidence of AI suggestions.
	SuggestionCap float64
	// SuggestTimeout bounds one AI call.
	SuggestTimeout time.Duration
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		AcceptThreshold:   models.ConfidenceHigh,
		VendorSimilarity:  0.80,
		HistorySimilarity: 0.70,
		SuggestionCap:     0.59,
		SuggestTimeout:    30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.AcceptThreshold <= 0 {
		o.AcceptThreshold = d.AcceptThreshold
	}
	if o.VendorSimilarity <= 0 {
		o.VendorSimilarity = d.VendorSimilarity
	}
	if o.HistorySimilarity <= 0 {
		o.HistorySimilarity = d.HistorySimilarity
	}
	if o.SuggestionCap <= 0 {
		o.SuggestionCap = d.SuggestionCap
	}
	if o.SuggestTimeout <= 0 {
		o.SuggestTimeout = d.SuggestTimeout
	}
	return o
}
