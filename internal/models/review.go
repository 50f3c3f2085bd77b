package models

import "strings"

// ReviewReason explains why a record needs a human decision.
type ReviewReason string

const (
	ReasonZeroAmount       ReviewReason = "zero amount"
	ReasonDuplicateBatch   ReviewReason = "duplicate of earlier transaction in batch"
	ReasonDuplicateHistory ReviewReason = "duplicate of posted transaction"
	ReasonHasDuplicate     ReviewReason = "has later duplicate in batch"
	ReasonUnclassified     ReviewReason = "unclassified"
	ReasonLowConfidence    ReviewReason = "low confidence"
	ReasonMediumConfidence ReviewReason = "medium confidence"
	ReasonRefund           ReviewReason = "vendor refund posted as negative disbursement"
	ReasonSignConflict     ReviewReason = "classification conflicts with amount sign"
	ReasonUnbalanced       ReviewReason = "unbalanced entry"
	ReasonUnknownAccount   ReviewReason = "unknown GL account"
	ReasonMissingField     ReviewReason = "missing required field"
	ReasonSuggestedByAI    ReviewReason = "suggested by AI"
	ReasonMultiLineVoucher ReviewReason = "multi-line voucher"
	ReasonMissingGL        ReviewReason = "missing GL code"
	ReasonEditedByReviewer ReviewReason = "edited by reviewer"
)

// JoinReasons renders reasons in the order they were recorded.
func JoinReasons(reasons []ReviewReason) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, "; ")
}

// MergeReasons appends the reasons in extra not already present in base.
func MergeReasons(base []ReviewReason, extra ...ReviewReason) []ReviewReason {
	out := append([]ReviewReason(nil), base...)
	for _, r := range extra {
		found := false
		for _, b := range out {
			if b == r {
				found = true
				break
			}
		}
		if !found {
			out = append(out, r)
		}
	}
	return out
}
