package models

// DuplicateSource says where a matching fingerprint was found.
type DuplicateSource string

const (
	DuplicateSourceBatch   DuplicateSource = "batch"
	DuplicateSourceHistory DuplicateSource = "history"
)

// DuplicateFlag is a review hint derived per upload. It is never authoritative.
type DuplicateFlag struct {
	TransactionID        string          `json:"transaction_id"`
	IsDuplicate          bool            `json:"is_duplicate"`
	DuplicateSource      DuplicateSource `json:"duplicate_source,omitempty"`
	MatchedFingerprint   string          `json:"matched_fingerprint,omitempty"`
	MatchedTransactionID string          `json:"matched_transaction_id,omitempty"`
	// LaterDuplicates lists batch transactions flagged as duplicates of this one.
	LaterDuplicates []string `json:"later_duplicates,omitempty"`
}

// Suspect reports whether the flag should put the transaction in front of a reviewer.
func (f DuplicateFlag) Suspect() bool {
	return f.IsDuplicate || len(f.LaterDuplicates) > 0
}
