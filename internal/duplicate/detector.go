// Package duplicate flags transactions whose fingerprint was already seen, either earlier
// in the same batch or in the posted history. Flags are review hints; nothing is removed.
package duplicate

import (
	"context"
	"fmt"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"
)

// HistoryStore answers which fingerprints were already posted.
// Seen returns, for each known fingerprint, a reference to the posted record.
type HistoryStore interface {
	Seen(ctx context.Context, fingerprints []string) (map[string]string, error)
}

// Report is the outcome of one detection run.
type Report struct {
	// Flags holds one flag per input transaction, in input order.
	Flags    []models.DuplicateFlag
	Warnings []models.Warning
	// Degraded is set when the history lookup failed and only batch-local
	// detection ran.
	Degraded error
}

// Count returns how many transactions were flagged as duplicates.
func (r Report) Count() int {
	n := 0
	for _, f := range r.Flags {
		if f.IsDuplicate {
			n++
		}
	}
	return n
}

// Detector compares fingerprints by exact equality.
type Detector struct {
	history HistoryStore
	logger  logging.Logger
}

// NewDetector creates a detector. A nil history limits detection to the batch.
func NewDetector(history HistoryStore, logger logging.Logger) *Detector {
	return &Detector{history: history, logger: logging.OrDefault(logger)}
}

// Detect flags txs in place and returns the per-transaction flags.
//
// Within the batch the later positional transaction is the duplicate and points at the
// first one with the same fingerprint; the first one lists its later duplicates.
// Transactions without a fingerprint are never matched.
func (d *Detector) Detect(ctx context.Context, txs []models.Transaction) Report {
	report := Report{Flags: make([]models.DuplicateFlag, len(txs))}

	first := make(map[string]int, len(txs))
	for i := range txs {
		fp := txs[i].Fingerprint
		report.Flags[i] = models.DuplicateFlag{TransactionID: txs[i].ID}
		if fp == "" {
			continue
		}
		j, seen := first[fp]
		if !seen {
			first[fp] = i
			continue
		}
		report.Flags[i].IsDuplicate = true
		report.Flags[i].DuplicateSource = models.DuplicateSourceBatch
		report.Flags[i].MatchedFingerprint = fp
		report.Flags[i].MatchedTransactionID = txs[j].ID
		txs[i].Flag(models.ReasonDuplicateBatch)

		report.Flags[j].LaterDuplicates = append(report.Flags[j].LaterDuplicates, txs[i].ID)
		txs[j].Flag(models.ReasonHasDuplicate)
	}

	if d.history != nil && len(first) > 0 {
		d.checkHistory(ctx, txs, first, &report)
	}

	if n := report.Count(); n > 0 {
		d.logger.Info("Duplicate transactions flagged", logging.F(logging.FieldCount, n))
	}
	return report
}

func (d *Detector) checkHistory(ctx context.Context, txs []models.Transaction, first map[string]int, report *Report) {
	fps := make([]string, 0, len(first))
	for i := range txs {
		if idx, ok := first[txs[i].Fingerprint]; ok && idx == i {
			fps = append(fps, txs[i].Fingerprint)
		}
	}

	posted, err := d.history.Seen(ctx, fps)
	if err != nil {
		err = &parsererror.CollaboratorError{Collaborator: "history", Operation: "seen", Err: err}
		d.logger.WithError(err).Warn("History store unavailable, using batch-local duplicate detection",
			logging.F(logging.FieldCollaborator, "history"))
		report.Degraded = err
		report.Warnings = append(report.Warnings, models.Warning{
			Kind:    models.WarningDegraded,
			Message: fmt.Sprintf("duplicate check limited to this batch: %v", err),
		})
		return
	}

	for i := range txs {
		fp := txs[i].Fingerprint
		ref, ok := posted[fp]
		if fp == "" || !ok {
			continue
		}
		f := &report.Flags[i]
		if !f.IsDuplicate {
			f.IsDuplicate = true
			f.DuplicateSource = models.DuplicateSourceHistory
			f.MatchedFingerprint = fp
			f.MatchedTransactionID = ref
		}
		txs[i].Flag(models.ReasonDuplicateHistory)
		d.logger.Debug("Transaction already posted",
			logging.F(logging.FieldTransactionID, txs[i].ID), logging.F(logging.FieldFingerprint, fp))
	}
}
