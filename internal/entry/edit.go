package entry

import (
	"fmt"

	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"

	"github.com/shopspring/decimal"
)

// LineEdit changes one line of an entry. Nil and empty fields are left unchanged.
type LineEdit struct {
	Index    int
	GLCode   string
	FundCode string
	Debit    *decimal.Decimal
	Credit   *decimal.Decimal
}

// validationReasons are recomputed on every edit.
var validationReasons = map[models.ReviewReason]bool{
	models.ReasonUnbalanced:     true,
	models.ReasonUnknownAccount: true,
	models.ReasonMissingGL:      true,
}

// Edit applies reviewer changes to a copy of e and validates the result again.
// Reasons coming from validation are dropped and recomputed; the others stay and
// "edited by reviewer" is added.
func (b *Builder) Edit(e models.JournalEntry, edits ...LineEdit) (models.JournalEntry, error) {
	out := e
	out.Lines = append([]models.JournalLine(nil), e.Lines...)

	for _, ed := range edits {
		if ed.Index < 0 || ed.Index >= len(out.Lines) {
			return e, &parsererror.ValidationError{
				Source: "entry " + e.DocNumber,
				Reason: fmt.Sprintf("line %d out of range (entry has %d lines)", ed.Index, len(out.Lines)),
			}
		}
		l := &out.Lines[ed.Index]
		if ed.GLCode != "" {
			l.GLCode = ed.GLCode
		}
		if ed.FundCode != "" {
			l.FundCode = ed.FundCode
		}
		if ed.Debit != nil {
			l.Debit = models.RoundCents(*ed.Debit)
		}
		if ed.Credit != nil {
			l.Credit = models.RoundCents(*ed.Credit)
		}
	}

	var kept []models.ReviewReason
	for _, r := range e.ReviewReasons {
		if !validationReasons[r] {
			kept = append(kept, r)
		}
	}
	out.ReviewReasons = nil
	out.NeedsReview = false
	out.Flag(kept...)
	out.Flag(models.ReasonEditedByReviewer)
	b.validate(&out)
	return out, nil
}

// Resolve clears the review state once a reviewer has accepted e as it stands.
// Validation still applies, so an unbalanced entry stays flagged.
func (b *Builder) Resolve(e models.JournalEntry) models.JournalEntry {
	e.ReviewReasons = nil
	e.NeedsReview = false
	b.validate(&e)
	return e
}
