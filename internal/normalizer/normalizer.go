// Package normalizer converts statement candidates into canonical transactions.
package normalizer

import (
	"fmt"

	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/textutils"
)

// IDFunc assigns a transaction id from its fingerprint and position in the batch.
type IDFunc func(fingerprint string, position int) string

// PositionalID is the default IDFunc: a fingerprint prefix plus the batch position,
// so re-parsing the same statement yields the same ids.
func PositionalID(fingerprint string, position int) string {
	return fmt.Sprintf("%s-%04d", fingerprint[:12], position)
}

// Normalizer turns candidates into transactions.
type Normalizer struct {
	logger logging.Logger
	newID  IDFunc
}

// New creates a Normalizer. A nil idFunc uses PositionalID.
func New(logger logging.Logger, idFunc IDFunc) *Normalizer {
	if idFunc == nil {
		idFunc = PositionalID
	}
	return &Normalizer{logger: logging.OrDefault(logger), newID: idFunc}
}

// Normalize converts candidates in order. Lines with unparseable dates are dropped with a
// normalization warning; zero amounts are kept and flagged for review.
func (n *Normalizer) Normalize(candidates []models.Candidate) ([]models.Transaction, []models.Warning) {
	var (
		txs      []models.Transaction
		warnings []models.Warning
	)
	for _, c := range candidates {
		tx, warns, ok := n.normalizeOne(c, len(txs))
		warnings = append(warnings, warns...)
		if ok {
			txs = append(txs, tx)
		}
	}
	return txs, warnings
}

func (n *Normalizer) normalizeOne(c models.Candidate, position int) (models.Transaction, []models.Warning, bool) {
	var warnings []models.Warning

	date, _, err := dateutils.ParseDate(c.DateText, c.DateFormats...)
	if err != nil {
		n.logger.Debug("Dropping line with unparseable date",
			logging.F(logging.FieldLine, c.Line.Number), logging.F(logging.FieldReason, err.Error()))
		return models.Transaction{}, []models.Warning{{
			Kind:    models.WarningNormalization,
			Line:    c.Line.Number,
			Message: fmt.Sprintf("unparseable date %q", c.DateText),
		}}, false
	}

	// The parser's type decision wins over the literal sign.
	amount := models.RoundCents(c.Amount.Abs())
	if c.Type == models.TypeWithdrawal {
		amount = amount.Neg()
	}

	description := textutils.CollapseSpaces(c.Description)
	check := c.CheckNumber
	if check == "" {
		check = textutils.ExtractCheckNumber(description)
	}

	fp := Fingerprint(date, amount, description, check)
	tx := models.Transaction{
		ID:             n.newID(fp, position),
		Date:           date,
		Description:    description,
		Amount:         amount,
		OriginalAmount: amount,
		Type:           c.Type,
		SourceBank:     c.Bank,
		CheckNumber:    check,
		Fingerprint:    fp,
		Line:           c.Line.Number,
	}

	if models.IsNearZero(amount) {
		tx.Flag(models.ReasonZeroAmount)
		warnings = append(warnings, models.Warning{
			Kind:    models.WarningNormalization,
			Line:    c.Line.Number,
			Message: string(models.ReasonZeroAmount),
		})
	}
	if description == "" {
		tx.Flag(models.ReasonMissingField)
		warnings = append(warnings, models.Warning{
			Kind:    models.WarningNormalization,
			Line:    c.Line.Number,
			Message: "missing description",
		})
	}
	return tx, warnings, true
}
