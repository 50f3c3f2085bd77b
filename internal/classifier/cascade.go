package classifier

import (
	"context"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"
	"fjacquet/gl-posting/internal/textutils"
)

// Outcome is the classification of one transaction.
type Outcome struct {
	Result models.ClassificationResult
	// Candidates holds every result produced before the cascade stopped, in matcher order.
	Candidates []models.ClassificationResult
	// Degraded lists matchers that failed and were skipped.
	Degraded []error
}

// Cascade is an immutable set of matchers bound to one version of the reference data.
// A batch takes one Cascade at start and uses it throughout, so reference updates
// published meanwhile do not affect it.
type Cascade struct {
	version  uint64
	data     models.ReferenceData
	matchers []Matcher
	opts     Options
	logger   logging.Logger
}

// NewCascade builds a cascade over explicit matchers. Matchers run in slice order.
func NewCascade(matchers []Matcher, opts Options, logger logging.Logger) *Cascade {
	return &Cascade{
		matchers: matchers,
		opts:     opts.withDefaults(),
		logger:   logging.OrDefault(logger),
	}
}

// Version increases each time the engine publishes new reference data.
func (c *Cascade) Version() uint64 { return c.version }

// MatcherNames lists the matchers in precedence order.
func (c *Cascade) MatcherNames() []string {
	names := make([]string, 0, len(c.matchers))
	for _, m := range c.matchers {
		names = append(names, m.Name())
	}
	return names
}

// Accounts returns a copy of the chart of accounts bound to this cascade.
func (c *Cascade) Accounts() []models.Account {
	return append([]models.Account(nil), c.data.Accounts...)
}

// Classify runs the matchers over tx. It never fails: matcher errors are recorded in
// Outcome.Degraded and the cascade moves on.
func (c *Cascade) Classify(ctx context.Context, tx models.Transaction) Outcome {
	refund := textutils.IsRefund(tx.Description)
	inflow := tx.IsInflow()
	var out Outcome

	for i, m := range c.matchers {
		name := m.Name()
		if !applies(name, tx, refund, len(out.Candidates)) {
			continue
		}

		res, ok, err := m.Match(ctx, tx)
		if err != nil {
			cerr := &parsererror.ClassificationError{TransactionID: tx.ID, Matcher: name, Err: err}
			out.Degraded = append(out.Degraded, cerr)
			c.logger.WithError(err).Warn("Matcher unavailable, skipping",
				logging.F(logging.FieldMatcher, name),
				logging.F(logging.FieldTransactionID, tx.ID))
			continue
		}
		if !ok {
			continue
		}

		res.MatchedBy = name
		res.Precedence = i
		out.Candidates = append(out.Candidates, res)

		switch {
		case isFinal(res):
			out.Result = res
			return out
		case refund && name == MatcherVendor:
			out.Result = refundOverride(res, tx)
			return out
		case res.Confidence >= c.opts.AcceptThreshold:
			out.Result = res
			return out
		}
	}

	out.Result = best(out.Candidates, inflow)
	return out
}
