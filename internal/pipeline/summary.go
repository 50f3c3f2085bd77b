package pipeline

import (
	"fmt"
	"time"

	"fjacquet/gl-posting/internal/models"

	"github.com/shopspring/decimal"
)

// DateRange is the span of transaction dates in a batch.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the range as "YYYY-MM-DD_YYYY-MM-DD", or "" when empty.
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s", dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"))
}

func (dr DateRange) extend(t time.Time) DateRange {
	if t.IsZero() {
		return dr
	}
	if dr.Start.IsZero() || t.Before(dr.Start) {
		dr.Start = t
	}
	if dr.End.IsZero() || t.After(dr.End) {
		dr.End = t
	}
	return dr
}

// Summary counts what a batch produced.
type Summary struct {
	Transactions int
	ByModule     map[models.Module]int
	ByBand       map[models.ConfidenceBand]int
	ByMatcher    map[string]int
	// Deposits and Withdrawals are statement values before refund inversion;
	// Withdrawals is positive.
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
	NeedsReview int
	Duplicates  int
	Unbalanced  int
	Dates       DateRange
}

func summarize(postings []Posting) Summary {
	s := Summary{
		Transactions: len(postings),
		ByModule:     make(map[models.Module]int),
		ByBand:       make(map[models.ConfidenceBand]int),
		ByMatcher:    make(map[string]int),
		Deposits:     decimal.Zero,
		Withdrawals:  decimal.Zero,
	}
	for _, p := range postings {
		s.ByModule[p.Entry.Module]++
		s.ByBand[p.Result.Band()]++
		if p.Result.MatchedBy != "" {
			s.ByMatcher[p.Result.MatchedBy]++
		}

		amount := p.Transaction.OriginalAmount
		if amount.IsPositive() {
			s.Deposits = s.Deposits.Add(amount)
		} else {
			s.Withdrawals = s.Withdrawals.Add(amount.Abs())
		}

		if p.Entry.NeedsReview {
			s.NeedsReview++
		}
		if p.Duplicate.IsDuplicate {
			s.Duplicates++
		}
		if !p.Entry.Balanced {
			s.Unbalanced++
		}
		s.Dates = s.Dates.extend(p.Transaction.Date)
	}
	return s
}

// reconcile compares parsed totals with the totals printed on the statement.
func reconcile(expected models.StatementTotals, s Summary) []models.Warning {
	var out []models.Warning
	check := func(label string, want *decimal.Decimal, got decimal.Decimal) {
		if want == nil {
			return
		}
		if models.RoundCents(want.Abs()).Equal(models.RoundCents(got)) {
			return
		}
		out = append(out, models.Warning{
			Kind:    models.WarningReconcile,
			Message: fmt.Sprintf("%s: statement shows %s, parsed %s", label, want.Abs().StringFixed(2), got.StringFixed(2)),
		})
	}
	check("total deposits", expected.Deposits, s.Deposits)
	check("total withdrawals", expected.Withdrawals, s.Withdrawals)
	return out
}
