package entry

import (
	"errors"
	"testing"
	"time"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"
	"fjacquet/gl-posting/internal/router"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTx(amount string) models.Transaction {
	amt := dec(amount)
	typ := models.TypeWithdrawal
	if amt.IsPositive() {
		typ = models.TypeDeposit
	}
	return models.Transaction{ID: "tx-1", Date: day, Description: "TEST", Amount: amt, Type: typ}
}

func newBuilder(chart ...models.Account) *Builder {
	return NewBuilder(DefaultAccounts(), decimal.Zero, chart, logging.NewMockLogger())
}

type leg struct {
	gl     string
	debit  string
	credit string
}

func legs(e models.JournalEntry) []leg {
	var out []leg
	for _, l := range e.Lines {
		out = append(out, leg{l.GLCode, l.Debit.StringFixed(2), l.Credit.StringFixed(2)})
	}
	return out
}

func TestBuild_ModuleConventions(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		module models.Module
		res    models.ClassificationResult
		want   []leg
	}{
		{
			name:   "cash receipt debits the bank",
			amount: "500.00",
			module: models.ModuleCR,
			res:    models.ClassificationResult{GLCode: "4100", FundCode: "2700", MatchedBy: "customer", Confidence: 0.95},
			want:   []leg{{"1070", "500.00", "0.00"}, {"4100", "0.00", "500.00"}},
		},
		{
			name:   "cash disbursement credits the bank",
			amount: "-15.00",
			module: models.ModuleCD,
			res:    models.ClassificationResult{GLCode: "6100", MatchedBy: "rules", Confidence: 0.96},
			want:   []leg{{"6100", "15.00", "0.00"}, {"1070", "0.00", "15.00"}},
		},
		{
			name:   "default revenue account",
			amount: "20.00",
			module: models.ModuleCR,
			res:    models.ClassificationResult{MatchedBy: "keyword", Confidence: 0.9},
			want:   []leg{{"1070", "20.00", "0.00"}, {"4000", "0.00", "20.00"}},
		},
		{
			name:   "journal voucher inflow",
			amount: "3.17",
			module: models.ModuleJV,
			res:    models.ClassificationResult{MatchedBy: "rules", Confidence: 0.95},
			want:   []leg{{"1070", "3.17", "0.00"}, {"4600", "0.00", "3.17"}},
		},
		{
			name:   "journal voucher outflow",
			amount: "-1000.00",
			module: models.ModuleJV,
			res:    models.ClassificationResult{GLCode: "1080", MatchedBy: "rules", Confidence: 0.95},
			want:   []leg{{"1080", "1000.00", "0.00"}, {"1070", "0.00", "1000.00"}},
		},
		{
			name:   "refund is a negative disbursement",
			amount: "-50.00",
			module: models.ModuleCD,
			res:    models.ClassificationResult{GLCode: "7300", MatchedBy: "vendor", Confidence: 0.95, IsRefund: true},
			want:   []leg{{"7300", "-50.00", "0.00"}, {"1070", "0.00", "-50.00"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newBuilder().Build(Input{
				Transaction: newTx(tt.amount),
				Result:      tt.res,
				Decision:    router.Decision{Module: tt.module},
			}, nil)
			assert.Equal(t, tt.module, e.Module)
			assert.Equal(t, tt.want, legs(e))
			assert.True(t, e.Balanced)
			assert.True(t, e.Variance.IsZero())
			assert.False(t, e.NeedsReview)
		})
	}
}

func TestBuild_Numbering(t *testing.T) {
	b := newBuilder()
	numbers := router.NewDocNumberer("GP")
	res := models.ClassificationResult{GLCode: "6100", MatchedBy: "rules", Confidence: 0.96}

	first := b.Build(Input{Transaction: newTx("-1.00"), Result: res, Decision: router.Decision{Module: models.ModuleCD}}, numbers)
	second := b.Build(Input{Transaction: newTx("-2.00"), Result: res, Decision: router.Decision{Module: models.ModuleCD}}, numbers)
	assert.Equal(t, "GP_0105_001", first.DocNumber)
	assert.Equal(t, "GP_0105_002", second.DocNumber)
	assert.Equal(t, "GP_CD_2025", second.SessionID)
}

func TestBuild_UnknownKeepsEntryForReview(t *testing.T) {
	e := newBuilder().Build(Input{
		Transaction: newTx("-8.00"),
		Result:      models.Unknown(),
		Decision:    router.Decision{Module: models.ModuleUnknown, Reasons: []models.ReviewReason{models.ReasonUnclassified}},
	}, router.NewDocNumberer(""))

	assert.Equal(t, models.ModuleUnknown, e.Module)
	assert.Empty(t, e.DocNumber)
	assert.Equal(t, []leg{{"", "8.00", "0.00"}, {"1070", "0.00", "8.00"}}, legs(e))
	assert.True(t, e.NeedsReview)
	assert.Equal(t, []models.ReviewReason{models.ReasonUnclassified, models.ReasonMissingGL}, e.ReviewReasons)
}

func TestBuild_ZeroAmountAndDuplicateCarryDistinctReasons(t *testing.T) {
	tx := newTx("0.00")
	tx.Flag(models.ReasonZeroAmount)
	tx.Flag(models.ReasonDuplicateBatch)

	e := newBuilder().Build(Input{
		Transaction: tx,
		Result:      models.ClassificationResult{GLCode: "7900", MatchedBy: "keyword", Confidence: 0.9},
		Decision:    router.Decision{Module: models.ModuleCD},
	}, nil)

	assert.True(t, e.Balanced)
	assert.True(t, e.NeedsReview)
	assert.Equal(t, "zero amount; duplicate of earlier transaction in batch", e.ReviewReason())
}

func TestBuild_AllReasonsApplySimultaneously(t *testing.T) {
	tx := newTx("-50.00")
	tx.Flag(models.ReasonZeroAmount)
	tx.Flag(models.ReasonDuplicateHistory)

	e := newBuilder().Build(Input{
		Transaction: tx,
		Result:      models.ClassificationResult{GLCode: "7300", MatchedBy: "vendor", Confidence: 0.95, IsRefund: true},
		Decision:    router.Decision{Module: models.ModuleCD, Reasons: []models.ReviewReason{models.ReasonRefund}},
	}, nil)

	assert.Equal(t, []models.ReviewReason{
		models.ReasonZeroAmount, models.ReasonDuplicateHistory, models.ReasonRefund,
	}, e.ReviewReasons)
}

func TestBuild_AISuggestionIsFlagged(t *testing.T) {
	e := newBuilder().Build(Input{
		Transaction: newTx("-8.00"),
		Result:      models.ClassificationResult{GLCode: "6900", MatchedBy: "ai", Confidence: 0.59},
		Decision:    router.Decision{Module: models.ModuleCD, Reasons: []models.ReviewReason{models.ReasonLowConfidence}},
	}, nil)
	assert.Contains(t, e.ReviewReasons, models.ReasonSuggestedByAI)
}

func TestBuild_UnknownAccount(t *testing.T) {
	b := newBuilder(models.Account{Code: "1070", Name: "Cash"}, models.Account{Code: "6100", Name: "Bank Fees"})

	ok := b.Build(Input{
		Transaction: newTx("-15.00"),
		Result:      models.ClassificationResult{GLCode: "6100", MatchedBy: "rules", Confidence: 0.96},
		Decision:    router.Decision{Module: models.ModuleCD},
	}, nil)
	assert.False(t, ok.NeedsReview)

	missing := b.Build(Input{
		Transaction: newTx("-15.00"),
		Result:      models.ClassificationResult{GLCode: "6123", MatchedBy: "keyword", Confidence: 0.9},
		Decision:    router.Decision{Module: models.ModuleCD},
	}, nil)
	assert.True(t, missing.NeedsReview)
	assert.Equal(t, []models.ReviewReason{models.ReasonUnknownAccount}, missing.ReviewReasons)
	assert.True(t, missing.Balanced, "an unknown account does not unbalance the entry")

	name, found := b.AccountName("6100")
	assert.True(t, found)
	assert.Equal(t, "Bank Fees", name)
}

func TestBuildVoucher_Unbalanced(t *testing.T) {
	logger := logging.NewMockLogger()
	b := NewBuilder(DefaultAccounts(), decimal.Zero, nil, logger)

	e := b.BuildVoucher(Voucher{
		Date:           day,
		Description:    "Payroll allocation",
		TransactionIDs: []string{"a", "b"},
		Lines: []models.JournalLine{
			{GLCode: "6100", Debit: dec("100.00")},
			{GLCode: "1070", Credit: dec("99.50")},
		},
	}, router.NewDocNumberer(""))

	assert.Equal(t, models.ModuleJV, e.Module)
	assert.Equal(t, "GP_0105_001", e.DocNumber)
	assert.False(t, e.Balanced)
	assert.Equal(t, "0.50", e.Variance.StringFixed(2))
	assert.True(t, e.NeedsReview)
	assert.Contains(t, e.ReviewReasons, models.ReasonUnbalanced)
	assert.Contains(t, e.ReviewReasons, models.ReasonMultiLineVoucher)
	assert.Equal(t, models.DefaultFundCode, e.Lines[0].FundCode)
	assert.True(t, logger.HasEntry("WARN", "Unbalanced journal entry"))
}

func TestValidate_Tolerance(t *testing.T) {
	tests := []struct {
		debit, credit string
		balanced      bool
		variance      string
	}{
		{"100.00", "100.00", true, "0.00"},
		{"100.00", "99.99", true, "0.01"},
		{"100.00", "99.98", false, "0.02"},
		{"99.50", "100.00", false, "-0.50"},
	}
	b := newBuilder()
	for _, tt := range tests {
		t.Run(tt.debit+"/"+tt.credit, func(t *testing.T) {
			e := models.JournalEntry{Lines: []models.JournalLine{
				{GLCode: "7000", Debit: dec(tt.debit)},
				{GLCode: "1070", Credit: dec(tt.credit)},
			}}
			b.Validate(&e)
			assert.Equal(t, tt.balanced, e.Balanced)
			assert.Equal(t, tt.variance, e.Variance.StringFixed(2))
			assert.Equal(t, !tt.balanced, e.NeedsReview)
		})
	}
}

func TestEdit_Revalidates(t *testing.T) {
	b := newBuilder()
	e := b.BuildVoucher(Voucher{
		Date: day,
		Lines: []models.JournalLine{
			{GLCode: "6100", Debit: dec("100.00")},
			{GLCode: "", Credit: dec("99.50")},
		},
	}, nil)
	require.Contains(t, e.ReviewReasons, models.ReasonUnbalanced)
	require.Contains(t, e.ReviewReasons, models.ReasonMissingGL)

	credit := dec("100.00")
	fixed, err := b.Edit(e, LineEdit{Index: 1, GLCode: "1070", Credit: &credit})
	require.NoError(t, err)
	assert.True(t, fixed.Balanced)
	assert.Equal(t, []models.ReviewReason{models.ReasonMultiLineVoucher, models.ReasonEditedByReviewer}, fixed.ReviewReasons)

	// The original is untouched.
	assert.Equal(t, "", e.Lines[1].GLCode)

	wrong := dec("90.00")
	broken, err := b.Edit(fixed, LineEdit{Index: 0, Debit: &wrong})
	require.NoError(t, err)
	assert.False(t, broken.Balanced)
	assert.Equal(t, "-10.00", broken.Variance.StringFixed(2))
	assert.Contains(t, broken.ReviewReasons, models.ReasonUnbalanced)

	_, err = b.Edit(fixed, LineEdit{Index: 5})
	var verr *parsererror.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestResolve(t *testing.T) {
	b := newBuilder()
	tx := newTx("-8.00")
	tx.Flag(models.ReasonDuplicateBatch)
	e := b.Build(Input{
		Transaction: tx,
		Result:      models.ClassificationResult{GLCode: "7000", MatchedBy: "keyword", Confidence: 0.9},
		Decision:    router.Decision{Module: models.ModuleCD},
	}, nil)
	require.True(t, e.NeedsReview)

	resolved := b.Resolve(e)
	assert.False(t, resolved.NeedsReview)
	assert.Empty(t, resolved.ReviewReasons)
}
