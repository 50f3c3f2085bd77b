package classifier

import (
	"context"
	"sync"
	"sync/atomic"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
)

// Engine owns the current Cascade and replaces it atomically when reference data
// changes. Readers never block; writers are serialized.
type Engine struct {
	opts         Options
	scorer       Scorer
	suggester    Suggester
	bankKeywords []models.KeywordEntry
	logger       logging.Logger

	mu      sync.Mutex
	current atomic.Pointer[Cascade]
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithScorer replaces the similarity scorer used by the vendor and history matchers.
func WithScorer(s Scorer) EngineOption {
	return func(e *Engine) { e.scorer = s }
}

// WithSuggester appends an AI suggester as the last matcher.
func WithSuggester(s Suggester) EngineOption {
	return func(e *Engine) { e.suggester = s }
}

// WithBankKeywords adds bank-scoped keyword entries, usually BankKeywords(registry.GLMappings()).
func WithBankKeywords(entries []models.KeywordEntry) EngineOption {
	return func(e *Engine) { e.bankKeywords = entries }
}

// NewEngine builds an engine over data.
func NewEngine(data models.ReferenceData, opts Options, logger logging.Logger, options ...EngineOption) *Engine {
	e := &Engine{
		opts:   opts.withDefaults(),
		scorer: NewScorer(),
		logger: logging.OrDefault(logger),
	}
	for _, o := range options {
		o(e)
	}
	e.current.Store(e.build(data, 1))
	return e
}

// Cascade returns the current snapshot. Callers keep it for the duration of a batch.
func (e *Engine) Cascade() *Cascade {
	return e.current.Load()
}

// Classify runs the current cascade over one transaction.
func (e *Engine) Classify(ctx context.Context, tx models.Transaction) Outcome {
	return e.Cascade().Classify(ctx, tx)
}

// Publish replaces the reference data. Batches already holding a Cascade keep theirs.
func (e *Engine) Publish(data models.ReferenceData) *Cascade {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.build(data.Clone(), e.current.Load().version+1)
	e.current.Store(next)
	e.logger.Info("Published reference data", logging.F("version", next.version))
	return next
}

// Learn appends a confirmed classification and publishes the result.
func (e *Engine) Learn(c models.Correction) *Cascade {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.current.Load()
	data := cur.data.Clone()
	data.Corrections = append(data.Corrections, c)
	next := e.build(data, cur.version+1)
	e.current.Store(next)
	e.logger.Info("Learned classification",
		logging.F(logging.FieldGLCode, c.GLCode),
		logging.F(logging.FieldModule, c.Module),
		logging.F("version", next.version))
	return next
}

func (e *Engine) build(data models.ReferenceData, version uint64) *Cascade {
	keywords := make([]models.KeywordEntry, 0, len(e.bankKeywords)+len(data.Keywords))
	keywords = append(keywords, e.bankKeywords...)
	keywords = append(keywords, data.Keywords...)

	matchers := []Matcher{
		NewRuleMatcher(data.Rules),
		NewKeywordMatcher(keywords),
		NewVendorMatcher(data.Vendors, e.scorer, e.opts.VendorSimilarity),
		NewCustomerMatcher(data.Customers),
		NewHistoryMatcher(data.Corrections, e.scorer, e.opts.HistorySimilarity),
	}
	if e.suggester != nil {
		matchers = append(matchers, NewSuggestMatcher(e.suggester, data.Accounts, e.opts, e.logger))
	}

	c := NewCascade(matchers, e.opts, e.logger)
	c.version = version
	c.data = data
	return c
}
