// Package pipeline runs one uploaded statement through parsing, normalization,
// classification, routing, duplicate detection and entry building. Every batch gets
// its own identifiers and working set; nothing is shared between batches except the
// read-only reference snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/gl-posting/internal/classifier"
	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/duplicate"
	"fjacquet/gl-posting/internal/entry"
	"fjacquet/gl-posting/internal/history"
	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/normalizer"
	"fjacquet/gl-posting/internal/parsererror"
	"fjacquet/gl-posting/internal/router"
	"fjacquet/gl-posting/internal/statement"
	"fjacquet/gl-posting/internal/textutils"

	"github.com/shopspring/decimal"
)

// ErrSessionNotFound is returned for an unknown or already discarded session key.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoHistory is returned by operations that need the history store when none is configured.
var ErrNoHistory = errors.New("history store is not configured")

// History is the persistent side of the pipeline: posted fingerprints and confirmed
// classifications.
type History interface {
	duplicate.HistoryStore
	RecordPosted(ctx context.Context, postings []history.Posting) error
	AppendCorrection(ctx context.Context, c models.Correction) (models.Correction, error)
}

// Input is one extracted statement.
type Input struct {
	Lines []models.RawLine
	File  models.FileMeta
	// Bank forces a template by name. Empty means detect.
	Bank string
}

// Posting is one transaction with everything derived from it.
type Posting struct {
	Transaction models.Transaction
	Result      models.ClassificationResult
	Candidates  []models.ClassificationResult
	Decision    router.Decision
	Duplicate   models.DuplicateFlag
	Entry       models.JournalEntry
}

// BatchResult is the reviewable outcome of one upload.
type BatchResult struct {
	BatchID        string
	SessionKey     string
	CreatedAt      time.Time
	File           models.FileMeta
	Bank           string
	Identifier     string
	Generic        bool
	RequiresOCR    bool
	Period         *dateutils.Period
	CascadeVersion uint64
	Postings       []Posting
	Warnings       []models.Warning
	Summary        Summary
	Committed      bool
}

// Entries returns the entries routed to module, in statement order.
func (r *BatchResult) Entries(module models.Module) []models.JournalEntry {
	var out []models.JournalEntry
	for _, p := range r.Postings {
		if p.Entry.Module == module {
			out = append(out, p.Entry)
		}
	}
	return out
}

// Review returns the postings whose entry needs a human decision.
func (r *BatchResult) Review() []Posting {
	var out []Posting
	for _, p := range r.Postings {
		if p.Entry.NeedsReview {
			out = append(out, p)
		}
	}
	return out
}

// Posting looks a posting up by transaction id.
func (r *BatchResult) Posting(transactionID string) (Posting, bool) {
	for _, p := range r.Postings {
		if p.Transaction.ID == transactionID {
			return p, true
		}
	}
	return Posting{}, false
}

// Settings are the posting conventions applied to every batch.
type Settings struct {
	Accounts        entry.Accounts
	Tolerance       decimal.Decimal
	DocPrefix       string
	ConfidenceFloor float64
}

// DefaultSettings returns the stock conventions.
func DefaultSettings() Settings {
	return Settings{
		Accounts:        entry.DefaultAccounts(),
		Tolerance:       entry.DefaultTolerance,
		DocPrefix:       models.DefaultDocPrefix,
		ConfidenceFloor: models.DefaultConfidenceFloor,
	}
}

// Processor runs batches. It is safe for concurrent use.
type Processor struct {
	parser     *statement.Parser
	normalizer *normalizer.Normalizer
	engine     *classifier.Engine
	router     *router.Router
	detector   *duplicate.Detector
	history    History
	sessions   SessionStore
	settings   Settings
	logger     logging.Logger
	now        func() time.Time
}

// Option customizes a Processor.
type Option func(*Processor)

// WithHistory enables history duplicate checks, commits and persisted learning.
func WithHistory(h History) Option {
	return func(p *Processor) { p.history = h }
}

// WithSessions replaces the in-memory session store.
func WithSessions(s SessionStore) Option {
	return func(p *Processor) { p.sessions = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor wires a processor. Parser and engine are required.
func NewProcessor(parser *statement.Parser, engine *classifier.Engine, settings Settings, logger logging.Logger, opts ...Option) *Processor {
	logger = logging.OrDefault(logger)
	p := &Processor{
		parser:     parser,
		normalizer: normalizer.New(logger, normalizer.PositionalID),
		engine:     engine,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.sessions == nil {
		p.sessions = NewMemorySessions()
	}
	if p.settings.DocPrefix == "" {
		p.settings.DocPrefix = models.DefaultDocPrefix
	}
	if p.settings.Tolerance.IsZero() {
		p.settings.Tolerance = entry.DefaultTolerance
	}
	p.router = router.New(p.settings.ConfidenceFloor)

	var hs duplicate.HistoryStore
	if p.history != nil {
		hs = p.history
	}
	p.detector = duplicate.NewDetector(hs, logger)
	return p
}

// Sessions exposes the session store.
func (p *Processor) Sessions() SessionStore { return p.sessions }

// Process runs one statement through the pipeline and stores the result under a new
// session key. A statement without any transaction is a valid, empty result. The only
// error is an unknown forced bank.
func (p *Processor) Process(ctx context.Context, in Input) (*BatchResult, error) {
	started := p.now()
	cascade := p.engine.Cascade()

	res := &BatchResult{
		BatchID:        NewBatchID(started),
		SessionKey:     NewSessionKey(),
		CreatedAt:      started,
		File:           in.File,
		CascadeVersion: cascade.Version(),
	}
	log := p.logger.WithFields(
		logging.F(logging.FieldBatchID, res.BatchID),
		logging.F(logging.FieldSessionID, res.SessionKey),
		logging.F(logging.FieldFile, in.File.Name))

	var parsed *statement.Result
	if in.Bank != "" {
		var err error
		parsed, err = p.parser.ParseAs(in.Lines, in.Bank)
		if err != nil {
			return nil, err
		}
	} else {
		parsed = p.parser.Parse(in.Lines)
	}
	res.Bank = parsed.Bank
	res.Identifier = parsed.Identifier
	res.Generic = parsed.Generic
	res.RequiresOCR = parsed.RequiresOCR
	res.Period = parsed.Period
	res.Warnings = append(res.Warnings, parsed.Warnings...)

	txs, warnings := p.normalizer.Normalize(parsed.Candidates)
	res.Warnings = append(res.Warnings, warnings...)

	outcomes := make([]classifier.Outcome, len(txs))
	decisions := make([]router.Decision, len(txs))
	degraded := make(map[string]bool)
	for i := range txs {
		out := cascade.Classify(ctx, txs[i])
		for _, err := range out.Degraded {
			res.Warnings = appendDegraded(res.Warnings, degraded, err)
		}
		if out.Result.IsRefund {
			txs[i].InvertForRefund()
		}
		outcomes[i] = out
		decisions[i] = p.router.Route(out.Result, txs[i])
	}

	report := p.detector.Detect(ctx, txs)
	res.Warnings = append(res.Warnings, report.Warnings...)

	builder := entry.NewBuilder(p.settings.Accounts, p.settings.Tolerance, cascade.Accounts(), log)
	numbers := router.NewDocNumberer(p.settings.DocPrefix)
	res.Postings = make([]Posting, len(txs))
	for i := range txs {
		e := builder.Build(entry.Input{Transaction: txs[i], Result: outcomes[i].Result, Decision: decisions[i]}, numbers)
		res.Postings[i] = Posting{
			Transaction: txs[i],
			Result:      outcomes[i].Result,
			Candidates:  outcomes[i].Candidates,
			Decision:    decisions[i],
			Duplicate:   report.Flags[i],
			Entry:       e,
		}
	}

	res.Summary = summarize(res.Postings)
	res.Warnings = append(res.Warnings, reconcile(parsed.ExpectedTotals, res.Summary)...)
	p.sessions.Put(res)

	log.Info("Processed statement batch",
		logging.F(logging.FieldBank, res.Bank),
		logging.F(logging.FieldCount, len(res.Postings)),
		logging.F("needs_review", res.Summary.NeedsReview),
		logging.F("warnings", len(res.Warnings)),
		logging.F(logging.FieldDuration, p.now().Sub(started).String()))
	return res, nil
}

// appendDegraded records one warning per unavailable matcher.
func appendDegraded(warnings []models.Warning, seen map[string]bool, err error) []models.Warning {
	name := "classifier"
	var cerr *parsererror.ClassificationError
	if errors.As(err, &cerr) {
		name = cerr.Matcher
	}
	if seen[name] {
		return warnings
	}
	seen[name] = true
	return append(warnings, models.Warning{
		Kind:    models.WarningDegraded,
		Message: fmt.Sprintf("%s matcher unavailable: %v", name, errors.Unwrap(err)),
	})
}

// Confirm records a confirmed classification. It is persisted first, when a history
// store is configured, and then published to the engine, so only batches started
// afterwards see it.
func (p *Processor) Confirm(ctx context.Context, c models.Correction) (models.Correction, error) {
	if c.Key == "" {
		c.Key = textutils.HistoryKey(c.Description)
	}
	if c.Key == "" || c.GLCode == "" {
		return models.Correction{}, &parsererror.ValidationError{Source: "correction", Reason: "description and GL code are required"}
	}
	if c.ConfirmedAt.IsZero() {
		c.ConfirmedAt = p.now().UTC()
	}

	if p.history != nil {
		stored, err := p.history.AppendCorrection(ctx, c)
		if err != nil {
			return models.Correction{}, &parsererror.CollaboratorError{Collaborator: "history", Operation: "append correction", Err: err}
		}
		c = stored
	}
	cascade := p.engine.Learn(c)
	p.logger.Debug("Confirmed classification",
		logging.F(logging.FieldGLCode, c.GLCode),
		logging.F("version", cascade.Version()))
	return c, nil
}

// ConfirmTransaction confirms the classification of one transaction of a session.
// Empty fields fall back to the entry's current values.
func (p *Processor) ConfirmTransaction(ctx context.Context, sessionKey, transactionID string, gl, fund string, module models.Module) (models.Correction, error) {
	batch, ok := p.sessions.Get(sessionKey)
	if !ok {
		return models.Correction{}, ErrSessionNotFound
	}
	posting, ok := batch.Posting(transactionID)
	if !ok {
		return models.Correction{}, &parsererror.ValidationError{Source: "confirm", Reason: "unknown transaction " + transactionID}
	}
	if gl == "" {
		gl = posting.Result.GLCode
	}
	if fund == "" {
		fund = posting.Result.FundCode
	}
	if module == "" {
		module = posting.Entry.Module
	}
	return p.Confirm(ctx, models.Correction{
		Description: posting.Transaction.Description,
		GLCode:      gl,
		FundCode:    fund,
		Module:      module,
		Source:      batch.BatchID,
	})
}

// Commit records the fingerprints of the session's postable entries as posted, so
// later uploads flag them as history duplicates. Unknown-module entries and batch or
// history duplicates are skipped. It returns how many transactions were recorded.
func (p *Processor) Commit(ctx context.Context, sessionKey string) (int, error) {
	if p.history == nil {
		return 0, ErrNoHistory
	}
	batch, ok := p.sessions.Get(sessionKey)
	if !ok {
		return 0, ErrSessionNotFound
	}

	postedAt := p.now().UTC()
	var postings []history.Posting
	for _, ps := range batch.Postings {
		if ps.Entry.Module == models.ModuleUnknown || ps.Duplicate.IsDuplicate || ps.Transaction.Fingerprint == "" {
			continue
		}
		postings = append(postings, history.Posting{
			Fingerprint:   ps.Transaction.Fingerprint,
			TransactionID: ps.Transaction.ID,
			DocNumber:     ps.Entry.DocNumber,
			BatchID:       batch.BatchID,
			PostedAt:      postedAt,
		})
	}
	if err := p.history.RecordPosted(ctx, postings); err != nil {
		return 0, &parsererror.CollaboratorError{Collaborator: "history", Operation: "record posted", Err: err}
	}
	// Readers may hold the stored pointer, so the committed state goes in as a new value.
	committed := *batch
	committed.Committed = true
	p.sessions.Put(&committed)

	p.logger.Info("Committed batch",
		logging.F(logging.FieldBatchID, batch.BatchID),
		logging.F(logging.FieldCount, len(postings)))
	return len(postings), nil
}

// Discard drops a session.
func (p *Processor) Discard(sessionKey string) {
	p.sessions.Delete(sessionKey)
}
