// Package container provides dependency injection for the gl-posting application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"fjacquet/gl-posting/internal/classifier"
	"fjacquet/gl-posting/internal/config"
	"fjacquet/gl-posting/internal/entry"
	"fjacquet/gl-posting/internal/export"
	"fjacquet/gl-posting/internal/extractor"
	"fjacquet/gl-posting/internal/history"
	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/pipeline"
	"fjacquet/gl-posting/internal/statement"
	"fjacquet/gl-posting/internal/store"
	"fjacquet/gl-posting/internal/templates"

	"github.com/shopspring/decimal"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	registry   *templates.Registry
	reference  store.ReferenceSource
	history    *history.SQLiteStore
	suggester  *classifier.GeminiSuggester
	engine     *classifier.Engine
	extractors *extractor.Factory
	processor  *pipeline.Processor
	exporter   *export.Writer
}

// Option customizes container construction.
type Option func(*options)

type options struct {
	logger    logging.Logger
	reference store.ReferenceSource
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithReferenceSource replaces the YAML reference store.
func WithReferenceSource(src store.ReferenceSource) Option {
	return func(o *options) { o.reference = src }
}

// NewContainer creates and wires all application dependencies.
//
// Collaborators that cannot be reached (history database, AI service) are logged and
// left out; the pipeline then runs without them. Invalid templates or reference data
// are errors.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	registry, err := templates.Load(cfg.Templates.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank templates: %w", err)
	}

	reference := o.reference
	if reference == nil {
		reference = store.NewReferenceStore(store.Files{
			Directory: cfg.Reference.Directory,
			Rules:     cfg.Reference.RulesFile,
			Keywords:  cfg.Reference.KeywordsFile,
			Vendors:   cfg.Reference.VendorsFile,
			Customers: cfg.Reference.CustomersFile,
			Chart:     cfg.Reference.ChartFile,
		}, logger)
	}
	data, err := reference.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	c := &Container{logger: logger, config: cfg, registry: registry, reference: reference}

	if cfg.History.Enabled {
		h, err := history.NewSQLite(cfg.History.Path, logger)
		if err != nil {
			logger.WithError(err).Warn("History store unavailable, continuing without it",
				logging.F(logging.FieldFile, cfg.History.Path))
		} else {
			c.history = h
			corrections, err := h.LoadCorrections(context.Background())
			if err != nil {
				logger.WithError(err).Warn("Failed to load confirmed classifications")
			}
			data.Corrections = append(data.Corrections, corrections...)
		}
	}

	engineOpts := []classifier.EngineOption{
		classifier.WithBankKeywords(classifier.BankKeywords(registry.GLMappings())),
	}
	if cfg.AI.Enabled {
		s, err := classifier.NewGeminiSuggester(context.Background(), cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			logger.WithError(err).Warn("AI suggestions disabled")
		} else {
			c.suggester = s
			engineOpts = append(engineOpts, classifier.WithSuggester(s))
			logger.Info("AI suggestions enabled", logging.F("model", cfg.AI.Model))
		}
	}
	c.engine = classifier.NewEngine(data, ClassifierOptions(cfg), logger, engineOpts...)

	var procOpts []pipeline.Option
	if c.history != nil {
		procOpts = append(procOpts, pipeline.WithHistory(c.history))
	}
	parser := statement.NewParser(registry, logger)
	c.processor = pipeline.NewProcessor(parser, c.engine, PipelineSettings(cfg), logger, procOpts...)
	c.extractors = extractor.NewFactory(logger)
	c.exporter = export.NewWriter(delimiter(cfg.Export.Delimiter), logger)

	logger.Info("Container initialized successfully",
		logging.F("banks", len(registry.Names())),
		logging.F("history_enabled", c.history != nil),
		logging.F("ai_enabled", c.suggester != nil))
	return c, nil
}

// ClassifierOptions maps the classification settings.
func ClassifierOptions(cfg *config.Config) classifier.Options {
	return classifier.Options{
		AcceptThreshold:   cfg.Classification.AcceptThreshold,
		VendorSimilarity:  cfg.Classification.VendorSimilarity,
		HistorySimilarity: cfg.Classification.HistorySimilarity,
		SuggestionCap:     cfg.AI.MaxConfidence,
		SuggestTimeout:    time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}
}

// PipelineSettings maps the posting settings.
func PipelineSettings(cfg *config.Config) pipeline.Settings {
	p := cfg.Posting
	return pipeline.Settings{
		Accounts: entry.Accounts{
			BankGL:      p.BankGL,
			FundCode:    p.FundCode,
			RevenueGL:   p.DefaultRevenueGL,
			ExpenseGL:   p.DefaultExpenseGL,
			JVIncomeGL:  p.JVIncomeGL,
			JVExpenseGL: p.JVExpenseGL,
		},
		Tolerance:       decimal.NewFromFloat(p.BalanceTolerance),
		DocPrefix:       p.DocPrefix,
		ConfidenceFloor: cfg.Classification.LowConfidenceFloor,
	}
}

func delimiter(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}

// ReloadReference reads the reference data again and publishes it. Batches already
// running keep their snapshot. Confirmed classifications are carried over.
func (c *Container) ReloadReference() error {
	data, err := c.reference.Load()
	if err != nil {
		return fmt.Errorf("failed to reload reference data: %w", err)
	}
	if c.history != nil {
		corrections, err := c.history.LoadCorrections(context.Background())
		if err != nil {
			c.logger.WithError(err).Warn("Failed to load confirmed classifications")
		}
		data.Corrections = append(data.Corrections, corrections...)
	}
	c.engine.Publish(data)
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRegistry returns the bank template registry.
func (c *Container) GetRegistry() *templates.Registry {
	return c.registry
}

// GetEngine returns the classification engine.
func (c *Container) GetEngine() *classifier.Engine {
	return c.engine
}

// GetProcessor returns the batch pipeline.
func (c *Container) GetProcessor() *pipeline.Processor {
	return c.processor
}

// GetExtractors returns the text extraction factory.
func (c *Container) GetExtractors() *extractor.Factory {
	return c.extractors
}

// GetExporter returns the CSV and workbook writer.
func (c *Container) GetExporter() *export.Writer {
	return c.exporter
}

// GetHistory returns the history store, or nil when it is disabled or unavailable.
func (c *Container) GetHistory() *history.SQLiteStore {
	return c.history
}

// Close releases the history database and the AI client.
func (c *Container) Close() error {
	var firstErr error
	if c.suggester != nil {
		if err := c.suggester.Close(); err != nil {
			firstErr = err
		}
	}
	if c.history != nil {
		if err := c.history.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.logger.Debug("Container closed")
	return firstErr
}
