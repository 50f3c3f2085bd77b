// Package config loads layered configuration: defaults, then config.yaml, then
// GLPOST_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GLPOST_POSTING_BANK_GL.
const EnvPrefix = "GLPOST"

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Templates struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"templates" yaml:"templates"`

	Reference struct {
		Directory     string `mapstructure:"directory" yaml:"directory"`
		RulesFile     string `mapstructure:"rules_file" yaml:"rules_file"`
		KeywordsFile  string `mapstructure:"keywords_file" yaml:"keywords_file"`
		VendorsFile   string `mapstructure:"vendors_file" yaml:"vendors_file"`
		CustomersFile string `mapstructure:"customers_file" yaml:"customers_file"`
		ChartFile     string `mapstructure:"chart_file" yaml:"chart_file"`
	} `mapstructure:"reference" yaml:"reference"`

	Classification struct {
		AcceptThreshold    float64 `mapstructure:"accept_threshold" yaml:"accept_threshold"`
		LowConfidenceFloor float64 `mapstructure:"low_confidence_floor" yaml:"low_confidence_floor"`
		VendorSimilarity   float64 `mapstructure:"vendor_similarity" yaml:"vendor_similarity"`
		HistorySimilarity  float64 `mapstructure:"history_similarity" yaml:"history_similarity"`
	} `mapstructure:"classification" yaml:"classification"`

	Posting struct {
		BankGL           string  `mapstructure:"bank_gl" yaml:"bank_gl"`
		FundCode         string  `mapstructure:"fund_code" yaml:"fund_code"`
		BalanceTolerance float64 `mapstructure:"balance_tolerance" yaml:"balance_tolerance"`
		DocPrefix        string  `mapstructure:"doc_prefix" yaml:"doc_prefix"`
		DefaultRevenueGL string  `mapstructure:"default_revenue_gl" yaml:"default_revenue_gl"`
		DefaultExpenseGL string  `mapstructure:"default_expense_gl" yaml:"default_expense_gl"`
		JVIncomeGL       string  `mapstructure:"jv_income_gl" yaml:"jv_income_gl"`
		JVExpenseGL      string  `mapstructure:"jv_expense_gl" yaml:"jv_expense_gl"`
	} `mapstructure:"posting" yaml:"posting"`

	History struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Path    string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"history" yaml:"history"`

	AI struct {
		Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
		Model          string  `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxConfidence  float64 `mapstructure:"max_confidence" yaml:"max_confidence"`
		APIKey         string  `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	Export struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"export" yaml:"export"`
}

// InitializeConfig loads configuration from the standard locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load reads configuration. When configFile is empty, config.yaml is searched in
// $HOME/.gl-posting, ./.gl-posting and the working directory; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.gl-posting")
		v.AddConfigPath(".gl-posting")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("templates.file", "")

	v.SetDefault("reference.directory", "")
	v.SetDefault("reference.rules_file", "rules.yaml")
	v.SetDefault("reference.keywords_file", "keywords.yaml")
	v.SetDefault("reference.vendors_file", "vendors.yaml")
	v.SetDefault("reference.customers_file", "customers.yaml")
	v.SetDefault("reference.chart_file", "chart.yaml")

	v.SetDefault("classification.accept_threshold", 0.85)
	v.SetDefault("classification.low_confidence_floor", 0.40)
	v.SetDefault("classification.vendor_similarity", 0.80)
	v.SetDefault("classification.history_similarity", 0.70)

	v.SetDefault("posting.bank_gl", "1070")
	v.SetDefault("posting.fund_code", "1000")
	v.SetDefault("posting.balance_tolerance", 0.01)
	v.SetDefault("posting.doc_prefix", "GP")
	v.SetDefault("posting.default_revenue_gl", "4000")
	v.SetDefault("posting.default_expense_gl", "7000")
	v.SetDefault("posting.jv_income_gl", "4600")
	v.SetDefault("posting.jv_expense_gl", "7500")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "gl-posting.db")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_confidence", 0.59)
	v.SetDefault("ai.api_key", "")

	v.SetDefault("export.directory", ".")
	v.SetDefault("export.delimiter", ",")
}

func validateConfig(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}

	c := cfg.Classification
	for name, val := range map[string]float64{
		"classification.accept_threshold":     c.AcceptThreshold,
		"classification.low_confidence_floor": c.LowConfidenceFloor,
		"classification.vendor_similarity":    c.VendorSimilarity,
		"classification.history_similarity":   c.HistorySimilarity,
		"ai.max_confidence":                   cfg.AI.MaxConfidence,
	} {
		if val < 0 || val > 1 {
			return fmt.Errorf("%s must be between 0.0 and 1.0, got: %f", name, val)
		}
	}
	if c.LowConfidenceFloor > c.AcceptThreshold {
		return fmt.Errorf("classification.low_confidence_floor (%.2f) exceeds accept_threshold (%.2f)",
			c.LowConfidenceFloor, c.AcceptThreshold)
	}

	if cfg.Posting.BankGL == "" {
		return fmt.Errorf("posting.bank_gl is required")
	}
	if cfg.Posting.BalanceTolerance <= 0 {
		return fmt.Errorf("posting.balance_tolerance must be positive, got: %f", cfg.Posting.BalanceTolerance)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if cfg.AI.TimeoutSeconds < 1 || cfg.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", cfg.AI.TimeoutSeconds)
		}
	}

	if len(cfg.Export.Delimiter) != 1 {
		return fmt.Errorf("export delimiter must be a single character, got: %s", cfg.Export.Delimiter)
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	return nil
}
