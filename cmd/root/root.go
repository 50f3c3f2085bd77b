// Package root contains the root command for the application
package root

import (
	"fmt"
	"sync"

	"fjacquet/gl-posting/internal/config"
	"fjacquet/gl-posting/internal/container"
	"fjacquet/gl-posting/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	ConfigFile string
	LogLevel   string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "gl-posting",
		Short: "Turn bank statements into balanced, reviewable journal entries.",
		Long: `gl-posting reads bank statements (text, PDF, CSV, XLSX or CAMT.053), classifies
every transaction to a GL account, routes it to the cash receipts (CR), cash
disbursements (CD) or journal voucher (JV) module and writes import-ready
journal entries together with a review list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			return nil
		},
		// Release the history database and AI client when any command finishes
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Close()
		},
		SilenceUsage: true,
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}

	mu        sync.Mutex
	appConfig *config.Config
	app       *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output directory")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches $HOME/.gl-posting, .gl-posting, .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Override log.level (trace, debug, info, warn, error)")
}

// GetConfig loads the configuration once per process.
func GetConfig() (*config.Config, error) {
	mu.Lock()
	defer mu.Unlock()
	return loadConfig()
}

func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := config.Load(SharedFlags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	appConfig = cfg
	return cfg, nil
}

// GetContainer builds the dependency container once per process.
func GetContainer() (*container.Container, error) {
	mu.Lock()
	defer mu.Unlock()
	if app != nil {
		return app, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	c, err := container.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	app = c
	return c, nil
}

// GetLogger returns the container logger, or a default one before the container exists.
func GetLogger() logging.Logger {
	mu.Lock()
	defer mu.Unlock()
	if app != nil {
		return app.GetLogger()
	}
	if appConfig != nil {
		return config.NewLogger(appConfig)
	}
	return logging.OrDefault(nil)
}

// Close releases the container and forgets the loaded configuration.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if app != nil {
		if err := app.Close(); err != nil {
			app.GetLogger().WithError(err).Warn("Failed to close resources")
		}
	}
	app = nil
	appConfig = nil
}
