package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/gl-posting/cmd/banks"
	"fjacquet/gl-posting/cmd/classify"
	"fjacquet/gl-posting/cmd/learn"
	"fjacquet/gl-posting/cmd/process"
	"fjacquet/gl-posting/cmd/root"
	"fjacquet/gl-posting/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// Environment first, before any logger is created.
	loadEnvSilently()

	logging.SetAllLogLevels(configureLogLevel())

	root.Init()

	root.Cmd.AddCommand(process.Cmd)
	root.Cmd.AddCommand(banks.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(learn.Cmd)
}

// loadEnvSilently loads .env from the working directory or its parent.
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configureLogLevel reads LOG_LEVEL and applies it to the global logrus logger.
func configureLogLevel() logrus.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	return level
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
