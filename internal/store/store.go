// Package store loads the reference data the classification cascade consults:
// fixed rules, the keyword table, vendors, customers and grants, and the chart of accounts.
package store

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var builtinReference []byte

// ReferenceSource provides reference data to the classifier.
type ReferenceSource interface {
	Load() (models.ReferenceData, error)
}

// Files names the YAML files that override built-in reference sections.
type Files struct {
	Directory string
	Rules     string
	Keywords  string
	Vendors   string
	Customers string
	Chart     string
}

// DefaultFiles returns the standard file names, relative to dir.
func DefaultFiles(dir string) Files {
	return Files{
		Directory: dir,
		Rules:     "rules.yaml",
		Keywords:  "keywords.yaml",
		Vendors:   "vendors.yaml",
		Customers: "customers.yaml",
		Chart:     "chart.yaml",
	}
}

// ReferenceStore merges built-in reference data with YAML overrides found on disk.
// A file present on disk replaces the whole matching section.
type ReferenceStore struct {
	Files  Files
	logger logging.Logger
}

// NewReferenceStore creates a store reading the given files.
func NewReferenceStore(files Files, logger logging.Logger) *ReferenceStore {
	return &ReferenceStore{Files: files, logger: logging.OrDefault(logger)}
}

// Builtin returns the reference data shipped with the binary.
func Builtin() (models.ReferenceData, error) {
	var data models.ReferenceData
	if err := yaml.Unmarshal(builtinReference, &data); err != nil {
		return models.ReferenceData{}, fmt.Errorf("error parsing built-in reference data: %w", err)
	}
	return data, nil
}

// FindConfigFile looks for a reference file in standard locations.
func (s *ReferenceStore) FindConfigFile(filename string) (string, error) {
	if filename == "" {
		return "", os.ErrNotExist
	}
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	var locations []string
	if s.Files.Directory != "" {
		locations = append(locations, filepath.Join(s.Files.Directory, filename))
	}
	locations = append(locations,
		filename,
		filepath.Join("config", filename),
		filepath.Join("reference", filename),
	)
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	// Fall back to ~/.config/gl-posting/
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "gl-posting", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// Load returns the built-in data with every section found on disk substituted.
func (s *ReferenceStore) Load() (models.ReferenceData, error) {
	data, err := Builtin()
	if err != nil {
		return models.ReferenceData{}, err
	}

	if err := override(s, s.Files.Rules, "rules", &data.Rules); err != nil {
		return models.ReferenceData{}, err
	}
	if err := override(s, s.Files.Keywords, "keywords", &data.Keywords); err != nil {
		return models.ReferenceData{}, err
	}
	if err := override(s, s.Files.Vendors, "vendors", &data.Vendors); err != nil {
		return models.ReferenceData{}, err
	}
	if err := override(s, s.Files.Customers, "customers", &data.Customers); err != nil {
		return models.ReferenceData{}, err
	}
	if err := override(s, s.Files.Chart, "accounts", &data.Accounts); err != nil {
		return models.ReferenceData{}, err
	}

	s.logger.Debug("Loaded reference data",
		logging.F("rules", len(data.Rules)),
		logging.F("keywords", len(data.Keywords)),
		logging.F("vendors", len(data.Vendors)),
		logging.F("customers", len(data.Customers)),
		logging.F("accounts", len(data.Accounts)))
	return data, nil
}

// override replaces *target with the content of filename when the file exists.
// The file may hold the list under its section key or as a bare list.
func override[T any](s *ReferenceStore, filename, section string, target *[]T) error {
	path, err := s.FindConfigFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("Reference file not found, keeping built-in data",
			logging.F(logging.FieldFile, filename),
			logging.F("section", section))
		return nil
	}
	if err != nil {
		return fmt.Errorf("error resolving %s file: %w", section, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s file: %w", section, err)
	}

	items, err := decodeSection[T](raw, section)
	if err != nil {
		return fmt.Errorf("error parsing %s file %s: %w", section, path, err)
	}

	s.logger.Info("Loaded reference file",
		logging.F(logging.FieldFile, path),
		logging.F("section", section),
		logging.F(logging.FieldCount, len(items)))
	*target = items
	return nil
}

func decodeSection[T any](raw []byte, section string) ([]T, error) {
	var keyed map[string][]T
	if err := yaml.Unmarshal(raw, &keyed); err == nil {
		if items, ok := keyed[section]; ok {
			return items, nil
		}
	}

	var items []T
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
