package templates

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTemplates []byte

// File is the YAML layout of a template file.
type File struct {
	Banks   []BankTemplate `yaml:"banks"`
	Generic *BankTemplate  `yaml:"generic,omitempty"`
}

// Decode reads a template file.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	return &f, nil
}

// Builtin returns the templates shipped with the binary.
func Builtin() (*File, error) {
	return Decode(strings.NewReader(string(defaultTemplates)))
}

// DefaultRegistry builds a registry from the built-in templates only.
func DefaultRegistry() (*Registry, error) {
	return Load("")
}

// Load builds a registry from the built-in templates overlaid with path.
// Banks from path take precedence over built-ins and replace built-ins of the same name;
// a generic template in path replaces the built-in fallback. An empty path loads built-ins only.
func Load(path string) (*Registry, error) {
	builtin, err := Builtin()
	if err != nil {
		return nil, fmt.Errorf("built-in templates: %w", err)
	}
	if path == "" {
		return fromFiles(nil, builtin)
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open templates file: %w", err)
	}
	defer fh.Close()

	user, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fromFiles(user, builtin)
}

func fromFiles(user, builtin *File) (*Registry, error) {
	var banks []BankTemplate
	seen := map[string]bool{}
	var generic BankTemplate
	if builtin.Generic != nil {
		generic = *builtin.Generic
	}
	if user != nil {
		for _, b := range user.Banks {
			seen[strings.ToLower(b.Name)] = true
			banks = append(banks, b)
		}
		if user.Generic != nil {
			generic = *user.Generic
		}
	}
	for _, b := range builtin.Banks {
		if !seen[strings.ToLower(b.Name)] {
			banks = append(banks, b)
		}
	}
	return NewRegistry(banks, generic)
}
