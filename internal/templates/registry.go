package templates

import (
	"fmt"
	"strings"

	"fjacquet/gl-posting/internal/parsererror"
)

// Registry holds bank templates in precedence order plus the generic fallback.
// It is safe for concurrent use because nothing mutates it after construction.
type Registry struct {
	banks   []*BankTemplate
	byName  map[string]*BankTemplate
	generic *BankTemplate
}

// NewRegistry compiles the templates and registers them in the order given.
// Earlier templates take precedence during detection.
func NewRegistry(banks []BankTemplate, generic BankTemplate) (*Registry, error) {
	r := &Registry{byName: make(map[string]*BankTemplate, len(banks))}
	for i := range banks {
		t := banks[i]
		if err := t.Compile(); err != nil {
			return nil, err
		}
		key := strings.ToLower(t.Name)
		if _, dup := r.byName[key]; dup {
			return nil, &parsererror.ValidationError{Source: t.Name, Reason: "bank template registered twice"}
		}
		r.banks = append(r.banks, &t)
		r.byName[key] = &t
	}
	if generic.Name == "" {
		generic.Name = "generic"
	}
	if err := generic.Compile(); err != nil {
		return nil, fmt.Errorf("generic template: %w", err)
	}
	r.generic = &generic
	return r, nil
}

// Detect returns the first registered template with an identifier in text, and the
// identifier that matched. The generic template is returned when none match.
func (r *Registry) Detect(text string) (*BankTemplate, string) {
	lower := strings.ToLower(text)
	for _, t := range r.banks {
		if id, ok := t.Matches(lower); ok {
			return t, id
		}
	}
	return r.generic, ""
}

// Get looks a template up by name, ignoring case. "generic" returns the fallback.
func (r *Registry) Get(name string) (*BankTemplate, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == strings.ToLower(r.generic.Name) {
		return r.generic, true
	}
	t, ok := r.byName[key]
	return t, ok
}

// Generic returns the fallback template.
func (r *Registry) Generic() *BankTemplate {
	return r.generic
}

// Banks returns the registered bank templates in precedence order.
func (r *Registry) Banks() []*BankTemplate {
	return append([]*BankTemplate(nil), r.banks...)
}

// Names lists registered bank names in precedence order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.banks))
	for _, t := range r.banks {
		names = append(names, t.Name)
	}
	return names
}

// GLMappings collects every template's default GL mappings keyed by bank name.
func (r *Registry) GLMappings() map[string]GLMappings {
	out := make(map[string]GLMappings)
	for _, t := range append(r.Banks(), r.generic) {
		if len(t.DefaultGLMappings.Deposits)+len(t.DefaultGLMappings.Withdrawals) > 0 {
			out[t.Name] = t.DefaultGLMappings
		}
	}
	return out
}
