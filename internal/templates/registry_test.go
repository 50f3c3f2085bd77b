package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/gl-posting/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simplePattern() LinePattern {
	return LinePattern{
		Name:        "row",
		LinePattern: `^(?P<date>\d{2}/\d{2})\s+(?P<description>.+?)\s+(?P<amount>[\d,]+\.\d{2})$`,
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"truist", "pnc", "sovereign", "bank_of_america", "wells_fargo", "chase"}, reg.Names())
	assert.Equal(t, "generic", reg.Generic().Name)
	assert.NotEmpty(t, reg.Generic().Patterns)

	pnc, ok := reg.Get("PNC")
	require.True(t, ok)
	assert.NotNil(t, pnc.SummaryPatterns.Deposits())
	assert.NotNil(t, pnc.YearInference.Regexp())
	assert.Equal(t, DefaultDepositKeywords, pnc.DepositKeywords)

	sov, _ := reg.Get("sovereign")
	assert.True(t, sov.RequiresOCR)
}

func TestRegistry_Detect(t *testing.T) {
	reg, err := NewRegistry([]BankTemplate{
		{Name: "first", Identifiers: []string{"Community Bank"}, Patterns: []LinePattern{simplePattern()}},
		{Name: "second", Identifiers: []string{"community bank of ohio"}, Patterns: []LinePattern{simplePattern()}},
	}, BankTemplate{Patterns: []LinePattern{simplePattern()}})
	require.NoError(t, err)

	tmpl, id := reg.Detect("Statement from COMMUNITY BANK OF OHIO")
	assert.Equal(t, "first", tmpl.Name, "registration order breaks ties")
	assert.Equal(t, "Community Bank", id)

	tmpl, id = reg.Detect("Some credit union")
	assert.Equal(t, "generic", tmpl.Name)
	assert.Empty(t, id)
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		banks   []BankTemplate
		wantErr string
	}{
		{
			name:    "missing name",
			banks:   []BankTemplate{{Patterns: []LinePattern{simplePattern()}}},
			wantErr: "name is required",
		},
		{
			name:    "no patterns",
			banks:   []BankTemplate{{Name: "x"}},
			wantErr: "at least one line pattern",
		},
		{
			name: "missing amount group",
			banks: []BankTemplate{{Name: "x", Patterns: []LinePattern{{
				Name: "bad", LinePattern: `^(?P<date>\S+) (?P<description>.+)$`,
			}}}},
			wantErr: `missing capture group "amount"`,
		},
		{
			name: "bad regexp",
			banks: []BankTemplate{{Name: "x", Patterns: []LinePattern{{
				Name: "bad", LinePattern: `^(?P<date>`,
			}}}},
			wantErr: "pattern \"bad\"",
		},
		{
			name: "unknown type rule",
			banks: []BankTemplate{{Name: "x", Patterns: []LinePattern{{
				Name: "p", LinePattern: simplePattern().LinePattern, TypeRule: "sideways",
			}}}},
			wantErr: "unknown type rule",
		},
		{
			name: "duplicate name",
			banks: []BankTemplate{
				{Name: "x", Patterns: []LinePattern{simplePattern()}},
				{Name: "X", Patterns: []LinePattern{simplePattern()}},
			},
			wantErr: "registered twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.banks, BankTemplate{Patterns: []LinePattern{simplePattern()}})
			require.Error(t, err)
			var ve *parsererror.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFieldGroupMap(t *testing.T) {
	reg, err := NewRegistry([]BankTemplate{{
		Name: "mapped",
		Patterns: []LinePattern{{
			Name:        "renamed",
			LinePattern: `^(?P<d>\S+)\s+(?P<memo>.+?)\s+(?P<amt>[\d.]+)$`,
			FieldGroups: map[string]string{FieldDate: "d", FieldDescription: "memo", FieldAmount: "amt"},
		}},
	}}, BankTemplate{Patterns: []LinePattern{simplePattern()}})
	require.NoError(t, err)

	tmpl, _ := reg.Get("mapped")
	p := tmpl.Patterns[0]
	assert.Equal(t, "memo", p.Group(FieldDescription))
	assert.Equal(t, FieldCheck, p.Group(FieldCheck))
	assert.Equal(t, TypeAuto, p.TypeRule)
}

func TestLoad_UserFileOverridesAndPrecedes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `
banks:
  - name: local_cu
    identifiers: ["Local Credit Union"]
    patterns:
      - name: row
        line_pattern: '^(?P<date>\d{2}/\d{2})\s+(?P<description>.+?)\s+(?P<amount>[\d,]+\.\d{2})$'
  - name: chase
    identifiers: ["CHASE"]
    patterns:
      - name: row
        line_pattern: '^(?P<date>\d{2}/\d{2})\s+(?P<description>.+?)\s+(?P<amount>[\d,]+\.\d{2})$'
        type_rule: withdrawal
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	reg, err := Load(path)
	require.NoError(t, err)
	names := reg.Names()
	assert.Equal(t, "local_cu", names[0])
	assert.Equal(t, "chase", names[1])
	assert.Equal(t, 1, strings.Count(strings.Join(names, ","), "chase"))

	chase, _ := reg.Get("chase")
	assert.Equal(t, TypeWithdrawal, chase.Patterns[0].TypeRule)
}

func TestLoad_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("banks:\n  - name: x\n    colour: red\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSkips(t *testing.T) {
	tmpl := BankTemplate{SkipSections: []string{"Ending Balance"}}
	assert.True(t, tmpl.Skips("01/31 ENDING BALANCE 1,000.00"))
	assert.False(t, tmpl.Skips("01/31 DEPOSIT 1,000.00"))
}

func TestSkips_SummaryLinesOnly(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	pnc, ok := reg.Get("pnc")
	require.True(t, ok)

	assert.True(t, pnc.Skips("Total deposits and other additions 1,234.00"))
	assert.True(t, pnc.Skips("Total checks and other deductions 310.45"))
	assert.False(t, pnc.Skips("01/05 45.00 TOTAL WINE & MORE 0123"))
}

func TestGLMappings(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	m := reg.GLMappings()
	require.Contains(t, m, "truist")
	assert.Equal(t, "6100", m["truist"].Withdrawals[0].GLCode)
}
