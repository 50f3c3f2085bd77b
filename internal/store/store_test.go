package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)
}

func TestBuiltin(t *testing.T) {
	data, err := Builtin()
	require.NoError(t, err)

	assert.NotEmpty(t, data.Rules)
	assert.NotEmpty(t, data.Keywords)
	assert.NotEmpty(t, data.Vendors)
	assert.NotEmpty(t, data.Customers)
	assert.NotEmpty(t, data.Accounts)

	var serviceFee *models.FixedRule
	for i := range data.Rules {
		if data.Rules[i].Phrase == "service fee" {
			serviceFee = &data.Rules[i]
		}
	}
	require.NotNil(t, serviceFee)
	assert.Equal(t, "6100", serviceFee.GLCode)
	assert.Equal(t, models.ModuleCD, serviceFee.Module)
	assert.GreaterOrEqual(t, serviceFee.Confidence, 0.95)

	// Grants come before customers so they win on shared aliases.
	assert.Equal(t, models.PayerGrant, data.Customers[0].Kind)

	for _, acc := range data.Accounts {
		assert.Len(t, acc.Code, 4, "account %q", acc.Name)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "vendors.yaml")
	writeFile(t, testFile, "vendors: []")

	s := NewReferenceStore(Files{Directory: dir}, &logging.MockLogger{})

	file, err := s.FindConfigFile(testFile)
	assert.NoError(t, err)
	assert.Equal(t, testFile, file)

	file, err = s.FindConfigFile("vendors.yaml")
	assert.NoError(t, err)
	assert.Equal(t, testFile, file)

	_, err = s.FindConfigFile(filepath.Join(dir, "nonexistent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = s.FindConfigFile("")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_OverridesSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vendors.yaml"), `vendors:
  - name: Acme Janitorial
    aliases: ["acme"]
    category: maintenance
    gl_code: "6900"
    fund_code: "1000"
`)
	// Bare list form is accepted too.
	writeFile(t, filepath.Join(dir, "chart.yaml"), `- code: "6900"
  name: Repairs
- code: "1070"
  name: Cash
`)

	logger := logging.NewMockLogger()
	s := NewReferenceStore(DefaultFiles(dir), logger)
	data, err := s.Load()
	require.NoError(t, err)

	require.Len(t, data.Vendors, 1)
	assert.Equal(t, "Acme Janitorial", data.Vendors[0].Name)
	assert.Equal(t, []string{"acme"}, data.Vendors[0].Aliases)
	require.Len(t, data.Accounts, 2)
	assert.Equal(t, "6900", data.Accounts[0].Code)

	builtin, err := Builtin()
	require.NoError(t, err)
	assert.Equal(t, builtin.Rules, data.Rules, "sections without a file keep built-in data")
	assert.Equal(t, builtin.Keywords, data.Keywords)

	assert.True(t, logger.HasEntry("INFO", "Loaded reference file"))
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules.yaml"), "rules: [this is: not: valid")

	s := NewReferenceStore(DefaultFiles(dir), &logging.MockLogger{})
	_, err := s.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules")
}

func TestMockReferenceStore(t *testing.T) {
	m := &MockReferenceStore{Data: models.ReferenceData{
		Vendors: []models.Vendor{{Name: "Staples", GLCode: "7320"}},
	}}

	data, err := m.Load()
	require.NoError(t, err)
	data.Vendors[0].Name = "changed"
	assert.Equal(t, "Staples", m.Data.Vendors[0].Name, "Load returns a copy")

	m.LoadError = errors.New("boom")
	_, err = m.Load()
	assert.Error(t, err)
	assert.Equal(t, 2, m.Loads)
}
