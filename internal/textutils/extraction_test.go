package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		phrase string
		want   bool
	}{
		{"exact", "SERVICE FEE", "service fee", true},
		{"inside words", "COFFEE SHOP", "fee", false},
		{"prefix of word", "INTERESTING", "interest", false},
		{"trailing symbol", "CHECK #1042", "check #", true},
		{"second occurrence on boundary", "FEEDBACK FEE", "fee", true},
		{"punctuation boundary", "PAYROLL/ADP", "adp", true},
		{"empty phrase", "anything", "", false},
		{"phrase longer than text", "FEE", "service fee", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPhrase(tt.text, tt.phrase))
		})
	}
}

func TestNormalization(t *testing.T) {
	assert.Equal(t, "ACH DEBIT ADP PAYROLL", NormalizeDescription("  ach debit\tADP   payroll "))
	assert.Equal(t, "office depot #123 store", NormalizeForMatch("OFFICE-DEPOT #123, Store"))
	assert.Equal(t, "ach adp payroll", HistoryKey("ACH ADP PAYROLL 0012345678"))
	assert.Equal(t, []string{"city", "of", "springfield"}, Tokens("City of Springfield."))
}

func TestIsRefund(t *testing.T) {
	assert.True(t, IsRefund("VENDOR REFUND CHECK"))
	assert.True(t, IsRefund("Credit Memo Staples"))
	assert.True(t, IsRefund("ACH REVERSAL"))
	assert.False(t, IsRefund("RETURNED ITEM FEE"))
	assert.False(t, IsRefund("DEPOSIT"))
}

func TestExtractCheckNumber(t *testing.T) {
	assert.Equal(t, "1042", ExtractCheckNumber("CHECK #1042"))
	assert.Equal(t, "5521", ExtractCheckNumber("Chk No. 5521 Acme"))
	assert.Equal(t, "20031", ExtractCheckNumber("CHECK 20031"))
	assert.Equal(t, "", ExtractCheckNumber("CHECKING TRANSFER"))
	assert.Equal(t, "", ExtractCheckNumber("VENDOR REFUND CHECK"))
}
