package classify_test

import (
	"testing"
	"time"

	"fjacquet/gl-posting/cmd/classify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCommand_Metadata(t *testing.T) {
	assert.Equal(t, "classify", classify.Cmd.Use)
	assert.Contains(t, classify.Cmd.Short, "Classify one transaction")
	assert.NotNil(t, classify.Cmd.RunE)
}

func TestClassifyCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
	}{
		{"description", "d"},
		{"amount", "a"},
		{"date", "t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := classify.Cmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.NotEmpty(t, flag.Usage)
		})
	}
}

func TestLine(t *testing.T) {
	day := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr bool
	}{
		{name: "withdrawal", amount: "-15.00", want: "2025-03-04 SERVICE FEE -15.00"},
		{name: "deposit", amount: "1,250.5", want: "2025-03-04 SERVICE FEE +1250.50"},
		{name: "trailing minus", amount: "15.00-", want: "2025-03-04 SERVICE FEE -15.00"},
		{name: "not a number", amount: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := classify.Line(day, "SERVICE FEE", tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
