package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		layout string
	}{
		{in: "01/15/2024", want: "2024-01-15", layout: "1/2/2006"},
		{in: "1/5/2024", want: "2024-01-05", layout: "1/2/2006"},
		{in: "2024-03-09", want: "2024-03-09", layout: "2006-01-02"},
		{in: "13/02/2024", want: "2024-02-13", layout: "2/1/2006"},
		{in: "03/04/24", want: "2024-03-04", layout: "1/2/06"},
		{in: "Mar 4, 2024", want: "2024-03-04", layout: "Jan 2, 2006"},
		{in: "4 March 2024", want: "2024-03-04", layout: "2 January 2006"},
		{in: "  01/15/2024 ", want: "2024-01-15", layout: "1/2/2006"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, layout, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ToISODate(got))
			assert.Equal(t, tt.layout, layout)
		})
	}
}

func TestParseDate_PreferredFirst(t *testing.T) {
	got, layout, err := ParseDate("03/04/2024", "02/01/2006")
	require.NoError(t, err)
	assert.Equal(t, "02/01/2006", layout)
	assert.Equal(t, "2024-04-03", ToISODate(got))
}

func TestParseDate_Failures(t *testing.T) {
	for _, in := range []string{"", "yesterday", "99/99/2024"} {
		_, _, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestPeriod_ResolveYear(t *testing.T) {
	crossing := Period{
		Start: time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, crossing.Valid())
	assert.Equal(t, 2023, crossing.ResolveYear(time.December))
	assert.Equal(t, 2024, crossing.ResolveYear(time.January))

	single := Period{
		Start: time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2022, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 2022, single.ResolveYear(time.March))
	assert.False(t, Period{}.Valid())
}

func TestInferYear(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2021, InferYear("Statement Date 03/31/2021 page 1", now))
	assert.Equal(t, 2019, InferYear("Annual summary 2019", now))
	assert.Equal(t, 2026, InferYear("no year here", now))
}

func TestWithYear(t *testing.T) {
	assert.Equal(t, "01/15/2024", WithYear("01/15", 2024))
	assert.Equal(t, "1-5-2023", WithYear("1-5", 2023))
	assert.Equal(t, "01/15/2020", WithYear("01/15/2020", 2024))
	assert.False(t, HasYear("12/31"))
	assert.True(t, HasYear("12/31/2024"))
	assert.Equal(t, time.December, MonthOf("12/31"))
	assert.Equal(t, time.Month(0), MonthOf("2024-12-31"))
}
