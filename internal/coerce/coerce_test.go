package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" -42 ", -42, false},
		{"1.5", 0, true},
		{"x", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInt(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFloat(t *testing.T) {
	got, err := ParseFloat(" 2.5 ")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	_, err = ParseFloat("1,5")
	assert.Error(t, err)

	_, err = ParseFloat("   ")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"123", 123, false},
		{"$1,234.50", 1234.50, false},
		{"(12.00)", -12, false},
		{"€ 7", 7, false},
		{"1e3", 1000, false},
		{"12abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "T", "yes", "Y", "1"} {
		got, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, got, s)
	}
	for _, s := range []string{"false", "F", "no", "n", "0"} {
		got, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, got, s)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"3/5/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05 10:30:00", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
		{"Mar 5, 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseDate("not a date")
	assert.Error(t, err)
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	got, err := ParseDate("1/2/99")
	require.NoError(t, err)
	assert.Equal(t, 1999, got.Year())

	got, err = ParseDate("1/2/05")
	require.NoError(t, err)
	assert.Equal(t, 2005, got.Year())
}

func TestParseDateLayout(t *testing.T) {
	got, err := ParseDateLayout("05.03.2024", "02.01.2006")
	require.NoError(t, err)
	assert.Equal(t, time.March, got.Month())

	_, err = ParseDateLayout("2024", "02.01.2006")
	assert.Error(t, err)
}
