package worktime

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"09:05", 545},
		{"23:59", 1439},
	}
	for _, tt := range tests {
		got, err := TimeToMinutes(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTimeToMinutes_Invalid(t *testing.T) {
	for _, in := range []string{"", "9:00", "24:00", "12:60", "ab:cd", "1200", "12:5", "+9:30", "-0:00", "+0:+5", "09:-1", " 9:00"} {
		_, err := TimeToMinutes(in)
		assert.ErrorIs(t, err, ErrInvalidClock, in)
	}
}

func TestCalculateWorkHours(t *testing.T) {
	tests := []struct {
		name     string
		in, out  string
		expected string
	}{
		{"regular day", "09:00", "18:00", "9"},
		{"crosses midnight", "22:00", "06:00", "8"},
		{"equal times are zero, not a full day", "09:00", "09:00", "0"},
		{"rounds to one decimal", "09:00", "09:20", "0.3"},
		{"half rounds away from zero", "09:00", "09:09", "0.2"},
		{"three minutes rounds up", "09:00", "09:03", "0.1"},
		{"two minutes rounds down", "09:00", "09:02", "0"},
		{"one minute before midnight wrap", "09:01", "09:00", "24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateWorkHours(tt.in, tt.out)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got)
		})
	}
}

func TestCalculateWorkHours_InvalidInput(t *testing.T) {
	_, err := CalculateWorkHours("09:00", "25:00")
	assert.ErrorIs(t, err, ErrInvalidClock)

	_, err = CalculateWorkHours("nine", "18:00")
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestFormatAndParseHours(t *testing.T) {
	h, err := CalculateWorkHours("09:00", "18:00")
	require.NoError(t, err)
	assert.Equal(t, "9.0시간", FormatHours(h))
	assert.Equal(t, "7.5시간", FormatHours(decimal.RequireFromString("7.5")))

	h, err = ParseHours("12.3시간")
	require.NoError(t, err)
	assert.True(t, h.Equal(decimal.RequireFromString("12.3")))
}
