package generators_test

import (
	"testing"
	"time"

	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostDates_Counts(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency string
		timeframe string
		want      int
	}{
		{"daily", "week", 8},
		{"weekly", "week", 2},
		{"3x week", "month", 16},
		{"2x week", "month", 11},
		{"weekly", "quarter", 13},
		{"Daily", "MONTH", 31},
		{"hourly", "year", 16}, // Fallback: every 2 days for 30 days.
	}
	for _, tt := range tests {
		t.Run(tt.frequency+"/"+tt.timeframe, func(t *testing.T) {
			dates := generators.PostDates(tt.frequency, tt.timeframe, start)
			require.Len(t, dates, tt.want)
			assert.Equal(t, start, dates[0])
		})
	}
}

func TestPostDates_InclusiveEnd(t *testing.T) {
	start := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	dates := generators.PostDates("weekly", "week", start)
	require.Len(t, dates, 2)
	assert.Equal(t, start.AddDate(0, 0, 7), dates[1])
}

func TestFormatPostDate(t *testing.T) {
	d := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "March 04, 2024 (Monday)", generators.FormatPostDate(d))
}
