package generators

import (
	"strings"
	"time"
)

// PostDateLayout renders dates as "January 02, 2006 (Monday)".
const PostDateLayout = "January 02, 2006 (Monday)"

var timeframeDays = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
}

// Posting frequencies approximated as a fixed gap in days.
var frequencyStep = map[string]int{
	"daily":   1,
	"3x week": 2,
	"2x week": 3,
	"weekly":  7,
}

// PostDates returns the posting dates from start through the end of the
// timeframe, both ends inclusive. Unknown values fall back to a month and a
// two-day gap.
func PostDates(frequency, timeframe string, start time.Time) []time.Time {
	days, ok := timeframeDays[strings.ToLower(strings.TrimSpace(timeframe))]
	if !ok {
		days = timeframeDays["month"]
	}

	step, ok := frequencyStep[strings.ToLower(strings.TrimSpace(frequency))]
	if !ok {
		step = frequencyStep["3x week"]
	}

	end := start.AddDate(0, 0, days)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, step) {
		dates = append(dates, d)
	}

	return dates
}

// FormatPostDate formats t with PostDateLayout.
func FormatPostDate(t time.Time) string {
	return t.Format(PostDateLayout)
}
