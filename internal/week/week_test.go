package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		week int
		year int
	}{
		{"Monday starting 2024", date(2024, time.January, 1), 1, 2024},
		{"Sunday closing 2023", date(2023, time.December, 31), 52, 2023},
		{"ISO year rollover", date(2024, time.December, 30), 1, 2025},
		{"Saturday in week 1 of 2025", date(2025, time.January, 4), 1, 2025},
		{"mid-year", date(2024, time.July, 17), 29, 2024},
		{"53-week year", date(2020, time.December, 31), 53, 2020},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week, year := Of(tt.ts)
			assert.Equal(t, tt.week, week)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestOf_TruncatesToUTCDate(t *testing.T) {
	// Just after local midnight on Jan 1st in UTC+2 it is still
	// Dec 31st in UTC, so the UTC date decides the week.
	local := time.Date(2024, time.January, 1, 0, 30, 0, 0, time.FixedZone("EET", 2*60*60))

	week, year := Of(local)

	assert.Equal(t, 52, week)
	assert.Equal(t, 2023, year)
}
