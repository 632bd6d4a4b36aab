// Package week maps timestamps to ISO-8601 week numbers.
package week

import "time"

// Of returns the ISO-8601 week number and week-numbering year for t.
// The timestamp is truncated to its UTC calendar date before the
// calculation, so callers near UTC midnight may land in a different week
// than their local date suggests. Weeks start on Monday; week 1 is the
// week containing the year's first Thursday.
func Of(t time.Time) (weekNumber, year int) {
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	// Shift to the Thursday of the same ISO week. Its calendar year is the
	// week-numbering year, which differs from d's around New Year.
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7 // ISO counts Sunday as 7
	}
	thursday := d.AddDate(0, 0, 4-weekday)

	weekNumber = (thursday.YearDay() + 6) / 7
	return weekNumber, thursday.Year()
}
