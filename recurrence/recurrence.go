// Package recurrence computes the calendar dates of recurring tournaments.
package recurrence

import (
	"time"

	"github.com/Dosada05/tcg-tournaments/models"
)

// monthlyAnchorDay is the highest day that exists in every month.
const monthlyAnchorDay = 28

// NextOccurrence returns the first date strictly after today that matches the cadence.
// ok is false when the day fields do not fit the frequency.
func NextOccurrence(freq models.Frequency, dayOfWeek, dayOfMonth *int, today models.Date) (next models.Date, ok bool) {
	switch freq {
	case models.FrequencyWeekly:
		if !validWeekday(dayOfWeek) {
			return models.Date{}, false
		}
		diff := weekdayDiff(*dayOfWeek, today)
		if diff == 0 {
			diff = 7
		}
		return today.AddDays(diff), true

	case models.FrequencyBiweekly:
		if !validWeekday(dayOfWeek) {
			return models.Date{}, false
		}
		diff := weekdayDiff(*dayOfWeek, today)
		if diff == 0 {
			diff = 14
		} else {
			diff += 7
		}
		return today.AddDays(diff), true

	case models.FrequencyMonthly:
		if dayOfMonth == nil || *dayOfMonth < 1 || *dayOfMonth > 31 {
			return models.Date{}, false
		}
		year, month := today.Year(), today.Month()
		anchor := models.NewDate(year, month, min(*dayOfMonth, monthlyAnchorDay))
		if !anchor.After(today.Time) {
			year, month = addMonth(year, month)
		}
		day := min(*dayOfMonth, daysIn(year, month))
		return models.NewDate(year, month, day), true
	}
	return models.Date{}, false
}

func validWeekday(d *int) bool {
	return d != nil && *d >= 0 && *d <= 6
}

func weekdayDiff(target int, today models.Date) int {
	return (target - int(today.Weekday()) + 7) % 7
}

func addMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
