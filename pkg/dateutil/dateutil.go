package dateutil

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in ledger files and storage.
const DateLayout = "2006-01-02"

// Ledger entries recorded without a month or day are placed mid-year.
const (
	DefaultMonth = 6
	DefaultDay   = 15
)

// TransactionDate builds the booking date of a ledger entry. A missing month or
// day falls back to DefaultMonth/DefaultDay, and the day is clamped to the month.
func TransactionDate(year int, month, day *int) time.Time {
	m := DefaultMonth
	if month != nil && *month >= 1 && *month <= 12 {
		m = *month
	}
	d := DefaultDay
	if day != nil && *day >= 1 {
		d = *day
	}
	if last := DaysInMonth(year, time.Month(m)); d > last {
		d = last
	}
	return time.Date(year, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsLeapYear checks if a year is a leap year
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns the number of days in a given year
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// InYear reports whether t falls within the given calendar year.
func InYear(t time.Time, year int) bool {
	return t.Year() == year
}

// EndOfYear returns the last day of the year for a given date
func EndOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 12, 31, 23, 59, 59, 999999999, date.Location())
}

// BeginningOfYear returns the first day of the year for a given date
func BeginningOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 1, 1, 0, 0, 0, 0, date.Location())
}
