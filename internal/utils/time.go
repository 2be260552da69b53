package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/constants"
)

// ErrInvalidDate is returned when input is not an ISO date or month key.
var ErrInvalidDate = errors.New("invalid date")

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// ParseDate parses an ISO date (YYYY-MM-DD) as midnight UTC.
// Calendar arithmetic is done in UTC so DST shifts never move a date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDate, date)
	}
	return t, nil
}

// ParseMonth parses a month key (YYYY-MM) as the first of that month, UTC.
func ParseMonth(monthKey string) (time.Time, error) {
	t, err := time.Parse(constants.MonthFormat, monthKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidDate, monthKey)
	}
	return t, nil
}

// IsDate reports whether s is a valid ISO date.
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// FormatDate formats t's calendar date as YYYY-MM-DD, ignoring its location.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) string {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Format(constants.DateFormat)
}

// AddDays shifts an ISO date by n calendar days. Invalid input is returned unchanged.
func AddDays(date string, n int) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return FormatDate(t.AddDate(0, 0, n))
}

// WeekKey returns the ISO date of the Sunday starting date's week.
// Invalid input yields an empty key.
func WeekKey(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return FormatDate(t.AddDate(0, 0, -int(t.Weekday())))
}

// MonthKey returns the YYYY-MM month of date. Invalid input yields an empty key.
func MonthKey(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return t.Format(constants.MonthFormat)
}

// WeekDates returns the seven dates of the week starting on weekKey.
func WeekDates(weekKey string) []string {
	start, err := ParseDate(weekKey)
	if err != nil {
		return nil
	}
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = FormatDate(start.AddDate(0, 0, i))
	}
	return dates
}

// IsWeekKey reports whether s is an ISO date falling on a Sunday.
func IsWeekKey(s string) bool {
	t, err := ParseDate(s)
	return err == nil && t.Weekday() == time.Sunday
}

// DaysInMonth returns the number of days in the month identified by monthKey.
func DaysInMonth(monthKey string) int {
	t, err := ParseMonth(monthKey)
	if err != nil {
		return 0
	}
	return t.AddDate(0, 1, -1).Day()
}

// MonthDay returns the ISO date of day d in monthKey.
func MonthDay(monthKey string, d int) string {
	t, err := ParseMonth(monthKey)
	if err != nil {
		return ""
	}
	return FormatDate(t.AddDate(0, 0, d-1))
}

// DateRange returns every ISO date from start through end, inclusive.
// An inverted or invalid range is empty.
func DateRange(start, end string) []string {
	s, err := ParseDate(start)
	if err != nil {
		return nil
	}
	e, err := ParseDate(end)
	if err != nil || e.Before(s) {
		return nil
	}
	var dates []string
	for t := s; !t.After(e); t = t.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(t))
	}
	return dates
}
