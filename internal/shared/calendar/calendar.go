// Package calendar works on UTC calendar days. Every time.Time it returns is
// midnight UTC; time-of-day and local zones never leak into day arithmetic.
package calendar

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// ParseDay parses a strict YYYY-MM-DD string. Month and day may be one or two
// digits; out-of-range components are rejected rather than rolled over.
func ParseDay(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, ErrInvalidDate
	}

	year, ok := parseDigits(parts[0], 4, 4)
	if !ok {
		return time.Time{}, ErrInvalidDate
	}
	month, ok := parseDigits(parts[1], 1, 2)
	if !ok || month < 1 || month > 12 {
		return time.Time{}, ErrInvalidDate
	}
	day, ok := parseDigits(parts[2], 1, 2)
	if !ok || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, ErrInvalidDate
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func parseDigits(s string, minLen, maxLen int) (int, bool) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Normalize projects an instant onto its UTC calendar day.
func Normalize(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return Normalize(time.Now())
}

func Format(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

func IsWeekend(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// HolidaySet is keyed by Format(day).
type HolidaySet map[string]struct{}

func NewHolidaySet(days ...time.Time) HolidaySet {
	set := make(HolidaySet, len(days))
	for _, d := range days {
		set.Add(d)
	}
	return set
}

func (s HolidaySet) Add(day time.Time) {
	s[Format(day)] = struct{}{}
}

func (s HolidaySet) Contains(day time.Time) bool {
	_, ok := s[Format(day)]
	return ok
}

// WorkingDays counts days in [start, end] that are neither weekend days nor
// holidays. It returns 0 when start is after end.
func WorkingDays(start, end time.Time, holidays HolidaySet) int {
	start, end = Normalize(start), Normalize(end)
	if start.After(end) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWeekend(d) || holidays.Contains(d) {
			continue
		}
		count++
	}
	return count
}

// Spans reports whether day falls inside the inclusive range [start, end].
func Spans(start, end, day time.Time) bool {
	day = Normalize(day)
	return !day.Before(Normalize(start)) && !day.After(Normalize(end))
}
