package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDateFormat is returned when a stored date string matches none
// of the accepted formats.
var ErrInvalidDateFormat = errors.New("unrecognized date format")

// dateFormats are tried in order by ParseFlexibleDate. Legacy data mixes
// ISO dates with the day-first forms the desktop app accepted.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
}

type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseFlexibleDate parses a date string, trying each accepted format in
// order. It returns ErrInvalidDateFormat when none match.
func ParseFlexibleDate(s string) (Date, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// ISO returns the canonical YYYY-MM-DD storage form.
func (d Date) ISO() string {
	return d.Time.Format("2006-01-02")
}

// Compact returns the YYYYMMDD form used in recurrence instance IDs.
func (d Date) Compact() string {
	return d.Time.Format("20060102")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// YearMonth is a (year, month) value. It replaces the "YYYY-MM" strings the
// data model is keyed by, so month arithmetic never goes through string
// formatting.
type YearMonth struct {
	Year  int
	Month int
}

// NewYearMonth normalizes out-of-range months into the adjacent years.
func NewYearMonth(year, month int) YearMonth {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// YearMonthOf returns the month containing d.
func YearMonthOf(d Date) YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

// ParseMonthKey parses a "YYYY-MM" ledger key.
func ParseMonthKey(key string) (YearMonth, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, key)
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

// Key returns the "YYYY-MM" storage key for this month.
func (m YearMonth) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

func (m YearMonth) String() string {
	return m.Key()
}

// Prev returns the previous calendar month, rolling the year at January.
func (m YearMonth) Prev() YearMonth {
	if m.Month == 1 {
		return YearMonth{Year: m.Year - 1, Month: 12}
	}
	return YearMonth{Year: m.Year, Month: m.Month - 1}
}

// LastDay returns the number of days in the month.
func (m YearMonth) LastDay() int {
	return time.Date(m.Year, time.Month(m.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay bounds day to the length of the month, so a nominal due day of
// 31 lands on the 28th (or 29th) of February.
func (m YearMonth) ClampDay(day int) int {
	if last := m.LastDay(); day > last {
		return last
	}
	return day
}

// First returns the first day of the month as a Date.
func (m YearMonth) First() Date {
	return NewDate(m.Year, m.Month, 1)
}

// Last returns the last day of the month as a Date.
func (m YearMonth) Last() Date {
	return NewDate(m.Year, m.Month, m.LastDay())
}

// Date returns the given day of this month, clamped to the month length.
func (m YearMonth) Date(day int) Date {
	return NewDate(m.Year, m.Month, m.ClampDay(day))
}

// Contains reports whether d falls inside the month.
func (m YearMonth) Contains(d Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// Before reports whether m is strictly earlier than other.
func (m YearMonth) Before(other YearMonth) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}
