// Package calendar provides pure business-day arithmetic over an injected
// weekend/holiday calendar. The default calendar counts Monday through Friday
// as business days with no holiday exclusions.
package calendar

import "time"

// Calendar defines which calendar days count as business days. The zero value
// is not usable; construct one via Default or NewWithHolidays. A Calendar is
// immutable after construction and safe for concurrent use.
type Calendar struct {
	weekend  map[time.Weekday]bool
	holidays map[string]bool // keyed by YYYY-MM-DD
}

// Default returns a Monday-Friday calendar with no holidays.
func Default() Calendar {
	return NewWithHolidays(nil)
}

// NewWithHolidays returns a Monday-Friday calendar that additionally excludes
// the given dates. Time-of-day and zone on holiday entries are ignored.
func NewWithHolidays(holidays []time.Time) Calendar {
	c := Calendar{
		weekend: map[time.Weekday]bool{
			time.Saturday: true,
			time.Sunday:   true,
		},
		holidays: make(map[string]bool),
	}
	for _, h := range holidays {
		c.holidays[h.Format("2006-01-02")] = true
	}
	return c
}

// IsBusinessDay reports whether d falls on a business day.
func (c Calendar) IsBusinessDay(d time.Time) bool {
	if c.weekend[d.Weekday()] {
		return false
	}
	return !c.holidays[d.Format("2006-01-02")]
}

// BusinessDaysBetween counts the business-day steps from start to end: the
// number of business days in the half-open interval (start, end]. A negative
// count is returned when end precedes start. Both arguments are truncated to
// day precision before counting.
func (c Calendar) BusinessDaysBetween(start, end time.Time) int {
	start = Truncate(start)
	end = Truncate(end)

	if end.Before(start) {
		return -c.BusinessDaysBetween(end, start)
	}

	count := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// AddBusinessDays advances d by n business days, skipping weekends and
// holidays. A negative n subtracts.
func (c Calendar) AddBusinessDays(d time.Time, n int) time.Time {
	if n < 0 {
		return c.SubtractBusinessDays(d, -n)
	}
	d = Truncate(d)
	for i := 0; i < n; i++ {
		d = d.AddDate(0, 0, 1)
		for !c.IsBusinessDay(d) {
			d = d.AddDate(0, 0, 1)
		}
	}
	return d
}

// SubtractBusinessDays moves d backward by n business days.
func (c Calendar) SubtractBusinessDays(d time.Time, n int) time.Time {
	if n < 0 {
		return c.AddBusinessDays(d, -n)
	}
	d = Truncate(d)
	for i := 0; i < n; i++ {
		d = d.AddDate(0, 0, -1)
		for !c.IsBusinessDay(d) {
			d = d.AddDate(0, 0, -1)
		}
	}
	return d
}

// Truncate drops the time-of-day component, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
