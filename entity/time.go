package entity

import (
	"fmt"
	"time"
)

// =============================================================================
// CALENDAR DATE - Day-granular time abstraction
// =============================================================================

// CalendarDate is a single calendar day. All absence bookkeeping happens at
// day granularity; half-days are expressed through Duration, never through
// the date itself.
type CalendarDate struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) CalendarDate {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() CalendarDate {
	return DateOf(time.Now())
}

// ParseDate accepts the date shapes seen in upstream payloads: ISO
// (2006-01-02), the outbound dd-mm-yyyy form, and RFC3339 timestamps.
func ParseDate(s string) (CalendarDate, error) {
	for _, layout := range []string{"2006-01-02", "02-01-2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return CalendarDate{}, fmt.Errorf("unrecognized date %q", s)
}

// Comparison
func (d CalendarDate) Before(other CalendarDate) bool { return d.normalize().Before(other.normalize()) }
func (d CalendarDate) Equal(other CalendarDate) bool  { return d.normalize().Equal(other.normalize()) }
func (d CalendarDate) After(other CalendarDate) bool  { return d.normalize().After(other.normalize()) }
func (d CalendarDate) BeforeOrEqual(other CalendarDate) bool {
	return d.Before(other) || d.Equal(other)
}
func (d CalendarDate) AfterOrEqual(other CalendarDate) bool {
	return d.After(other) || d.Equal(other)
}

func (d CalendarDate) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d CalendarDate) AddDays(n int) CalendarDate {
	return CalendarDate{Time: d.Time.AddDate(0, 0, n)}
}

// Properties
func (d CalendarDate) Year() int         { return d.Time.Year() }
func (d CalendarDate) Month() time.Month { return d.Time.Month() }
func (d CalendarDate) Day() int          { return d.Time.Day() }
func (d CalendarDate) IsZero() bool      { return d.Time.IsZero() }

// String returns the ISO form used internally and in logs.
func (d CalendarDate) String() string { return d.normalize().Format("2006-01-02") }

// DMY returns the dd-mm-yyyy form required by outbound submission payloads.
func (d CalendarDate) DMY() string { return d.normalize().Format("02-01-2006") }

// =============================================================================
// DATE UTILITIES
// =============================================================================

// InclusiveDays returns the calendar-day count between from and to, counting
// both endpoints. Weekends are NOT excluded: a Friday-to-Monday absence is
// four days. Order of arguments does not matter.
func InclusiveDays(from, to CalendarDate) int {
	a, b := from.normalize(), to.normalize()
	if b.Before(a) {
		a, b = b, a
	}
	return int(b.Sub(a).Hours()/24) + 1
}

// MinMaxDates returns the earliest and latest of a non-empty date slice.
func MinMaxDates(dates []CalendarDate) (min, max CalendarDate) {
	min, max = dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max
}

// Timestamp formats a wall-clock instant the way outbound payloads carry
// timestamps (yyyy-mm-ddThh:mm:ss, no zone suffix).
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}
