package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 string form of a Date.
const DateFormat = "2006-01-02"

// Date is a calendar day with no time component. The zero value is the
// zero day and is never a valid record date.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// DateOf returns the calendar day containing t, in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate parses a Date in ISO-8601 form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// time returns the canonical representation of the day, midnight UTC.
func (d Date) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// Time returns the day at midnight UTC.
func (d Date) Time() time.Time { return d.time() }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns the Date i days after d (before, for negative i).
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// DaysSince returns the number of whole days from x to d. Negative when d
// is before x.
func (d Date) DaysSince(x Date) int {
	return int(d.time().Sub(x.time()) / (24 * time.Hour))
}

// SameMonth reports whether d and x fall in the same calendar month.
func (d Date) SameMonth(x Date) bool { return d.y == x.y && d.m == x.m }

// MonthKey returns the calendar month of d as "2006-01", used to scope
// month-bound suppression flags.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.y, int(d.m))
}

func (d Date) String() string { return d.time().Format(DateFormat) }

// MarshalJSON encodes the Date as an ISO-8601 string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO-8601 string into the Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
