package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	basicDateLayout = "20060102"
	displayLayout   = "January 2, 2006"
)

// Date is a calendar date without time of day or zone. It is comparable and
// can be used directly as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes the given components (e.g. day 32 rolls into the next
// month) the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp, in which case
// only the date part is kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, errors.New("empty date")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays moves d by n calendar days, rolling over month and year ends.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is later than o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// Weekday of d.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// MarshalText encodes d as YYYY-MM-DD, which also makes Date usable as a
// JSON object key.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Basic formats d as YYYYMMDD, the iCalendar DATE form.
func (d Date) Basic() string {
	return d.Time().Format(basicDateLayout)
}

// Display formats d for humans, e.g. "March 30, 2024".
func (d Date) Display() string {
	return d.Time().Format(displayLayout)
}

// Occurrence is the next instance of an event: its inclusive date span and
// logistics.
type Occurrence struct {
	From Date
	// To is zero for single-day events.
	To Date

	Link     string
	Location string
	Info     string
}

// End returns the last day of the occurrence (inclusive).
func (o Occurrence) End() Date {
	if o.To.IsZero() {
		return o.From
	}
	return o.To
}

// Contains reports whether d falls within [From, End()].
func (o Occurrence) Contains(d Date) bool {
	return !d.Before(o.From) && !d.After(o.End())
}

// Event is the canonical, normalized form of one conference record.
type Event struct {
	Name string
	Link string
	// Tags is deduplicated and keeps first-seen order.
	Tags []string

	Occurrence Occurrence
}

// EffectiveLink prefers the occurrence link and falls back to the event link.
func (e Event) EffectiveLink() string {
	if e.Occurrence.Link != "" {
		return e.Occurrence.Link
	}
	return e.Link
}

// HasTag reports whether tag is one of the event's tags (case-sensitive).
func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DateRange renders the occurrence span for display: a single date for
// one-day events, "A - B" otherwise.
func (e Event) DateRange() string {
	from := e.Occurrence.From.Display()
	to := e.Occurrence.End().Display()
	if from == to {
		return from
	}
	return from + " - " + to
}

// Summary is what a single day in the calendar shows for one event.
type Summary struct {
	Name     string   `json:"name"`
	Link     string   `json:"link"`
	Location string   `json:"location,omitempty"`
	Info     string   `json:"info,omitempty"`
	Tags     []string `json:"tags"`
}

// SummaryOf builds the day summary for e. Tags are copied.
func SummaryOf(e Event) Summary {
	tags := make([]string, len(e.Tags))
	copy(tags, e.Tags)
	return Summary{
		Name:     e.Name,
		Link:     e.EffectiveLink(),
		Location: e.Occurrence.Location,
		Info:     e.Occurrence.Info,
		Tags:     tags,
	}
}
