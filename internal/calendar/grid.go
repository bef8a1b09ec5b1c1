package calendar

import (
	"time"

	"rdmcal/internal/model"
)

// Grid is one month laid out for display: leading empty cells up to the
// weekday of the 1st, then one cell per day.
type Grid struct {
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	WeekStart time.Weekday `json:"week_start"`
	Cells     []Cell       `json:"cells"`
}

// Cell is a single grid slot. Empty cells only pad the first week.
type Cell struct {
	Empty bool       `json:"empty,omitempty"`
	Day   int        `json:"day,omitempty"`
	Date  model.Date `json:"date,omitzero"`
	Today bool       `json:"today,omitempty"`

	// Markers holds the distinct tags of the day's events, first seen first.
	Markers []Marker `json:"markers,omitempty"`
	// Events is the full detail shown on hover / selection.
	Events []model.Summary `json:"events,omitempty"`
}

// Marker is the colored dot for one tag.
type Marker struct {
	Tag string `json:"tag"`
	Hue int    `json:"hue"`
}

// ProjectOptions tunes Project.
type ProjectOptions struct {
	// WeekStart is the first column of the grid; Sunday by default.
	WeekStart time.Weekday
	// Today marks the matching cell. If zero, the current date in Location
	// (time.Local when nil) is used.
	Today    model.Date
	Location *time.Location
}

// GridWindow is the span of days a month grid can show.
func GridWindow(year int, month time.Month) Window {
	first := model.NewDate(year, month, 1)
	return Window{From: first, To: first.AddDays(DaysIn(year, month) - 1)}
}

// DaysIn returns the number of days in the month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Project lays out buckets for year/month. It reads only the dates of that
// month from buckets and always builds the grid from scratch.
func Project(buckets DayBuckets, year int, month time.Month, opts ProjectOptions) Grid {
	today := opts.Today
	if today.IsZero() {
		loc := opts.Location
		if loc == nil {
			loc = time.Local
		}
		today = model.DateOf(time.Now().In(loc))
	}

	first := model.NewDate(year, month, 1)
	// Normalize in case month was out of range (e.g. 13).
	year, month = first.Year, first.Month

	offset := (int(first.Weekday()) - int(opts.WeekStart) + 7) % 7
	days := DaysIn(year, month)

	g := Grid{
		Year:      year,
		Month:     month,
		WeekStart: opts.WeekStart,
		Cells:     make([]Cell, 0, offset+days),
	}
	for i := 0; i < offset; i++ {
		g.Cells = append(g.Cells, Cell{Empty: true})
	}
	for day := 1; day <= days; day++ {
		d := model.NewDate(year, month, day)
		summaries := buckets[d]
		g.Cells = append(g.Cells, Cell{
			Day:     day,
			Date:    d,
			Today:   d == today,
			Markers: markersFor(summaries),
			Events:  copySummaries(summaries),
		})
	}
	return g
}

// Weeks splits the cells into rows of seven, padding the last row.
func (g Grid) Weeks() [][]Cell {
	rows := make([][]Cell, 0, 6)
	for i := 0; i < len(g.Cells); i += 7 {
		end := i + 7
		row := make([]Cell, 0, 7)
		if end > len(g.Cells) {
			row = append(row, g.Cells[i:]...)
			for len(row) < 7 {
				row = append(row, Cell{Empty: true})
			}
		} else {
			row = append(row, g.Cells[i:end]...)
		}
		rows = append(rows, row)
	}
	return rows
}

// Weekdays returns the column headers starting at weekStart.
func Weekdays(weekStart time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = time.Weekday((int(weekStart) + i) % 7)
	}
	return out
}

func markersFor(summaries []model.Summary) []Marker {
	if len(summaries) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	out := make([]Marker, 0)
	for _, s := range summaries {
		for _, t := range s.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, Marker{Tag: t, Hue: Hue(t)})
		}
	}
	return out
}

func copySummaries(in []model.Summary) []model.Summary {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Summary, len(in))
	for i, s := range in {
		out[i] = cloneSummary(s)
	}
	return out
}
