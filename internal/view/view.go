package view

import (
	"time"

	"rdmcal/internal/calendar"
	"rdmcal/internal/events"
	"rdmcal/internal/filter"
	"rdmcal/internal/metrics"
	"rdmcal/internal/model"
)

// Msg is a user interaction applied through Update.
type Msg interface{ isMsg() }

type (
	// ToggleTag flips one tag in the filter.
	ToggleTag struct{ Tag string }
	// PrevMonth / NextMonth move the reference month by one.
	PrevMonth struct{}
	NextMonth struct{}
	// GoTo jumps to a given month.
	GoTo struct {
		Year  int
		Month time.Month
	}
)

func (ToggleTag) isMsg() {}
func (PrevMonth) isMsg() {}
func (NextMonth) isMsg() {}
func (GoTo) isMsg()      {}

// State is the whole interactive session: the filter and the month being
// viewed. Update never mutates its receiver.
type State struct {
	Filter *filter.State
	Year   int
	Month  time.Month
}

// New starts a session on the month containing today with every tag active.
func New(cat events.Catalog, today model.Date) State {
	return State{
		Filter: filter.New(cat.Tags),
		Year:   today.Year,
		Month:  today.Month,
	}
}

// Update returns the state after msg.
func (s State) Update(msg Msg) State {
	next := State{Filter: s.Filter.Clone(), Year: s.Year, Month: s.Month}
	switch m := msg.(type) {
	case ToggleTag:
		next.Filter.Toggle(m.Tag)
	case PrevMonth:
		next.Year, next.Month = shift(s.Year, s.Month, -1)
	case NextMonth:
		next.Year, next.Month = shift(s.Year, s.Month, 1)
	case GoTo:
		next.Year, next.Month = shift(m.Year, m.Month, 0)
	}
	return next
}

// Grid recomputes the month grid for the current state from scratch.
func (s State) Grid(evs []model.Event, opts calendar.ProjectOptions) calendar.Grid {
	buckets := calendar.Build(evs, s.Filter.Predicate(), calendar.GridWindow(s.Year, s.Month))
	g := calendar.Project(buckets, s.Year, s.Month, opts)
	metrics.GridProjected()
	return g
}

// Day returns the detail list for one date under the current filter.
func (s State) Day(evs []model.Event, d model.Date) []model.Summary {
	return calendar.Build(evs, s.Filter.Predicate(), calendar.Window{From: d, To: d})[d]
}

func shift(year int, month time.Month, delta int) (int, time.Month) {
	d := model.NewDate(year, month+time.Month(delta), 1)
	return d.Year, d.Month
}
