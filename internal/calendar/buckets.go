package calendar

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "rdmcal/internal/log"
	"rdmcal/internal/model"
)

// DayBuckets maps each calendar date to the summaries of the events running
// on that day, in event order.
type DayBuckets map[model.Date][]model.Summary

// Window bounds a bucket build to [From, To], both inclusive. The zero
// Window is unbounded.
type Window struct {
	From model.Date
	To   model.Date
}

// IsZero reports whether w is unbounded.
func (w Window) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

func (w Window) contains(d model.Date) bool {
	if !w.From.IsZero() && d.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && d.After(w.To) {
		return false
	}
	return true
}

// Build expands every visible event into one summary per day of its
// inclusive [From, End] span, keeping only days inside window. An event
// contributes at most one summary to a given day. Build keeps no state and
// does not modify its inputs.
func Build(events []model.Event, visible func(model.Event) bool, window Window) DayBuckets {
	out := make(DayBuckets)
	seen := make(map[model.Date]map[string]struct{})

	for _, ev := range events {
		if visible == nil || !visible(ev) {
			continue
		}
		days, err := expandDays(ev.Occurrence, window)
		if err != nil {
			// Only this event is affected.
			appLog.Error("calendar: failed to expand event days", err, "name", ev.Name)
			continue
		}
		if len(days) == 0 {
			continue
		}

		summary := model.SummaryOf(ev)
		for _, d := range days {
			names, ok := seen[d]
			if !ok {
				names = make(map[string]struct{})
				seen[d] = names
			}
			if _, dup := names[ev.Name]; dup {
				continue
			}
			names[ev.Name] = struct{}{}
			out[d] = append(out[d], cloneSummary(summary))
		}
	}

	return out
}

// expandDays enumerates the days of occ that fall inside window, using a
// daily recurrence so month and year rollovers follow the real calendar.
func expandDays(occ model.Occurrence, window Window) ([]model.Date, error) {
	from, to := occ.From, occ.End()

	// Clip to the window before expanding.
	if !window.From.IsZero() && from.Before(window.From) {
		from = window.From
	}
	if !window.To.IsZero() && to.After(window.To) {
		to = window.To
	}
	if to.Before(from) {
		return nil, nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: from.Time(),
		Until:   to.Time(),
	})
	if err != nil {
		return nil, err
	}

	times := r.All()
	days := make([]model.Date, 0, len(times))
	for _, t := range times {
		d := model.DateOf(t.In(time.UTC))
		if window.contains(d) {
			days = append(days, d)
		}
	}
	return days, nil
}

func cloneSummary(s model.Summary) model.Summary {
	tags := make([]string, len(s.Tags))
	copy(tags, s.Tags)
	s.Tags = tags
	return s
}
