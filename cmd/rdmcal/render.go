package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"rdmcal/internal/calendar"
	"rdmcal/internal/filter"
	"rdmcal/internal/model"
)

// renderGrid prints g as a plain-text month. Days with events carry a `*`
// and today is prefixed with `>`.
func renderGrid(w io.Writer, g calendar.Grid, detail bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", g.Month, g.Year)

	for i, wd := range calendar.Weekdays(g.WeekStart) {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%4s", wd.String()[:2])
	}
	b.WriteByte('\n')

	for _, week := range g.Weeks() {
		for i, c := range week {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(cellText(c))
		}
		b.WriteByte('\n')
	}

	if detail {
		for _, c := range g.Cells {
			if c.Empty || len(c.Events) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n%s\n", c.Date.Display())
			for _, s := range c.Events {
				writeSummary(&b, s)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func cellText(c calendar.Cell) string {
	if c.Empty {
		return "    "
	}
	mark := " "
	if len(c.Events) > 0 {
		mark = "*"
	}
	lead := " "
	if c.Today {
		lead = ">"
	}
	return fmt.Sprintf("%s%2d%s", lead, c.Day, mark)
}

func writeSummary(b *strings.Builder, s model.Summary) {
	fmt.Fprintf(b, "  - %s", s.Name)
	if s.Location != "" {
		fmt.Fprintf(b, " (%s)", s.Location)
	}
	if len(s.Tags) > 0 {
		fmt.Fprintf(b, " [%s]", strings.Join(s.Tags, ", "))
	}
	b.WriteByte('\n')
	if s.Link != "" {
		fmt.Fprintf(b, "    %s\n", s.Link)
	}
}

// renderTags prints the vocabulary with hue, active flag and event count.
func renderTags(w io.Writer, f *filter.State, evs []model.Event) error {
	counts := make(map[string]int)
	for _, ev := range evs {
		for _, t := range ev.Tags {
			counts[t]++
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tHUE\tACTIVE\tEVENTS")
	for _, ts := range f.Tags() {
		active := "no"
		if ts.Active {
			active = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", ts.Name, ts.Hue, active, counts[ts.Name])
	}
	return tw.Flush()
}
