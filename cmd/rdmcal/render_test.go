package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"rdmcal/internal/calendar"
	"rdmcal/internal/filter"
	"rdmcal/internal/model"
)

func sampleEvents() []model.Event {
	return []model.Event{
		{
			Name: "IDCC",
			Link: "https://example.org/idcc",
			Tags: []string{"Data Steward"},
			Occurrence: model.Occurrence{
				From:     model.NewDate(2024, 4, 2),
				Location: "Edinburgh",
			},
		},
	}
}

func TestRenderGrid(t *testing.T) {
	evs := sampleEvents()
	f := filter.New([]string{"Data Steward"})
	buckets := calendar.Build(evs, f.Predicate(), calendar.GridWindow(2024, time.April))
	g := calendar.Project(buckets, 2024, time.April, calendar.ProjectOptions{
		WeekStart: time.Sunday,
		Today:     model.NewDate(2024, 4, 10),
	})

	var buf bytes.Buffer
	if err := renderGrid(&buf, g, true); err != nil {
		t.Fatalf("renderGrid: %v", err)
	}
	out := buf.String()
	lines := strings.Split(out, "\n")

	if lines[0] != "April 2024" {
		t.Fatalf("title = %q", lines[0])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "Su") {
		t.Fatalf("header should start on Sunday: %q", lines[1])
	}
	// First week: one blank column, then Mon 1st and Tue 2nd with an event.
	if !strings.HasPrefix(lines[2], "       1    2*") {
		t.Fatalf("first week = %q", lines[2])
	}
	if !strings.Contains(out, ">10 ") {
		t.Fatalf("today not marked:\n%s", out)
	}
	if !strings.Contains(out, "April 2, 2024\n  - IDCC (Edinburgh) [Data Steward]\n    https://example.org/idcc\n") {
		t.Fatalf("missing detail section:\n%s", out)
	}
}

func TestRenderGridWithoutDetail(t *testing.T) {
	g := calendar.Project(nil, 2024, time.February, calendar.ProjectOptions{
		WeekStart: time.Monday,
		Today:     model.NewDate(2000, 1, 1),
	})
	var buf bytes.Buffer
	if err := renderGrid(&buf, g, false); err != nil {
		t.Fatalf("renderGrid: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Title, header and five weeks (Feb 1st 2024 is a Thursday).
	if len(lines) != 7 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "Mo") {
		t.Fatalf("header should start on Monday: %q", lines[1])
	}
	if strings.Contains(buf.String(), "*") {
		t.Fatal("no day should carry an event marker")
	}
}

func TestRenderTags(t *testing.T) {
	f := filter.FromQuery([]string{"AI", "Data Steward"}, []string{"Data Steward"})
	var buf bytes.Buffer
	if err := renderTags(&buf, f, sampleEvents()); err != nil {
		t.Fatalf("renderTags: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if got := strings.Fields(lines[1]); len(got) != 4 || got[0] != "AI" || got[1] != "288" || got[2] != "no" || got[3] != "0" {
		t.Fatalf("AI row = %q", lines[1])
	}
	if got := strings.Fields(lines[2]); len(got) != 5 || got[2] != "322" || got[3] != "yes" || got[4] != "1" {
		t.Fatalf("Data Steward row = %q", lines[2])
	}
}
