package filter

import (
	"reflect"
	"testing"

	"rdmcal/internal/model"
)

func ev(name string, tags ...string) model.Event {
	return model.Event{Name: name, Tags: tags}
}

func TestNewActivatesWholeVocabulary(t *testing.T) {
	s := New([]string{"b", "a"})
	if !s.IsActive("a") || !s.IsActive("b") {
		t.Fatal("expected all vocabulary tags active")
	}
	if !s.Visible(ev("x", "b")) {
		t.Fatal("event with an active tag should be visible")
	}
}

func TestVisibleIsIntersection(t *testing.T) {
	vocab := []string{"AI", "Librarian", "Steward", "ai"}
	events := []model.Event{
		ev("one", "AI"),
		ev("two", "Librarian", "Steward"),
		ev("three", "ai"),
		ev("none"),
	}
	subsets := [][]string{
		{},
		{"AI"},
		{"ai"},
		{"Steward"},
		{"AI", "Librarian"},
		vocab,
	}
	for _, sel := range subsets {
		s := FromQuery(vocab, sel)
		for _, e := range events {
			want := false
			for _, a := range sel {
				if e.HasTag(a) {
					want = true
				}
			}
			if got := s.Visible(e); got != want {
				t.Fatalf("active %v, event %s %v: visible = %v, want %v", sel, e.Name, e.Tags, got, want)
			}
		}
	}
}

func TestEmptyActiveSetHidesEverything(t *testing.T) {
	s := New([]string{"AI", "ai"})
	s.Toggle("AI")
	s.Toggle("ai")
	for _, e := range []model.Event{ev("a", "AI"), ev("b", "ai"), ev("c", "AI", "ai"), ev("d")} {
		if s.Visible(e) {
			t.Fatalf("event %s should be hidden with no active tags", e.Name)
		}
	}
}

func TestTagCaseSensitivity(t *testing.T) {
	s := New([]string{"AI", "ai"})
	s.Toggle("ai")
	if s.IsActive("ai") || !s.IsActive("AI") {
		t.Fatal("toggling ai must not affect AI")
	}
	if s.Visible(ev("lower", "ai")) {
		t.Fatal("event tagged only ai should be hidden")
	}
	if !s.Visible(ev("upper", "AI")) {
		t.Fatal("event tagged AI should stay visible")
	}
}

func TestToggleFlipsBack(t *testing.T) {
	s := New([]string{"x"})
	s.Toggle("x")
	if s.IsActive("x") {
		t.Fatal("expected x inactive after toggle")
	}
	s.Toggle("x")
	if !s.IsActive("x") {
		t.Fatal("expected x active after second toggle")
	}
}

func TestPredicateIsSnapshot(t *testing.T) {
	s := New([]string{"x"})
	visible := s.Predicate()
	s.Toggle("x")
	if !visible(ev("e", "x")) {
		t.Fatal("predicate should not observe later toggles")
	}
	if s.Visible(ev("e", "x")) {
		t.Fatal("state itself should reflect the toggle")
	}
}

func TestFromQueryIgnoresUnknownTags(t *testing.T) {
	s := FromQuery([]string{"a", "b"}, []string{"b", "zzz"})
	if !reflect.DeepEqual(s.ActiveTags(), []string{"b"}) {
		t.Fatalf("ActiveTags = %v", s.ActiveTags())
	}
}

func TestTagsListing(t *testing.T) {
	s := New([]string{"b", "a"})
	s.Toggle("b")
	got := s.Tags()
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("unexpected listing order: %+v", got)
	}
	if !got[0].Active || got[1].Active {
		t.Fatalf("unexpected active flags: %+v", got)
	}
	if got[0].Hue < 0 || got[0].Hue >= 360 {
		t.Fatalf("hue out of range: %d", got[0].Hue)
	}
}
