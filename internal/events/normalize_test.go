package events

import (
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"rdmcal/internal/model"
)

func TestTagListAcceptsScalarAndSequence(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want TagList
	}{
		{"scalar", "professions: Data Steward\n", TagList{"Data Steward"}},
		{"sequence", "professions: [AI, Librarian]\n", TagList{"AI", "Librarian"}},
		{"null", "professions: ~\n", nil},
		{"absent", "name: x\n", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec Record
			if err := yaml.Unmarshal([]byte(tc.doc), &rec); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(rec.Professions, tc.want) {
				t.Fatalf("professions = %#v, want %#v", rec.Professions, tc.want)
			}
		})
	}
}

func TestTagListRejectsMapping(t *testing.T) {
	var rec Record
	if err := yaml.Unmarshal([]byte("professions: {a: b}\n"), &rec); err == nil {
		t.Fatal("expected error for mapping professions")
	}
}

func TestRecordDecodesUnquotedDates(t *testing.T) {
	doc := `
name: Open Repositories
link: https://example.org/or
professions: Repository Manager
next:
  date-from: 2024-06-03
  date-to: 2024-06-06
  location: Göteborg
`
	var rec Record
	if err := yaml.Unmarshal([]byte(doc), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Next == nil || rec.Next.DateFrom != "2024-06-03" || rec.Next.DateTo != "2024-06-06" {
		t.Fatalf("unexpected next: %#v", rec.Next)
	}
}

func TestNormalizeTagsDedupesCaseSensitively(t *testing.T) {
	got := NormalizeTags([]string{"AI", "ai", "AI", " AI", "", "  \t", "ai"})
	want := []string{"AI", "ai", " AI"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeTags = %v, want %v", got, want)
	}
}

func TestNormalizeSkipsBadRecordsAndKeepsTheRest(t *testing.T) {
	records := []Record{
		{Name: "Good", Professions: TagList{"b", "a"}, Next: &NextRecord{DateFrom: "2024-05-01"}},
		{Name: "", Next: &NextRecord{DateFrom: "2024-05-01"}, Source: "noname.yaml"},
		{Name: "NoNext", Source: "nonext.yaml"},
		{Name: "BadDate", Next: &NextRecord{DateFrom: "2024-02-30"}},
		{Name: "Backwards", Next: &NextRecord{DateFrom: "2024-05-02", DateTo: "2024-05-01"}},
		{Name: "BadTo", Next: &NextRecord{DateFrom: "2024-05-02", DateTo: "soon"}},
		{Name: "Early", Professions: TagList{"AI", "ai"}, Next: &NextRecord{DateFrom: "2024-03-30", DateTo: "2024-04-02"}},
	}

	cat, errs := Normalize(records)

	if len(errs) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(errs), errs)
	}
	if !errors.Is(errs[0], ErrMissingName) {
		t.Fatalf("errs[0] = %v, want ErrMissingName", errs[0])
	}
	if !errors.Is(errs[1], ErrMissingDate) || !errors.Is(errs[2], ErrMissingDate) {
		t.Fatalf("expected ErrMissingDate for missing next and invalid date, got %v / %v", errs[1], errs[2])
	}
	if !errors.Is(errs[3], ErrDateOrder) {
		t.Fatalf("errs[3] = %v, want ErrDateOrder", errs[3])
	}

	if len(cat.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(cat.Events))
	}
	if cat.Events[0].Name != "Early" || cat.Events[1].Name != "Good" {
		t.Fatalf("events not sorted by start date: %s, %s", cat.Events[0].Name, cat.Events[1].Name)
	}

	wantTags := []string{"AI", "a", "ai", "b"}
	if !reflect.DeepEqual(cat.Tags, wantTags) {
		t.Fatalf("vocabulary = %v, want %v", cat.Tags, wantTags)
	}
	if !reflect.DeepEqual(cat.Events[1].Tags, []string{"b", "a"}) {
		t.Fatalf("event tags should keep first-seen order, got %v", cat.Events[1].Tags)
	}
}

func TestNormalizeOccurrenceFields(t *testing.T) {
	cat, errs := Normalize([]Record{{
		Name:        "  IDCC  ",
		Link:        "https://dcc.example/idcc",
		Professions: TagList{"Data Steward"},
		Next: &NextRecord{
			DateFrom: "2025-02-17T00:00:00Z",
			Location: " Edinburgh ",
			Info:     "Call for papers open\n",
		},
	}})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ev := cat.Events[0]
	if ev.Name != "IDCC" {
		t.Fatalf("name = %q", ev.Name)
	}
	if ev.Occurrence.From != model.NewDate(2025, 2, 17) || !ev.Occurrence.To.IsZero() {
		t.Fatalf("unexpected dates: %+v", ev.Occurrence)
	}
	if ev.Occurrence.End() != ev.Occurrence.From {
		t.Fatalf("single-day event should end on its start date")
	}
	if ev.EffectiveLink() != "https://dcc.example/idcc" {
		t.Fatalf("link fallback = %q", ev.EffectiveLink())
	}
	if ev.Occurrence.Location != "Edinburgh" || ev.Occurrence.Info != "Call for papers open" {
		t.Fatalf("unexpected logistics: %+v", ev.Occurrence)
	}
}

func TestVocabularySortsByCodePoint(t *testing.T) {
	evs := []model.Event{
		{Tags: []string{"librarian", "Zeta"}},
		{Tags: []string{"AI", "ai", "Zeta"}},
	}
	want := []string{"AI", "Zeta", "ai", "librarian"}
	if got := Vocabulary(evs); !reflect.DeepEqual(got, want) {
		t.Fatalf("Vocabulary = %v, want %v", got, want)
	}
}
