package events

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	appLog "rdmcal/internal/log"
	"rdmcal/internal/model"
)

var (
	ErrMissingName = errors.New("record has no name")
	ErrMissingDate = errors.New("record has no usable date-from")
	ErrDateOrder   = errors.New("date-to is before date-from")
)

// Catalog is the normalized event set plus its tag vocabulary.
type Catalog struct {
	Events []model.Event
	// Tags is the union of all event tags in code-point order.
	Tags []string
}

// Normalize canonicalizes raw records. Records that cannot be normalized are
// logged, reported in the returned error slice and left out; they never
// abort the batch.
func Normalize(records []Record) (Catalog, []error) {
	evs := make([]model.Event, 0, len(records))
	errs := make([]error, 0)

	for i, rec := range records {
		ev, err := normalizeRecord(rec)
		if err != nil {
			src := rec.Source
			if src == "" {
				src = fmt.Sprintf("record #%d", i)
			}
			err = fmt.Errorf("%s: %w", src, err)
			appLog.Error("event record skipped", err, "source", src, "name", rec.Name)
			errs = append(errs, err)
			continue
		}
		evs = append(evs, ev)
	}

	sort.SliceStable(evs, func(i, j int) bool {
		a, b := evs[i].Occurrence.From, evs[j].Occurrence.From
		if a != b {
			return a.Before(b)
		}
		return evs[i].Name < evs[j].Name
	})

	appLog.Debug("events normalized", "input", len(records), "events", len(evs), "skipped", len(errs))
	return Catalog{Events: evs, Tags: Vocabulary(evs)}, errs
}

func normalizeRecord(rec Record) (model.Event, error) {
	var ev model.Event

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return ev, ErrMissingName
	}
	if rec.Next == nil || strings.TrimSpace(rec.Next.DateFrom) == "" {
		return ev, ErrMissingDate
	}

	from, err := model.ParseDate(rec.Next.DateFrom)
	if err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMissingDate, err)
	}

	var to model.Date
	if strings.TrimSpace(rec.Next.DateTo) != "" {
		to, err = model.ParseDate(rec.Next.DateTo)
		if err != nil {
			return ev, fmt.Errorf("date-to: %w", err)
		}
		if to.Before(from) {
			return ev, fmt.Errorf("%w (%s < %s)", ErrDateOrder, to, from)
		}
	}

	ev = model.Event{
		Name: name,
		Link: strings.TrimSpace(rec.Link),
		Tags: NormalizeTags(rec.Professions),
		Occurrence: model.Occurrence{
			From:     from,
			To:       to,
			Link:     strings.TrimSpace(rec.Next.Link),
			Location: strings.TrimSpace(rec.Next.Location),
			Info:     strings.TrimRight(rec.Next.Info, "\n"),
		},
	}
	return ev, nil
}

// NormalizeTags dedupes exact matches, keeping first-seen order. Matching is
// case-sensitive and whitespace-significant; entries that are empty or only
// whitespace are dropped.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Vocabulary returns every distinct tag across evs, sorted by code point.
func Vocabulary(evs []model.Event) []string {
	set := make(map[string]struct{})
	for _, ev := range evs {
		for _, t := range ev.Tags {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
