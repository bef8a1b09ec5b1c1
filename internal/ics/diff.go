package ics

import (
	"bytes"
	"errors"
	"sort"

	ical "github.com/arran4/golang-ical"
)

// Diff compares the UIDs of two exports. Consumers that subscribe to the
// export de-duplicate by UID, so Kept entries update in place while Added
// and Removed show up as new or vanished events.
type Diff struct {
	Added   []string
	Removed []string
	Kept    []string
}

// Changed reports whether any UID was added or removed.
func (d Diff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// CompareExports parses two iCalendar documents and compares their VEVENT
// UIDs. Events without a UID are ignored.
func CompareExports(previous, current []byte) (Diff, error) {
	prev, err := eventUIDs(previous)
	if err != nil {
		return Diff{}, err
	}
	cur, err := eventUIDs(current)
	if err != nil {
		return Diff{}, err
	}

	var d Diff
	for uid := range cur {
		if _, ok := prev[uid]; ok {
			d.Kept = append(d.Kept, uid)
		} else {
			d.Added = append(d.Added, uid)
		}
	}
	for uid := range prev {
		if _, ok := cur[uid]; !ok {
			d.Removed = append(d.Removed, uid)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Kept)
	return d, nil
}

func eventUIDs(body []byte) (map[string]struct{}, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	for _, ve := range cal.Events() {
		p := ve.GetProperty(ical.ComponentPropertyUniqueId)
		if p == nil || p.Value == "" {
			continue
		}
		out[p.Value] = struct{}{}
	}
	return out, nil
}
