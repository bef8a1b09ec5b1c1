package filter

import (
	"sort"

	"rdmcal/internal/calendar"
	"rdmcal/internal/model"
)

// State holds the set of active tags for one viewing session. An event is
// visible when it carries at least one active tag; with no active tags
// nothing is visible, and an event without tags is never visible.
//
// State is not safe for concurrent use.
type State struct {
	vocabulary []string
	active     map[string]struct{}
}

// TagStatus is one entry of the filter UI listing.
type TagStatus struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Hue    int    `json:"hue"`
}

// New returns a state with every vocabulary tag active.
func New(vocabulary []string) *State {
	s := &State{
		vocabulary: sortedCopy(vocabulary),
		active:     make(map[string]struct{}, len(vocabulary)),
	}
	for _, t := range s.vocabulary {
		s.active[t] = struct{}{}
	}
	return s
}

// FromQuery returns a state where only the selected tags are active.
// Names outside the vocabulary are ignored.
func FromQuery(vocabulary []string, selected []string) *State {
	s := New(vocabulary)
	s.active = make(map[string]struct{}, len(selected))
	known := make(map[string]struct{}, len(s.vocabulary))
	for _, t := range s.vocabulary {
		known[t] = struct{}{}
	}
	for _, t := range selected {
		if _, ok := known[t]; ok {
			s.active[t] = struct{}{}
		}
	}
	return s
}

// Toggle flips the membership of tag in the active set.
func (s *State) Toggle(tag string) {
	if _, ok := s.active[tag]; ok {
		delete(s.active, tag)
		return
	}
	s.active[tag] = struct{}{}
}

func (s *State) IsActive(tag string) bool {
	_, ok := s.active[tag]
	return ok
}

// Visible reports whether ev shares at least one tag with the active set.
func (s *State) Visible(ev model.Event) bool {
	if len(s.active) == 0 {
		return false
	}
	for _, t := range ev.Tags {
		if _, ok := s.active[t]; ok {
			return true
		}
	}
	return false
}

// Predicate returns a visibility function over a snapshot of the current
// active set. Later toggles do not affect it.
func (s *State) Predicate() func(model.Event) bool {
	return s.Clone().Visible
}

// ActiveTags lists the active tags in code-point order.
func (s *State) ActiveTags() []string {
	out := make([]string, 0, len(s.active))
	for t := range s.active {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Tags lists the vocabulary with per-tag active flag and hue.
func (s *State) Tags() []TagStatus {
	out := make([]TagStatus, 0, len(s.vocabulary))
	for _, t := range s.vocabulary {
		out = append(out, TagStatus{Name: t, Active: s.IsActive(t), Hue: calendar.Hue(t)})
	}
	return out
}

func (s *State) Clone() *State {
	c := &State{
		vocabulary: s.vocabulary,
		active:     make(map[string]struct{}, len(s.active)),
	}
	for t := range s.active {
		c.active[t] = struct{}{}
	}
	return c
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
