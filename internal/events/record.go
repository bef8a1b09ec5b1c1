package events

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record is one event definition as it appears in a data file.
type Record struct {
	Name        string      `yaml:"name"`
	Link        string      `yaml:"link"`
	Professions TagList     `yaml:"professions"`
	Next        *NextRecord `yaml:"next"`

	// Source names where the record came from (file name); used in errors.
	Source string `yaml:"-"`
}

// NextRecord describes the upcoming occurrence of an event.
type NextRecord struct {
	DateFrom string `yaml:"date-from"`
	DateTo   string `yaml:"date-to"`
	Link     string `yaml:"link"`
	Location string `yaml:"location"`
	Info     string `yaml:"info"`
}

// TagList accepts either a single scalar or a sequence of scalars.
type TagList []string

func (l *TagList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = TagList{n.Value}
		return nil
	case yaml.SequenceNode:
		out := make(TagList, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: professions entries must be scalars", c.Line)
			}
			out = append(out, c.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: professions must be a string or a list of strings", n.Line)
	}
}
