package models

import (
	"fmt"
	"strings"
)

// Priority is the stored symbol of a task priority
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var priorities = []struct {
	symbol Priority
	label  string
}{
	{PriorityLow, "Низкий"},
	{PriorityMedium, "Средний"},
	{PriorityHigh, "Высокий"},
}

// Priorities returns all levels from lowest to highest
func Priorities() []Priority {
	out := make([]Priority, 0, len(priorities))
	for _, p := range priorities {
		out = append(out, p.symbol)
	}
	return out
}

// Label returns the localized display label
func (p Priority) Label() string {
	for _, e := range priorities {
		if e.symbol == p {
			return e.label
		}
	}
	return string(p)
}

// Valid reports whether p is one of the known symbols
func (p Priority) Valid() bool {
	for _, e := range priorities {
		if e.symbol == p {
			return true
		}
	}
	return false
}

// Next cycles through the levels, wrapping after High
func (p Priority) Next() Priority {
	for i, e := range priorities {
		if e.symbol == p {
			return priorities[(i+1)%len(priorities)].symbol
		}
	}
	return PriorityLow
}

// ParsePriority accepts a symbol or a label in any case. Empty input yields Low.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriorityLow, nil
	}
	for _, e := range priorities {
		if strings.EqualFold(s, string(e.symbol)) || strings.EqualFold(s, e.label) {
			return e.symbol, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}
