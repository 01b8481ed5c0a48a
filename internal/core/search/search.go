// Package search defines searchable subjects, their indexes and the
// capabilities that match queries against them.
package search

import (
	"strings"

	"golang.org/x/text/cases"
)

// Subject is any model object that can be searched.
type Subject interface {
	DisplayName() string
}

// Named lets a subject expose a search name distinct from its display name.
type Named interface {
	SearchName() string
}

// Capability matches queries against one subject.
type Capability interface {
	// Match reports whether query selects the subject.
	Match(query string) (bool, error)
	// Find returns the index entries selected by query, in index order.
	Find(query string) ([]Entry, error)
}

// SearchName returns the name a subject is searched by, which defaults to
// its display name.
func SearchName(subject Subject) string {
	if subject == nil {
		return ""
	}
	if named, ok := subject.(Named); ok {
		if name := strings.TrimSpace(named.SearchName()); name != "" {
			return name
		}
	}
	return strings.TrimSpace(subject.DisplayName())
}

// Fold returns s case-folded for caseless comparison.
func Fold(s string) string {
	// Casers are stateful; one per call.
	return cases.Fold().String(strings.TrimSpace(s))
}

// Default returns the trivial capability used when no provider claims a
// subject. It matches on the subject's display name only.
func Default(subject Subject) Capability {
	name := ""
	if subject != nil {
		name = strings.TrimSpace(subject.DisplayName())
	}
	return defaultCapability{name: name}
}

type defaultCapability struct {
	name string
}

// Match reports whether the display name contains query, ignoring case.
// Blank queries match nothing.
func (c defaultCapability) Match(query string) (bool, error) {
	q := Fold(query)
	if q == "" || c.name == "" {
		return false, nil
	}
	return strings.Contains(Fold(c.name), q), nil
}

// Find returns the subject itself when Match succeeds.
func (c defaultCapability) Find(query string) ([]Entry, error) {
	ok, err := c.Match(query)
	if err != nil || !ok {
		return nil, err
	}
	return []Entry{{Token: c.name}}, nil
}

// IsDefault reports whether capability is the trivial default.
func IsDefault(capability Capability) bool {
	_, ok := capability.(defaultCapability)
	return ok
}
