package derive

import "strings"

type entry struct {
	name string
	pred Predicate
}

// Criteria is an ordered, named set of predicates combined with AND.
// It is an immutable value: With and Without return modified copies.
// The zero value passes every row.
type Criteria struct {
	entries []entry
}

// NewCriteria returns empty criteria.
func NewCriteria() Criteria {
	return Criteria{}
}

// With sets the predicate stored under name. An existing entry keeps its position.
func (c Criteria) With(name string, p Predicate) Criteria {
	entries := make([]entry, 0, len(c.entries)+1)
	replaced := false
	for _, e := range c.entries {
		if e.name == name {
			e.pred = p
			replaced = true
		}
		entries = append(entries, e)
	}
	if !replaced {
		entries = append(entries, entry{name: name, pred: p})
	}
	return Criteria{entries: entries}
}

// Without removes the predicate stored under name.
func (c Criteria) Without(name string) Criteria {
	entries := make([]entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.name != name {
			entries = append(entries, e)
		}
	}
	return Criteria{entries: entries}
}

// Get returns the predicate stored under name.
func (c Criteria) Get(name string) (Predicate, bool) {
	for _, e := range c.entries {
		if e.name == name {
			return e.pred, true
		}
	}
	return nil, false
}

// Names returns the predicate names in insertion order.
func (c Criteria) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of predicates.
func (c Criteria) Len() int {
	return len(c.entries)
}

// IsEmpty reports whether no predicate is set.
func (c Criteria) IsEmpty() bool {
	return len(c.entries) == 0
}

// Match reports whether r passes every predicate, evaluated in insertion order.
func (c Criteria) Match(r Record) bool {
	for _, e := range c.entries {
		if !e.pred.Match(r) {
			return false
		}
	}
	return true
}

// Fingerprint identifies the criteria. Equal fingerprints filter identically.
func (c Criteria) Fingerprint() string {
	parts := make([]string, len(c.entries))
	for i, e := range c.entries {
		parts[i] = e.name + ":" + e.pred.Describe()
	}
	return strings.Join(parts, ";")
}
