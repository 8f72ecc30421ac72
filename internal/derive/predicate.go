package derive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sentidash/sentidash/internal/search"
)

// AllCategories is the sentinel selection that disables a category predicate.
const AllCategories = "all"

// Predicate decides whether a row passes one filter.
type Predicate interface {
	Match(r Record) bool
	// Describe returns a stable text form, used to detect criteria changes.
	Describe() string
}

// TextPredicate matches when the query occurs in any of the searched fields.
type TextPredicate struct {
	Query    string
	Fields   []string
	provider search.Provider
}

// Search builds a case-insensitive substring predicate over fields.
func Search(query string, fields ...string) TextPredicate {
	return SearchWith(search.NewSubstringProvider(search.WithFields(fields...)), query, fields...)
}

// SearchWith builds a text predicate backed by an arbitrary provider. fields is
// only used for Describe; the provider decides which fields it reads.
func SearchWith(p search.Provider, query string, fields ...string) TextPredicate {
	return TextPredicate{Query: query, Fields: fields, provider: p}
}

// Match implements Predicate.
func (p TextPredicate) Match(r Record) bool {
	if p.Query == "" {
		return true
	}
	if p.provider == nil {
		return Search(p.Query, p.Fields...).Match(r)
	}
	return p.provider.Match(document{r}, p.Query)
}

// Describe implements Predicate.
func (p TextPredicate) Describe() string {
	name := "substring"
	if p.provider != nil {
		name = p.provider.Name()
	}
	return fmt.Sprintf("text[%s](%s)=%q", name, strings.Join(p.Fields, ","), p.Query)
}

// RangePredicate matches when a numeric field lies within [Min, Max].
// A missing or non-numeric field counts as 0. Min greater than Max matches nothing.
type RangePredicate struct {
	Field string
	Min   float64
	Max   float64
}

// Between builds a RangePredicate.
func Between(field string, min, max float64) RangePredicate {
	return RangePredicate{Field: field, Min: min, Max: max}
}

// Match implements Predicate.
func (p RangePredicate) Match(r Record) bool {
	if p.Min > p.Max {
		return false
	}
	var n float64
	if v, ok := r.Field(p.Field); ok {
		n, _ = v.Float()
	}
	return n >= p.Min && n <= p.Max
}

// Describe implements Predicate.
func (p RangePredicate) Describe() string {
	return fmt.Sprintf("range(%s)=[%s,%s]", p.Field,
		strconv.FormatFloat(p.Min, 'g', -1, 64), strconv.FormatFloat(p.Max, 'g', -1, 64))
}

// CategoryPredicate matches rows whose field equals Selected exactly.
// An empty selection or AllCategories passes every row.
type CategoryPredicate struct {
	Field    string
	Selected string
}

// Category builds a CategoryPredicate.
func Category(field, selected string) CategoryPredicate {
	return CategoryPredicate{Field: field, Selected: selected}
}

// IsAll reports whether the predicate is disabled.
func (p CategoryPredicate) IsAll() bool {
	return p.Selected == "" || strings.EqualFold(p.Selected, AllCategories)
}

// Match implements Predicate.
func (p CategoryPredicate) Match(r Record) bool {
	if p.IsAll() {
		return true
	}
	v, ok := r.Field(p.Field)
	return ok && v.String() == p.Selected
}

// Describe implements Predicate.
func (p CategoryPredicate) Describe() string {
	return fmt.Sprintf("category(%s)=%q", p.Field, p.Selected)
}
