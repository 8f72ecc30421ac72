package search

import "strings"

// SubstringProvider matches if any configured field contains the query.
type SubstringProvider struct {
	opts Options
}

// NewSubstringProvider creates a new substring search provider.
func NewSubstringProvider(opts ...Option) Provider {
	return &SubstringProvider{opts: applyOptions(opts)}
}

// Match returns true if any configured field contains the query substring.
// An empty query matches everything.
func (p *SubstringProvider) Match(doc Document, query string) bool {
	if query == "" {
		return true
	}
	if p.opts.CaseInsensitive {
		query = strings.ToLower(query)
	}
	for _, value := range p.opts.fieldValues(doc) {
		if p.opts.CaseInsensitive {
			value = strings.ToLower(value)
		}
		if strings.Contains(value, query) {
			return true
		}
	}
	return false
}

// Name returns the provider name.
func (p *SubstringProvider) Name() string {
	return "substring"
}
