package search

import "strings"

// TokenProvider splits the query on whitespace; every token must be found in
// at least one configured field.
type TokenProvider struct {
	opts Options
}

// NewTokenProvider creates a new token search provider.
func NewTokenProvider(opts ...Option) Provider {
	return &TokenProvider{opts: applyOptions(opts)}
}

// Match returns true if all tokens match at least one field.
func (p *TokenProvider) Match(doc Document, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return true
	}
	values := p.opts.fieldValues(doc)
	if p.opts.CaseInsensitive {
		for i := range values {
			values[i] = strings.ToLower(values[i])
		}
	}
	for _, token := range tokens {
		if p.opts.CaseInsensitive {
			token = strings.ToLower(token)
		}
		if !containsAny(values, token) {
			return false
		}
	}
	return true
}

// Name returns the provider name.
func (p *TokenProvider) Name() string {
	return "token"
}

func containsAny(values []string, token string) bool {
	for _, v := range values {
		if strings.Contains(v, token) {
			return true
		}
	}
	return false
}
