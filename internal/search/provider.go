// Package search provides the text-matching strategies used by the free-text
// filter. Every strategy implements Provider and looks at a configurable set
// of document fields.
package search

// Document exposes named text fields to a Provider.
type Document interface {
	// FieldText returns the text of field name and whether the field exists.
	FieldText(name string) (string, bool)
}

// Provider defines the interface for search providers.
type Provider interface {
	// Match returns true if the document matches the search query.
	Match(doc Document, query string) bool

	// Name returns the provider name for identification and debugging.
	Name() string
}

// Options holds configuration options for creating search providers.
type Options struct {
	CaseInsensitive bool     // If true, searches ignore case
	Fields          []string // Fields to search in
}

// DefaultOptions returns the default search options: case-insensitive, no fields.
func DefaultOptions() Options {
	return Options{CaseInsensitive: true}
}

// Option is a function that modifies search options.
type Option func(*Options)

// WithCaseInsensitive sets case-insensitive search.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) {
		o.CaseInsensitive = enabled
	}
}

// WithFields sets the fields to search in.
func WithFields(fields ...string) Option {
	return func(o *Options) {
		o.Fields = fields
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// fieldValues returns the non-empty values of the configured fields.
func (o Options) fieldValues(doc Document) []string {
	values := make([]string, 0, len(o.Fields))
	for _, field := range o.Fields {
		v, ok := doc.FieldText(field)
		if !ok || v == "" {
			continue
		}
		values = append(values, v)
	}
	return values
}

// New returns the provider registered under name ("substring", "token" or "regex").
// Unknown names fall back to substring.
func New(name string, opts ...Option) Provider {
	switch name {
	case "token":
		return NewTokenProvider(opts...)
	case "regex":
		return NewRegexProvider(opts...)
	default:
		return NewSubstringProvider(opts...)
	}
}
