package search

import (
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider for testing.
//
// Example:
//
//	p := new(search.MockProvider)
//	p.On("Match", mock.Anything, "aapl").Return(true)
//	p.On("Name").Return("mock")
type MockProvider struct {
	mock.Mock
}

// Match records the call and returns the configured result.
func (m *MockProvider) Match(doc Document, query string) bool {
	ret := m.Called(doc, query)
	if fn, ok := ret.Get(0).(func(Document, string) bool); ok {
		return fn(doc, query)
	}
	return ret.Bool(0)
}

// Name records the call and returns the configured name.
func (m *MockProvider) Name() string {
	ret := m.Called()
	return ret.String(0)
}

var _ Provider = (*MockProvider)(nil)
