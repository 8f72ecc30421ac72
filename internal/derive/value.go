package derive

import (
	"strconv"
	"strings"
)

// Value is a scalar row field: either text or a number.
type Value struct {
	text  string
	num   float64
	isNum bool
}

// Text wraps a string value.
func Text(s string) Value { return Value{text: s} }

// Number wraps a numeric value.
func Number(f float64) Value { return Value{num: f, isNum: true} }

// IsNumber reports whether the value was created with Number.
func (v Value) IsNumber() bool { return v.isNum }

// Float returns the numeric value. Text that parses as a number is accepted.
func (v Value) Float() (float64, bool) {
	if v.isNum {
		return v.num, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String renders the value as it appears in text search and exports.
func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

// Record is a row that exposes its fields by name.
type Record interface {
	Field(name string) (Value, bool)
}

// Fields is a map-backed Record, handy for ad-hoc rows and tests.
type Fields map[string]Value

// Field implements Record.
func (f Fields) Field(name string) (Value, bool) {
	v, ok := f[name]
	return v, ok
}

// document adapts a Record to search.Document.
type document struct {
	r Record
}

func (d document) FieldText(name string) (string, bool) {
	v, ok := d.r.Field(name)
	if !ok {
		return "", false
	}
	return v.String(), true
}
