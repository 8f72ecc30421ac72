// Package derive computes the visible page of a dataset from the current
// filter criteria and page state. Everything here is pure.
package derive

// DefaultPageSize applies when a page size is not positive.
const DefaultPageSize = 10

// PageState selects a 1-indexed page of a given size.
type PageState struct {
	Number int
	Size   int
}

// FirstPage returns page 1 of size.
func FirstPage(size int) PageState {
	return PageState{Number: 1, Size: size}
}

// Page is the derived view. Rows shares storage with the input slice and must
// be treated as read-only.
type Page[R any] struct {
	Rows       []R
	Number     int // effective page after clamping
	Size       int
	TotalPages int // at least 1
	TotalCount int // rows passing the criteria
}

// HasPrev reports whether a previous page exists.
func (p Page[R]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page[R]) HasNext() bool { return p.Number < p.TotalPages }

// Bounds returns the 1-indexed positions of the first and last row on the page,
// or 0, 0 when the page is empty.
func (p Page[R]) Bounds() (from, to int) {
	if len(p.Rows) == 0 {
		return 0, 0
	}
	from = (p.Number-1)*p.Size + 1
	return from, from + len(p.Rows) - 1
}

// Filter returns the rows passing c, in input order. With empty criteria the
// input slice is returned as is.
func Filter[R Record](rows []R, c Criteria) []R {
	if c.IsEmpty() {
		return rows
	}
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Paginate slices rows into the requested page, clamping the page number into [1, TotalPages].
func Paginate[R any](rows []R, ps PageState) Page[R] {
	size := ps.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	number := ps.Number
	if number > totalPages {
		number = totalPages
	}
	if number < 1 {
		number = 1
	}
	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return Page[R]{
		Rows:       rows[start:end:end],
		Number:     number,
		Size:       size,
		TotalPages: totalPages,
		TotalCount: total,
	}
}

// Derive filters rows by c and returns the page selected by ps.
func Derive[R Record](rows []R, c Criteria, ps PageState) Page[R] {
	return Paginate(Filter(rows, c), ps)
}
