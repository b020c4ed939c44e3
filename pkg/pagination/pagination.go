// Package pagination provides page accounting for fixed-size paginated listings.
package pagination

// TotalPages returns ceil(total / size). An empty collection has zero pages.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// CountOnPage returns the number of records a page holds. Every page is full
// except the final one, which holds the remainder.
// Pages outside [1, TotalPages] hold nothing.
func CountOnPage(total, page, size int) int {
	last := TotalPages(total, size)
	if page < 1 || page > last {
		return 0
	}
	if page == last {
		return total - (last-1)*size
	}
	return size
}

// Offset returns the number of records preceding the given 1-based page.
func Offset(page, size int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * size
}

// PageResult holds a page of data along with the accounting the caller needs
// to walk the remaining pages.
type PageResult[T any] struct {
	Items           []T `json:"items"`
	CountOnThisPage int `json:"countOnThisPage"`
	Page            int `json:"page"`
	TotalPages      int `json:"totalPages"`
}

// NewPageResult creates a PageResult, substituting an empty slice for nil data.
func NewPageResult[T any](items []T, count, page, totalPages int) PageResult[T] {
	if items == nil {
		items = []T{}
	}

	return PageResult[T]{
		Items:           items,
		CountOnThisPage: count,
		Page:            page,
		TotalPages:      totalPages,
	}
}
