package response

import "github.com/nekogravitycat/venue-booking-backend/internal/pkg/request"

// PageResponse wraps list results. Unpaginated lists report a single page.
type PageResponse[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// Paged cuts the requested page out of the full, already sorted result.
func Paged[T any](all []T, p request.ListParams) PageResponse[T] {
	p.Normalize()
	return newPage(request.Paginate(all, p), p.Page, p.PageSize, len(all))
}

// All returns every item as one page.
func All[T any](items []T) PageResponse[T] {
	return newPage(items, 1, len(items), len(items))
}

func newPage[T any](items []T, page, pageSize, total int) PageResponse[T] {
	// JSON clients expect [] rather than null.
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{Items: items, Page: page, PageSize: pageSize, Total: total}
}
