package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
// Seed catalog ids are short strings ("v1"), so no uuid format is enforced.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required"`
}

// ListParams holds common pagination options.
type ListParams struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// Normalize fills in default pagination values.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
}

// Paginate returns the window of items for the requested page.
func Paginate[T any](items []T, p ListParams) []T {
	p.Normalize()
	start := (p.Page - 1) * p.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
