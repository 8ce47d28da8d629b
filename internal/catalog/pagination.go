// Package catalog holds the client-side view of the remote catalog: page
// arithmetic, the accumulated page cache, name search and fetch sequencing.
package catalog

// Pagination is 1-based paging over a catalog of known size.
type Pagination struct {
	PageSize   int
	TotalCount int
}

// NewPagination returns a Pagination for the given sizes.
func NewPagination(pageSize, totalCount int) Pagination {
	return Pagination{PageSize: pageSize, TotalCount: totalCount}
}

// TotalPages is ceil(TotalCount / PageSize).
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// Clamp forces page into [1, TotalPages].
func (p Pagination) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if total := p.TotalPages(); total > 0 && page > total {
		return total
	}
	return page
}

// Offset is the zero-based index of the first item on page.
func (p Pagination) Offset(page int) int {
	return (p.Clamp(page) - 1) * p.PageSize
}

// Limit is the number of items to request for page. The last page is
// short when TotalCount is not a multiple of PageSize.
func (p Pagination) Limit(page int) int {
	remaining := p.TotalCount - p.Offset(page)
	if remaining < p.PageSize {
		return max(remaining, 0)
	}
	return p.PageSize
}

func (p Pagination) HasPrev(page int) bool { return page > 1 }

func (p Pagination) HasNext(page int) bool { return page < p.TotalPages() }
