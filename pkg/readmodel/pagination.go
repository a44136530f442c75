package readmodel

// Paginated is a page of query results. Pages are zero-based.
type Paginated[T any] struct {
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_page"`
	Count      int `json:"count"`
	Page       int `json:"page"`
	Results    []T `json:"results"`
}

// NewPaginated assembles a page from the items and the unpaged total.
func NewPaginated[T any](results []T, totalCount, page, perPage int) Paginated[T] {
	totalPages := 0
	if perPage > 0 {
		totalPages = (totalCount + perPage - 1) / perPage
	}
	return Paginated[T]{
		TotalCount: totalCount,
		TotalPages: totalPages,
		Count:      len(results),
		Page:       page,
		Results:    results,
	}
}
