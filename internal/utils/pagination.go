package utils

// PageInfo describes one page of a list response.
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasPrev     bool `json:"hasPrev"`
	HasNext     bool `json:"hasNext"`
}

// Paginate slices one page out of items. Pages are 1-based; out-of-range
// pages clamp to the nearest valid one.
func Paginate[T any](items []T, page, pageSize int) ([]T, PageInfo) {
	if pageSize <= 0 {
		pageSize = 10
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  len(items),
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
	}
}
