package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
	Limit       int `json:"limit"`
}

// NewPagination derives pagination metadata from a total row count.
func NewPagination(page, limit, total int) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Pagination{CurrentPage: page, TotalPages: totalPages, Total: total, Limit: limit}
}
