package comparisons

// PaginatedResult represents a paginated response with data and metadata
type PaginatedResult struct {
	Data       []*ComparativeAnalysis `json:"data"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	Total      int64                  `json:"totalItems"`
	TotalPages int                    `json:"totalPages"`
}

// NewPage fills in TotalPages.
func NewPage(data []*ComparativeAnalysis, page, pageSize int, total int64) *PaginatedResult {
	if data == nil {
		data = []*ComparativeAnalysis{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PaginatedResult{Data: data, Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}
