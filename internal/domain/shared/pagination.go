package shared

// PageMeta is the pagination block returned by list endpoints
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPageMeta computes page metadata from a total count
func NewPageMeta(total int64, page, limit int) PageMeta {
	if limit <= 0 {
		return PageMeta{Total: total, Page: page, Limit: limit}
	}
	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	return PageMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// Page is one page of a list result
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

// ListQuery holds the paging and ordering parameters shared by list endpoints
type ListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Order  string `form:"order"`
}
