package catalog

// PageResult is one page of a (possibly filtered) view listing.
type PageResult struct {
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
	Total      int     `json:"total"`
	Entries    []Entry `json:"entries"`
}

// Page returns the page-th page (1-indexed) of the view after applying the
// filter. Page numbers are clamped into [1, total_pages]; an empty result
// set still reports page 1 of 1.
func (c *Catalog) Page(view string, f Filter, page, pageSize int) (PageResult, error) {
	if pageSize <= 0 {
		pageSize = c.config.PageSize
	}

	entries, err := c.FilterEntries(view, f)
	if err != nil {
		return PageResult{}, err
	}

	total := len(entries)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
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
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return PageResult{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
		Entries:    entries[start:end],
	}, nil
}
