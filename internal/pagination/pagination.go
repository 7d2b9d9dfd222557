package pagination

const DefaultPageSize = 10

// Normalize clamps page and size and returns the matching offset.
func Normalize(page, size int) (offset, limit, current int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	return (page - 1) * size, size, page
}

type Meta struct {
	TotalPages  int64 `json:"totalPages"`
	Page        int   `json:"page"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
	PrevPage    *int  `json:"prevPage"`
	NextPage    *int  `json:"nextPage"`
}

func BuildMeta(page, size int, total int64) Meta {
	totalPages := (total + int64(size) - 1) / int64(size)
	m := Meta{
		TotalPages:  totalPages,
		Page:        page,
		HasPrevPage: page > 1,
		HasNextPage: int64(page) < totalPages,
	}
	if m.HasPrevPage {
		prev := page - 1
		m.PrevPage = &prev
	}
	if m.HasNextPage {
		next := page + 1
		m.NextPage = &next
	}
	return m
}
