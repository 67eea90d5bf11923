// Package pagination holds the page arithmetic shared by every listing.
package pagination

import "anoa.com/notevault/pkg/dto"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Params struct {
	Page  int
	Limit int
}

// New clamps page to >= 1 and limit to [1, MaxLimit]; zero limit means DefaultLimit.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func FromQuery(q dto.PageQuery) Params {
	return New(q.Page, q.Limit)
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Params) Meta(total int64) dto.PaginationMeta {
	totalPages := int(total) / p.Limit
	if int(total)%p.Limit != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	return dto.PaginationMeta{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       p.Limit,
		HasNext:     p.Page < totalPages,
		HasPrev:     p.Page > 1,
	}
}

// Slice pages an in-memory list that is already ordered.
func Slice[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func Page[T any](items []T, total int64, p Params) dto.Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return dto.Paginated[T]{Data: items, Meta: p.Meta(total)}
}
