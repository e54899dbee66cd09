package domain

import "math"

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
	MaxPage        = math.MaxInt32 // (MaxPage-1)*MaxPerPage 不溢出 int
)

type Order string

const (
	OrderNewest Order = "newest"
	OrderOldest Order = "oldest"
)

func (o Order) Valid() bool { return o == OrderNewest || o == OrderOldest }

// PageQuery 列表通用参数：搜索 + 排序 + 分页
type PageQuery struct {
	Page    int
	PerPage int
	Order   Order
	Search  string
}

// Normalize 补默认值并裁剪上限
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if !q.Order.Valid() {
		q.Order = OrderNewest
	}
	return q
}

func (q PageQuery) Offset() int { return (q.Page - 1) * q.PerPage }

type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

func NewPage[T any](items []T, total int64, q PageQuery) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: q.Page, PerPage: q.PerPage}
}

func (p Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}
