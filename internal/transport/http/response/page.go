package response

import (
	"net/url"
	"strconv"
)

type Meta struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int64  `json:"total"`
	Path        string `json:"path"`
}

type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Paged 列表响应：data 为当前页，meta/links 描述分页
func Paged[T any](items []T, total int64, page, perPage int, u *url.URL) Resp {
	if items == nil {
		items = []T{}
	}
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}

	m := &Meta{CurrentPage: page, LastPage: last, PerPage: perPage, Total: total}
	if len(items) > 0 {
		from := (page-1)*perPage + 1
		to := from + len(items) - 1
		m.From, m.To = &from, &to
	}

	link := func(p int) string { return pageURL(u, p) }
	l := &Links{First: link(1), Last: link(last)}
	if page > 1 {
		prev := link(page - 1)
		l.Prev = &prev
	}
	if page < last {
		next := link(page + 1)
		l.Next = &next
	}
	if u != nil {
		m.Path = u.Path
	}

	r := OK(items)
	r.Meta, r.Links = m, l
	return r
}

// pageURL 保留其他查询参数，只替换 page
func pageURL(u *url.URL, page int) string {
	if u == nil {
		return "?page=" + strconv.Itoa(page)
	}
	cp := *u
	q := cp.Query()
	q.Set("page", strconv.Itoa(page))
	cp.RawQuery = q.Encode()
	return cp.String()
}
