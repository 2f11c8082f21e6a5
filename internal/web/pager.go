package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Pager is the pagination strip under a table.
type Pager struct {
	Page    int
	Pages   int
	Total   int
	HasPrev bool
	HasNext bool
	PrevURL string
	NextURL string
}

// TableQuery reads the 1-based page and search term of a table view.
func TableQuery(r *http.Request) (page int, search string) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return page, strings.TrimSpace(q.Get("q"))
}

// TableURL builds the link for a table page.
func TableURL(base string, page int, search string) string {
	v := url.Values{}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if search != "" {
		v.Set("q", search)
	}
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}

func NewPager(base string, page, pageSize, total int, search string) Pager {
	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	p := Pager{
		Page:    page,
		Pages:   pages,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
	if p.HasPrev {
		p.PrevURL = TableURL(base, page-1, search)
	}
	if p.HasNext {
		p.NextURL = TableURL(base, page+1, search)
	}
	return p
}

// SafeReturn accepts a post-action redirect target only if it stays under
// base; anything else falls back to base.
func SafeReturn(raw, base string) string {
	if raw == base || strings.HasPrefix(raw, base+"?") {
		return raw
	}
	return base
}
