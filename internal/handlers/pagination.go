package handlers

import (
	"net/http"
	"strconv"

	"lotear/internal/validate"
)

type pageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type pageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// page is the list envelope shared by every collection endpoint.
type page struct {
	Data  any       `json:"data"`
	Links pageLinks `json:"links"`
	Meta  pageMeta  `json:"meta"`
}

func newPage(r *http.Request, data any, total int64, q validate.ListQuery) page {
	lastPage := int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	links := pageLinks{
		First: pageURL(r, 1),
		Last:  pageURL(r, lastPage),
	}
	if q.Page > 1 {
		prev := pageURL(r, q.Page-1)
		links.Prev = &prev
	}
	if q.Page < lastPage {
		next := pageURL(r, q.Page+1)
		links.Next = &next
	}

	return page{
		Data:  data,
		Links: links,
		Meta: pageMeta{
			CurrentPage: q.Page,
			PerPage:     q.PerPage,
			Total:       total,
			LastPage:    lastPage,
		},
	}
}

func pageURL(r *http.Request, pageNum int) string {
	u := *r.URL
	values := u.Query()
	values.Set("page", strconv.Itoa(pageNum))
	u.RawQuery = values.Encode()
	return u.String()
}
