package console

import (
	"context"
	"net/url"
	"sort"
	"strconv"
)

// Page is one backend page snapshot. It is replaced wholesale on every fetch.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
}

// PageQuery is the request issued for a list search. Page is zero based.
type PageQuery struct {
	Page    int
	Size    int
	Filters map[string]string
}

// Values serializes the query as URL parameters, omitting empty filters.
func (q PageQuery) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		values.Set("size", strconv.Itoa(q.Size))
	}
	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value := q.Filters[key]; value != "" {
			values.Set(key, value)
		}
	}
	return values
}

// PageFetcher loads one page of T from the backend.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, query PageQuery) (Page[T], error)
}

// PageFetcherFunc adapts a function into a PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, query PageQuery) (Page[T], error)

// FetchPage calls f.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, query PageQuery) (Page[T], error) {
	return f(ctx, query)
}

// TotalPagesFor returns ceil(total/size), never less than 1.
func TotalPagesFor(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		return 1
	}
	return pages
}
