package queries

import (
	"context"
	"net/url"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// ListInput identifies a list read for a viewer.
type ListInput struct {
	Viewer console.ViewerContext
	Code   string
	Query  url.Values
}

// ListResult is the list state plus the toasts raised while loading it.
type ListResult struct {
	List   console.ListSnapshot `json:"list"`
	Toasts []console.Toast      `json:"toasts"`
}

type listService interface {
	ListSnapshot(ctx context.Context, viewer console.ViewerContext, code string, query url.Values) (console.ListSnapshot, []console.Toast, error)
}

// ListQuery loads one page of a list.
type ListQuery struct {
	service listService
}

// NewListQuery builds the query.
func NewListQuery(service listService) *ListQuery {
	return &ListQuery{service: service}
}

var _ gocommand.Querier[ListInput, ListResult] = (*ListQuery)(nil)

// Query loads the list. A fetch failure still returns the empty snapshot and
// its error toast alongside the error.
func (q *ListQuery) Query(ctx context.Context, input ListInput) (ListResult, error) {
	snap, toasts, err := q.service.ListSnapshot(ctx, input.Viewer, input.Code, input.Query)
	if toasts == nil {
		toasts = []console.Toast{}
	}
	return ListResult{List: snap, Toasts: toasts}, err
}
