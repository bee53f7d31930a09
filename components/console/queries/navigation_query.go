package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// NavigationInput identifies a shell render.
type NavigationInput struct {
	Viewer console.ViewerContext
	Shell  string
	Path   string
}

type navigationService interface {
	Navigation(ctx context.Context, viewer console.ViewerContext, shell, currentPath string) (console.NavView, error)
}

// NavigationQuery renders a navigation shell.
type NavigationQuery struct {
	service navigationService
}

// NewNavigationQuery builds the query.
func NewNavigationQuery(service navigationService) *NavigationQuery {
	return &NavigationQuery{service: service}
}

var _ gocommand.Querier[NavigationInput, console.NavView] = (*NavigationQuery)(nil)

// Query renders the shell for the viewer.
func (q *NavigationQuery) Query(ctx context.Context, input NavigationInput) (console.NavView, error) {
	return q.service.Navigation(ctx, input.Viewer, input.Shell, input.Path)
}
