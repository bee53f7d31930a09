package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// DashboardInput selects the dashboard scope for a viewer.
type DashboardInput struct {
	Viewer console.ViewerContext
	Scope  console.StatsScope
}

type dashboardService interface {
	DashboardPage(ctx context.Context, viewer console.ViewerContext, scope console.StatsScope) (console.PageData, error)
}

// DashboardQuery loads statistics and rendered widgets.
type DashboardQuery struct {
	service dashboardService
}

// NewDashboardQuery builds the query.
func NewDashboardQuery(service dashboardService) *DashboardQuery {
	return &DashboardQuery{service: service}
}

var _ gocommand.Querier[DashboardInput, console.PageData] = (*DashboardQuery)(nil)

// Query resolves the dashboard page data.
func (q *DashboardQuery) Query(ctx context.Context, input DashboardInput) (console.PageData, error) {
	scope := input.Scope
	if scope == "" {
		scope = console.ScopeAdmin
	}
	return q.service.DashboardPage(ctx, input.Viewer, scope)
}
