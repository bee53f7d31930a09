package queries

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

type stubService struct {
	listCalls      int
	dashboardScope console.StatsScope
	navCalls       int
	err            error
}

func (s *stubService) ListSnapshot(context.Context, console.ViewerContext, string, url.Values) (console.ListSnapshot, []console.Toast, error) {
	s.listCalls++
	return console.ListSnapshot{Code: console.ListCreators}, nil, s.err
}

func (s *stubService) DashboardPage(_ context.Context, _ console.ViewerContext, scope console.StatsScope) (console.PageData, error) {
	s.dashboardScope = scope
	return console.PageData{Title: "Dashboard"}, nil
}

func (s *stubService) Navigation(context.Context, console.ViewerContext, string, string) (console.NavView, error) {
	s.navCalls++
	return console.NavView{Visible: true}, nil
}

func TestListQuery(t *testing.T) {
	service := &stubService{}
	result, err := NewListQuery(service).Query(context.Background(), ListInput{Code: console.ListCreators})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.listCalls != 1 {
		t.Fatalf("expected 1 call, got %d", service.listCalls)
	}
	if result.Toasts == nil {
		t.Fatalf("toasts must be an empty slice, not nil")
	}
}

func TestListQueryReturnsSnapshotWithError(t *testing.T) {
	service := &stubService{err: errors.New("backend down")}
	result, err := NewListQuery(service).Query(context.Background(), ListInput{Code: console.ListCreators})
	if err == nil {
		t.Fatalf("expected error")
	}
	if result.List.Code != console.ListCreators {
		t.Fatalf("expected snapshot alongside error, got %#v", result.List)
	}
}

func TestDashboardQueryDefaultsToAdminScope(t *testing.T) {
	service := &stubService{}
	if _, err := NewDashboardQuery(service).Query(context.Background(), DashboardInput{}); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.dashboardScope != console.ScopeAdmin {
		t.Fatalf("expected admin scope, got %q", service.dashboardScope)
	}
}

func TestNavigationQuery(t *testing.T) {
	service := &stubService{}
	view, err := NewNavigationQuery(service).Query(context.Background(), NavigationInput{Shell: console.ShellAdmin})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if !view.Visible || service.navCalls != 1 {
		t.Fatalf("unexpected result %#v", view)
	}
}
