package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected error for missing base url")
	}
}

func TestPageRepositorySendsQueryAndViewerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != console.EndpointAccessLogs {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer viewer-token" {
			t.Fatalf("expected viewer token, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("page") != "0" || q.Get("size") != "10" {
			t.Fatalf("unexpected paging %v", q)
		}
		if q.Get("from") != "2024-01-01" || q.Get("to") != "2024-01-31" {
			t.Fatalf("expected date range, got %v", q)
		}
		if q.Has("email") {
			t.Fatalf("empty filter must be omitted, got %v", q)
		}
		_ = json.NewEncoder(w).Encode(console.Page[console.AccessLog]{
			Content:       []console.AccessLog{{ID: "log-1", Email: "a@example.com"}},
			TotalElements: 1,
			TotalPages:    1,
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, Token: "fallback"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	repo := NewPageRepository[console.AccessLog](client, console.EndpointAccessLogs)
	ctx := console.ContextWithViewer(context.Background(), console.ViewerContext{UserID: "u1", Token: "viewer-token"})
	page, err := repo.FetchPage(ctx, console.PageQuery{
		Page:    0,
		Size:    10,
		Filters: map[string]string{"email": "", "from": "2024-01-01", "to": "2024-01-31"},
	})
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].ID != "log-1" {
		t.Fatalf("unexpected page %#v", page)
	}
}

func TestClientFallsBackToConfiguredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer service" {
			t.Fatalf("expected fallback token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(console.Settings{SiteName: "Tix"})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, Token: "service"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	settings, err := NewSettingsRepository(client).GetSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.SiteName != "Tix" {
		t.Fatalf("unexpected settings %#v", settings)
	}
}

func TestClientMapsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"TOKEN_EXPIRED","message":"expired"}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = NewStatsRepository(client).FetchSalesSummary(context.Background(), console.ScopeHost)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "TOKEN_EXPIRED" || apiErr.Path != "/api/host/dashboard/sales" {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(console.ReservationSummary{})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, RequestsPerSecond: 0.001, Burst: 1})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	repo := NewStatsRepository(client)
	if _, err := repo.FetchReservationSummary(context.Background(), console.ScopeAdmin); err != nil {
		t.Fatalf("first request: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.FetchReservationSummary(ctx, console.ScopeAdmin); err == nil {
		t.Fatalf("expected rate limited request to fail on cancelled context")
	}
}
