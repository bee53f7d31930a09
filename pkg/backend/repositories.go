package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// PageRepository fetches paginated collections from one endpoint.
type PageRepository[T any] struct {
	client   *HTTPClient
	endpoint string
}

// NewPageRepository adapts the client into a console.PageFetcher.
func NewPageRepository[T any](client *HTTPClient, endpoint string) *PageRepository[T] {
	return &PageRepository[T]{client: client, endpoint: endpoint}
}

var _ console.PageFetcher[console.Creator] = (*PageRepository[console.Creator])(nil)

// FetchPage issues GET endpoint?page=..&size=..&filters.
func (r *PageRepository[T]) FetchPage(ctx context.Context, query console.PageQuery) (console.Page[T], error) {
	var page console.Page[T]
	if err := r.client.Get(ctx, r.endpoint, query.Values(), &page); err != nil {
		return console.Page[T]{}, err
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return page, nil
}

// ResourceStore implements console.EntityStore over REST: POST creates,
// PATCH updates and DELETE removes.
type ResourceStore[T any] struct {
	client   *HTTPClient
	endpoint string
}

// NewResourceStore builds a store rooted at endpoint.
func NewResourceStore[T any](client *HTTPClient, endpoint string) *ResourceStore[T] {
	return &ResourceStore[T]{client: client, endpoint: endpoint}
}

var _ console.EntityStore[console.Banner] = (*ResourceStore[console.Banner])(nil)

// Get loads one entity.
func (s *ResourceStore[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := s.client.Get(ctx, s.itemPath(id), nil, &out)
	return out, err
}

// Create posts a new entity.
func (s *ResourceStore[T]) Create(ctx context.Context, entity T) (T, error) {
	var out T
	err := s.client.Post(ctx, s.endpoint, entity, &out)
	return out, err
}

// Update patches an existing entity.
func (s *ResourceStore[T]) Update(ctx context.Context, id string, entity T) (T, error) {
	var out T
	err := s.client.Patch(ctx, s.itemPath(id), entity, &out)
	return out, err
}

// Delete removes an entity.
func (s *ResourceStore[T]) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, s.itemPath(id))
}

func (s *ResourceStore[T]) itemPath(id string) string {
	return s.endpoint + "/" + url.PathEscape(id)
}

// SettingsRepository reads and writes the site settings document.
type SettingsRepository struct {
	client *HTTPClient
}

// NewSettingsRepository builds the settings store.
func NewSettingsRepository(client *HTTPClient) *SettingsRepository {
	return &SettingsRepository{client: client}
}

// GetSettings loads the settings.
func (r *SettingsRepository) GetSettings(ctx context.Context) (console.Settings, error) {
	var out console.Settings
	err := r.client.Get(ctx, console.EndpointSettings, nil, &out)
	return out, err
}

// UpdateSettings patches the settings.
func (r *SettingsRepository) UpdateSettings(ctx context.Context, settings console.Settings) (console.Settings, error) {
	var out console.Settings
	err := r.client.Patch(ctx, console.EndpointSettings, settings, &out)
	return out, err
}

// StatsRepository loads dashboard aggregates from /api/{scope}/dashboard.
type StatsRepository struct {
	client *HTTPClient
}

// NewStatsRepository builds the stats repository.
func NewStatsRepository(client *HTTPClient) *StatsRepository {
	return &StatsRepository{client: client}
}

var _ console.StatsRepository = (*StatsRepository)(nil)

// FetchReservationSummary loads reservation counters.
func (r *StatsRepository) FetchReservationSummary(ctx context.Context, scope console.StatsScope) (console.ReservationSummary, error) {
	var out console.ReservationSummary
	err := r.client.Get(ctx, statsPath(scope, "stats"), nil, &out)
	return out, err
}

// FetchSalesSummary loads sales totals and the daily series.
func (r *StatsRepository) FetchSalesSummary(ctx context.Context, scope console.StatsScope) (console.SalesSummary, error) {
	var out console.SalesSummary
	err := r.client.Get(ctx, statsPath(scope, "sales"), nil, &out)
	return out, err
}

func statsPath(scope console.StatsScope, kind string) string {
	if scope == "" {
		scope = console.ScopeAdmin
	}
	return fmt.Sprintf("/api/%s/dashboard/%s", scope, kind)
}

// ManagedBoothResolver looks up the booth managed by the signed-in host.
type ManagedBoothResolver struct {
	client *HTTPClient
}

// NewManagedBoothResolver builds the resolver used by the host shell.
func NewManagedBoothResolver(client *HTTPClient) *ManagedBoothResolver {
	return &ManagedBoothResolver{client: client}
}

var _ console.ManagedEntityResolver = (*ManagedBoothResolver)(nil)

// ResolveManagedEntity returns the booth id, or an error when the host has none.
func (r *ManagedBoothResolver) ResolveManagedEntity(ctx context.Context, viewer console.ViewerContext) (string, error) {
	ctx = console.ContextWithViewer(ctx, viewer)
	var out struct {
		ID      string `json:"id"`
		BoothID string `json:"boothId"`
	}
	if err := r.client.Get(ctx, console.EndpointHostManagedBooth, nil, &out); err != nil {
		return "", err
	}
	id := strings.TrimSpace(out.BoothID)
	if id == "" {
		id = strings.TrimSpace(out.ID)
	}
	if id == "" {
		return "", fmt.Errorf("backend: no managed booth for viewer %s", viewer.UserID)
	}
	return id, nil
}

// NewListSources wires page repositories for every console list.
func NewListSources(client *HTTPClient) console.ListSources {
	return console.ListSources{
		AccessLogs:            NewPageRepository[console.AccessLog](client, console.EndpointAccessLogs),
		ChangeLogs:            NewPageRepository[console.ChangeLog](client, console.EndpointChangeLogs),
		Reservations:          NewPageRepository[console.Reservation](client, console.EndpointReservations),
		BoothApplications:     NewPageRepository[console.BoothApplication](client, console.EndpointBoothApplications),
		BannerApplications:    NewPageRepository[console.BannerApplication](client, console.EndpointBannerApplications),
		Creators:              NewPageRepository[console.Creator](client, console.EndpointCreators),
		Banners:               NewPageRepository[console.Banner](client, console.EndpointBanners),
		HostReservations:      NewPageRepository[console.Reservation](client, console.EndpointHostReservations),
		HostEvents:            NewPageRepository[console.Event](client, console.EndpointHostEvents),
		HostBoothApplications: NewPageRepository[console.BoothApplication](client, console.EndpointHostBoothApplications),
	}
}
