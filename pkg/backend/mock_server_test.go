package backend

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

func newMockClient(t *testing.T, data MockData) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(NewMockServer(data))
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, Token: data.Token})
	require.NoError(t, err)
	return client
}

func TestMockServerPaginatesAndFilters(t *testing.T) {
	client := newMockClient(t, DemoData(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	repo := NewPageRepository[console.Reservation](client, console.EndpointReservations)

	page, err := repo.FetchPage(context.Background(), console.PageQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Content, 10)
	assert.Equal(t, int64(24), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)

	page, err = repo.FetchPage(context.Background(), console.PageQuery{
		Size:    50,
		Filters: map[string]string{"status": "CANCELLED"},
	})
	require.NoError(t, err)
	assert.Len(t, page.Content, 8)
	for _, r := range page.Content {
		assert.Equal(t, "CANCELLED", r.Status)
	}
}

func TestResourceStoreRoundTrip(t *testing.T) {
	client := newMockClient(t, MockData{})
	store := NewResourceStore[console.Creator](client, console.EndpointCreators)
	ctx := context.Background()

	created, err := store.Create(ctx, console.Creator{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Name = "Ana Lima"
	updated, err := store.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.Name)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", got.Name)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestMockServerRejectsWrongToken(t *testing.T) {
	server := httptest.NewServer(NewMockServer(MockData{Token: "good"}))
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, Token: "bad"})
	require.NoError(t, err)

	_, err = NewStatsRepository(client).FetchReservationSummary(context.Background(), console.ScopeAdmin)
	assert.True(t, IsUnauthorized(err))
}

func TestManagedBoothResolver(t *testing.T) {
	client := newMockClient(t, MockData{ManagedBoothID: "booth-9"})
	id, err := NewManagedBoothResolver(client).ResolveManagedEntity(context.Background(), console.ViewerContext{UserID: "host-1"})
	require.NoError(t, err)
	assert.Equal(t, "booth-9", id)

	empty := newMockClient(t, MockData{})
	_, err = NewManagedBoothResolver(empty).ResolveManagedEntity(context.Background(), console.ViewerContext{UserID: "host-2"})
	assert.Error(t, err)
}

func TestListSourcesBuildCatalog(t *testing.T) {
	client := newMockClient(t, DemoData(time.Now()))
	catalog, err := console.DefaultListCatalog(NewListSources(client), 10)
	require.NoError(t, err)
	assert.Len(t, catalog.Entries(), 10)
}
