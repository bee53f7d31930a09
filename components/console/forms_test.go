package console

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bannerStore struct {
	items   map[string]Banner
	deleted []string
	err     error
}

func (s *bannerStore) Get(_ context.Context, id string) (Banner, error) {
	b, ok := s.items[id]
	if !ok {
		return Banner{}, errors.New("not found")
	}
	return b, nil
}

func (s *bannerStore) Create(_ context.Context, b Banner) (Banner, error) {
	if s.err != nil {
		return Banner{}, s.err
	}
	b.ID = "b-new"
	s.items[b.ID] = b
	return b, nil
}

func (s *bannerStore) Update(_ context.Context, id string, b Banner) (Banner, error) {
	s.items[id] = b
	return b, nil
}

func (s *bannerStore) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	delete(s.items, id)
	return nil
}

func TestBannerResourceSubmitCreatesAndPublishes(t *testing.T) {
	store := &bannerStore{items: map[string]Banner{}}
	hub := NewBroadcastHub()
	events, cancel := hub.Subscribe()
	defer cancel()
	toasts := &toastRecorder{}
	res := NewBannerResource(store)

	result, err := res.Submit(context.Background(), "", url.Values{
		"title":    {"Spring fest"},
		"imageUrl": {"https://cdn.example/spring.png"},
		"position": {"2"},
		"active":   {"on"},
	}, FormOptions{Notifier: toasts, Refresh: hub})
	require.NoError(t, err)

	assert.True(t, result.Saved)
	assert.Equal(t, "b-new", result.ID)
	assert.Equal(t, AdminBasePath+"/banners", result.Redirect)
	assert.Equal(t, 2, store.items["b-new"].Position)
	assert.True(t, store.items["b-new"].Active)
	assert.Equal(t, []string{"Banner created."}, toasts.msgs)

	event := <-events
	assert.Equal(t, EventListRefresh, event.Kind)
	assert.Equal(t, ListBanners, event.List)
	assert.Equal(t, "create", event.Reason)
}

func TestBannerResourceSubmitKeepsFormOnBadInput(t *testing.T) {
	store := &bannerStore{items: map[string]Banner{}}
	toasts := &toastRecorder{}
	res := NewBannerResource(store)

	result, err := res.Submit(context.Background(), "", url.Values{
		"title":    {"Spring fest"},
		"imageUrl": {"https://cdn.example/spring.png"},
		"position": {"-1"},
	}, FormOptions{Notifier: toasts})
	require.NoError(t, err)
	assert.False(t, result.Saved)
	assert.Empty(t, store.items)
	assert.Equal(t, []ToastLevel{ToastWarning}, toasts.levels)

	var title string
	for _, field := range result.Form.Fields {
		if field.Key == "title" {
			title = field.Value
		}
	}
	assert.Equal(t, "Spring fest", title)
}

func TestResourceDelete(t *testing.T) {
	store := &bannerStore{items: map[string]Banner{"b-1": {ID: "b-1", Title: "x"}}}
	toasts := &toastRecorder{}
	res := NewBannerResource(store)

	require.NoError(t, res.Delete(context.Background(), "b-1", FormOptions{Notifier: toasts}))
	assert.Equal(t, []string{"b-1"}, store.deleted)
	assert.Error(t, res.Delete(context.Background(), " ", FormOptions{}))

	store.err = errors.New("in use")
	require.Error(t, res.Delete(context.Background(), "b-2", FormOptions{Notifier: toasts}))
	assert.Equal(t, []string{"Banner deleted.", "Could not delete banner."}, toasts.msgs)

	settings := NewSettingsResource(nil)
	assert.Error(t, settings.Delete(context.Background(), "x", FormOptions{}))
}

func TestFormRegistryLookup(t *testing.T) {
	registry := NewFormRegistry(NewBannerResource(&bannerStore{}))
	res, err := registry.Lookup(FormBanners)
	require.NoError(t, err)
	assert.Equal(t, "Banner", res.Title())
	assert.False(t, res.Gate()(RoleEventManager))

	_, err = registry.Lookup("unknown")
	assert.Error(t, err)
}

func TestDefaultListCatalogRegistersConfiguredSources(t *testing.T) {
	catalog, err := DefaultListCatalog(ListSources{
		Creators:         PageFetcherFunc[Creator](func(context.Context, PageQuery) (Page[Creator], error) { return Page[Creator]{}, nil }),
		HostReservations: PageFetcherFunc[Reservation](func(context.Context, PageQuery) (Page[Reservation], error) { return Page[Reservation]{}, nil }),
	}, 5)
	require.NoError(t, err)
	require.Len(t, catalog.Entries(), 2)

	entry, err := catalog.LookupPath(AdminBasePath + "/creators")
	require.NoError(t, err)
	assert.Equal(t, ListCreators, entry.Code)
	assert.Contains(t, entry.QueryKeys, "page")
	assert.Equal(t, 5, entry.New(ListOptions{}).Snapshot().PageSize)

	_, err = catalog.Lookup(ListAccessLogs)
	assert.Error(t, err)
	assert.Error(t, catalog.Register(ListEntry{Code: ListCreators, New: entry.New}))
}
