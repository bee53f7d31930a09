package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticket struct {
	ID     string
	Status string
}

type recordingFetcher struct {
	mu      sync.Mutex
	queries []PageQuery
	page    Page[ticket]
	err     error
}

func (f *recordingFetcher) FetchPage(_ context.Context, query PageQuery) (Page[ticket], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.page, f.err
}

func (f *recordingFetcher) last() PageQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func (f *recordingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type toastRecorder struct {
	mu     sync.Mutex
	levels []ToastLevel
	msgs   []string
}

func (r *toastRecorder) Notify(_ context.Context, level ToastLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	r.msgs = append(r.msgs, message)
}

type sessionError struct{}

func (sessionError) Error() string      { return "401" }
func (sessionError) Unauthorized() bool { return true }

func ticketDefinition() ListDefinition[ticket] {
	return ListDefinition[ticket]{
		Code:     "tickets",
		Title:    "Tickets",
		Path:     "/admin_dashboard/tickets",
		PageSize: 10,
		Filters: []FilterField{
			{Key: "status", Kind: FilterSelect, Default: "ALL", AnyValue: "ALL", Options: []FilterOption{
				{Value: "ALL"}, {Value: "RESERVED"}, {Value: "CANCELLED"},
			}},
			{Key: "from", Kind: FilterDate},
			{Key: "email", Kind: FilterText},
		},
		Columns: []Column{{Key: "id", Label: "ID"}, {Key: "status", Label: "Status"}},
		Mapper: func(t ticket) Row {
			return Row{ID: t.ID, Cells: map[string]string{"id": t.ID, "status": t.Status}}
		},
	}
}

func tickets(n int) []ticket {
	out := make([]ticket, n)
	for i := range out {
		out[i] = ticket{ID: fmt.Sprintf("t-%d", i), Status: "RESERVED"}
	}
	return out
}

func TestListViewFilterChangeResetsPage(t *testing.T) {
	fetcher := &recordingFetcher{page: Page[ticket]{Content: tickets(3), TotalElements: 43}}
	view := NewListView(ticketDefinition(), fetcher, ListOptions{})
	ctx := context.Background()

	require.NoError(t, view.SetPage(ctx, 3))
	assert.Equal(t, 3, fetcher.last().Page)

	require.NoError(t, view.SetFilter(ctx, "status", "CANCELLED"))
	assert.Equal(t, 0, view.Page())
	assert.Equal(t, 0, fetcher.last().Page)
	assert.Equal(t, map[string]string{"status": "CANCELLED"}, fetcher.last().Filters)

	calls := fetcher.count()
	require.NoError(t, view.SetFilter(ctx, "status", "CANCELLED"))
	assert.Equal(t, calls, fetcher.count(), "unchanged filter must not refetch")
}

func TestListViewOmitsEmptyAndAnyFilters(t *testing.T) {
	fetcher := &recordingFetcher{}
	view := NewListView(ticketDefinition(), fetcher, ListOptions{})

	require.NoError(t, view.Load(context.Background(), map[string][]string{
		"from":  {"2024-03-01"},
		"email": {""},
		"page":  {"2"},
	}))
	query := fetcher.last()
	assert.Equal(t, map[string]string{"from": "2024-03-01"}, query.Filters)
	assert.Equal(t, 2, query.Page)
	assert.Equal(t, "0", PageQuery{Filters: query.Filters}.Values().Get("page"))
	assert.False(t, PageQuery{Filters: map[string]string{"email": ""}}.Values().Has("email"))
}

func TestListViewInvalidFilterWarns(t *testing.T) {
	toasts := &toastRecorder{}
	fetcher := &recordingFetcher{}
	view := NewListView(ticketDefinition(), fetcher, ListOptions{Notifier: toasts})

	err := view.SetFilter(context.Background(), "from", "03/01/2024")
	require.Error(t, err)
	assert.Equal(t, 0, fetcher.count())
	require.Len(t, toasts.levels, 1)
	assert.Equal(t, ToastWarning, toasts.levels[0])
	assert.Equal(t, "", view.Filters().Get("from"))
}

func TestListViewFailureRaisesOneToast(t *testing.T) {
	toasts := &toastRecorder{}
	fetcher := &recordingFetcher{page: Page[ticket]{Content: tickets(4), TotalElements: 4}}
	view := NewListView(ticketDefinition(), fetcher, ListOptions{Notifier: toasts})
	ctx := context.Background()
	require.NoError(t, view.Search(ctx))

	fetcher.err = errors.New("connection refused")
	require.Error(t, view.Search(ctx))

	snap := view.Snapshot()
	assert.True(t, snap.Failed)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Rows)
	assert.Equal(t, int64(0), snap.TotalElements)
	assert.Equal(t, 1, snap.TotalPages)
	require.Len(t, toasts.levels, 1)
	assert.Equal(t, ToastError, toasts.levels[0])
	assert.Equal(t, "Could not load tickets.", toasts.msgs[0])
}

func TestListViewUnauthorizedShowsSessionMessage(t *testing.T) {
	toasts := &toastRecorder{}
	fetcher := &recordingFetcher{err: fmt.Errorf("fetch: %w", sessionError{})}
	view := NewListView(ticketDefinition(), fetcher, ListOptions{Notifier: toasts})

	require.Error(t, view.Search(context.Background()))
	require.Len(t, toasts.msgs, 1)
	assert.Equal(t, sessionExpiredMessage, toasts.msgs[0])
}

func TestListViewCapsRowsAndNormalizesPages(t *testing.T) {
	fetcher := &recordingFetcher{page: Page[ticket]{Content: tickets(15), TotalElements: 15}}
	view := NewListView(ticketDefinition(), fetcher, ListOptions{})

	require.NoError(t, view.Search(context.Background()))
	snap := view.Snapshot()
	assert.Len(t, snap.Rows, 10)
	assert.Equal(t, 2, snap.TotalPages)
	assert.True(t, snap.HasNext)
	assert.False(t, snap.HasPrev)
	assert.Equal(t, []string{"t-0", "RESERVED"}, snap.Rows[0].Values)

	fetcher.page = Page[ticket]{}
	require.NoError(t, view.Search(context.Background()))
	snap = view.Snapshot()
	assert.Empty(t, snap.Rows)
	assert.Equal(t, 1, snap.TotalPages)
}

func TestListViewDiscardsSupersededResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	fetcher := PageFetcherFunc[ticket](func(ctx context.Context, query PageQuery) (Page[ticket], error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return Page[ticket]{Content: []ticket{{ID: "stale"}}, TotalElements: 1}, nil
		}
		return Page[ticket]{Content: []ticket{{ID: "fresh"}}, TotalElements: 1}, nil
	})
	view := NewListView(ticketDefinition(), fetcher, ListOptions{})
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() { errCh <- view.Search(ctx) }()
	<-started
	require.NoError(t, view.Search(ctx))
	close(release)

	assert.ErrorIs(t, <-errCh, ErrSuperseded)
	snap := view.Snapshot()
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "fresh", snap.Rows[0].ID)
}

func TestListViewResetIsIdempotent(t *testing.T) {
	fetcher := &recordingFetcher{}
	view := NewListView(ticketDefinition(), fetcher, ListOptions{})
	ctx := context.Background()
	require.NoError(t, view.SetFilters(ctx, map[string]string{"status": "RESERVED", "email": "a@b.c"}))
	require.NoError(t, view.SetPage(ctx, 4))

	require.NoError(t, view.Reset(ctx))
	first := view.Filters()
	require.NoError(t, view.Reset(ctx))

	assert.True(t, first.Equal(view.Filters()))
	assert.Equal(t, "ALL", view.Filters().Get("status"))
	assert.Equal(t, 0, view.Page())
	assert.Empty(t, fetcher.last().Filters)
}

func TestTotalPagesFor(t *testing.T) {
	assert.Equal(t, 1, TotalPagesFor(0, 10))
	assert.Equal(t, 1, TotalPagesFor(10, 10))
	assert.Equal(t, 2, TotalPagesFor(11, 10))
	assert.Equal(t, 1, TotalPagesFor(5, 0))
}
