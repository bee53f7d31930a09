package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// DefaultPageSize is used when a list definition does not set one.
const DefaultPageSize = 10

// ErrSuperseded is returned by a search whose response arrived after a newer
// search was issued. The response is discarded.
var ErrSuperseded = errors.New("console: search superseded by a newer request")

// Column is a rendered table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Row is one display row derived from a backend entity.
type Row struct {
	ID     string            `json:"id"`
	Link   string            `json:"link,omitempty"`
	Cells  map[string]string `json:"cells"`
	Values []string          `json:"-"`
}

// RowMapper converts a backend entity into a display row keyed by column.
type RowMapper[T any] func(T) Row

// ListDefinition configures one filtered, paginated table.
type ListDefinition[T any] struct {
	Code     string
	Title    string
	Path     string
	Shell    string
	Endpoint string
	Gate     PermissionGate
	PageSize int
	Filters  []FilterField
	Columns  []Column
	Mapper   RowMapper[T]
}

// ListOptions carries the collaborators shared by list views.
type ListOptions struct {
	Logger    *slog.Logger
	Notifier  Notifier
	Telemetry Telemetry
}

// ListSnapshot is an immutable view of a list's state for rendering.
type ListSnapshot struct {
	Code          string            `json:"code"`
	Title         string            `json:"title"`
	Path          string            `json:"path"`
	Columns       []Column          `json:"columns"`
	Filters       []FilterValue     `json:"-"`
	ActiveFilters map[string]string `json:"filters"`
	Rows          []Row             `json:"rows"`
	Page          int               `json:"page"`
	PageSize      int               `json:"pageSize"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	Loading       bool              `json:"loading"`
	Failed        bool              `json:"failed"`
	HasPrev       bool              `json:"hasPrev"`
	HasNext       bool              `json:"hasNext"`
	DisplayPage   int               `json:"-"`
	PrevURL       string            `json:"-"`
	NextURL       string            `json:"-"`
	ExportURL     string            `json:"-"`
}

// Lister is the type-erased surface of a ListView used by controllers.
type Lister interface {
	Code() string
	Title() string
	Load(ctx context.Context, query url.Values) error
	Snapshot() ListSnapshot
}

// ListView is the shared filter, fetch, paginate state machine. Every search is
// tagged with a sequence number and only the latest search may write state.
type ListView[T any] struct {
	def       ListDefinition[T]
	fetcher   PageFetcher[T]
	logger    *slog.Logger
	notifier  Notifier
	telemetry Telemetry

	mu            sync.Mutex
	filters       FilterState
	page          int
	rows          []Row
	totalElements int64
	totalPages    int
	loading       bool
	failed        bool
	seq           uint64
}

// NewListView builds a list view with filters at their defaults on page 0.
func NewListView[T any](def ListDefinition[T], fetcher PageFetcher[T], opts ListOptions) *ListView[T] {
	if def.PageSize <= 0 {
		def.PageSize = DefaultPageSize
	}
	return &ListView[T]{
		def:        def,
		fetcher:    fetcher,
		logger:     normalizeLogger(opts.Logger),
		notifier:   normalizeNotifier(opts.Notifier),
		telemetry:  normalizeTelemetry(opts.Telemetry),
		filters:    NewFilterState(def.Filters),
		rows:       []Row{},
		totalPages: 1,
	}
}

// Code returns the list code.
func (v *ListView[T]) Code() string { return v.def.Code }

// Title returns the list title.
func (v *ListView[T]) Title() string { return v.def.Title }

// Search fetches the current page with the current filters.
func (v *ListView[T]) Search(ctx context.Context) error {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	query := PageQuery{Page: v.page, Size: v.def.PageSize, Filters: v.filters.Active()}
	v.loading = true
	v.mu.Unlock()

	if v.fetcher == nil {
		return v.finishFailure(ctx, seq, query, errors.New("no page fetcher configured"))
	}
	page, err := v.fetcher.FetchPage(ctx, query)
	if err != nil {
		return v.finishFailure(ctx, seq, query, err)
	}
	return v.finishSuccess(ctx, seq, query, page)
}

func (v *ListView[T]) finishSuccess(ctx context.Context, seq uint64, query PageQuery, page Page[T]) error {
	rows := make([]Row, 0, min(len(page.Content), query.Size))
	for i, item := range page.Content {
		if i >= query.Size {
			break
		}
		rows = append(rows, v.mapRow(item))
	}
	total := max(page.TotalElements, int64(len(rows)))
	totalPages := max(page.TotalPages, TotalPagesFor(total, query.Size))

	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		v.telemetry.Record(ctx, "console.list.superseded", map[string]any{"list": v.def.Code, "seq": seq})
		return ErrSuperseded
	}
	v.loading = false
	v.failed = false
	v.rows = rows
	v.totalElements = total
	v.totalPages = totalPages
	v.mu.Unlock()

	v.telemetry.Record(ctx, "console.list.search", map[string]any{
		"list":  v.def.Code,
		"page":  query.Page,
		"rows":  len(rows),
		"total": total,
	})
	return nil
}

func (v *ListView[T]) finishFailure(ctx context.Context, seq uint64, query PageQuery, err error) error {
	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		return ErrSuperseded
	}
	v.loading = false
	v.failed = true
	v.rows = []Row{}
	v.totalElements = 0
	v.totalPages = 1
	v.mu.Unlock()

	v.logger.ErrorContext(ctx, "list search failed",
		"list", v.def.Code,
		"page", query.Page,
		"error", err,
	)
	v.notifier.Notify(ctx, ToastError, failureMessage(err, fmt.Sprintf("Could not load %s.", strings.ToLower(v.def.Title))))
	return fmt.Errorf("console: search %s: %w", v.def.Code, err)
}

func (v *ListView[T]) mapRow(item T) Row {
	var row Row
	if v.def.Mapper != nil {
		row = v.def.Mapper(item)
	}
	if row.Cells == nil {
		row.Cells = map[string]string{}
	}
	row.Values = make([]string, len(v.def.Columns))
	for i, col := range v.def.Columns {
		row.Values[i] = row.Cells[col.Key]
	}
	return row
}

// SetFilter changes one filter. A change resets the page to 0 and searches;
// an unchanged value does not refetch.
func (v *ListView[T]) SetFilter(ctx context.Context, key, value string) error {
	return v.SetFilters(ctx, map[string]string{key: value})
}

// SetFilters applies several filter changes with at most one search.
func (v *ListView[T]) SetFilters(ctx context.Context, values map[string]string) error {
	v.mu.Lock()
	changed := false
	var invalid error
	for key, value := range values {
		ok, err := v.filters.Set(key, value)
		if err != nil {
			invalid = errors.Join(invalid, err)
			continue
		}
		changed = changed || ok
	}
	if changed {
		v.page = 0
	}
	v.mu.Unlock()

	if invalid != nil {
		v.notifier.Notify(ctx, ToastWarning, invalidFilterMessage(invalid))
	}
	if !changed {
		return invalid
	}
	return errors.Join(invalid, v.Search(ctx))
}

// SetPage moves to a zero-based page index and searches, keeping filters.
func (v *ListView[T]) SetPage(ctx context.Context, page int) error {
	v.mu.Lock()
	v.page = max(page, 0)
	v.mu.Unlock()
	return v.Search(ctx)
}

// Reset restores default filters on page 0 and searches.
func (v *ListView[T]) Reset(ctx context.Context) error {
	v.mu.Lock()
	v.filters.Reset()
	v.page = 0
	v.mu.Unlock()
	return v.Search(ctx)
}

// Load rebuilds filters and page from request query parameters, then searches
// once. Invalid filter values keep their default and raise a warning toast.
func (v *ListView[T]) Load(ctx context.Context, query url.Values) error {
	v.mu.Lock()
	v.filters.Reset()
	var invalid error
	for _, field := range v.filters.Fields() {
		if !query.Has(field.Key) {
			continue
		}
		if _, err := v.filters.Set(field.Key, query.Get(field.Key)); err != nil {
			invalid = errors.Join(invalid, err)
		}
	}
	v.page = 0
	if raw := query.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			v.page = n
		}
	}
	v.mu.Unlock()

	if invalid != nil {
		v.notifier.Notify(ctx, ToastWarning, invalidFilterMessage(invalid))
	}
	return v.Search(ctx)
}

// Filters returns a copy of the current filter state.
func (v *ListView[T]) Filters() FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Clone()
}

// Page returns the current zero-based page index.
func (v *ListView[T]) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Snapshot returns a copy of the current state.
func (v *ListView[T]) Snapshot() ListSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	active := v.filters.Active()
	snap := ListSnapshot{
		Code:          v.def.Code,
		Title:         v.def.Title,
		Path:          v.def.Path,
		Columns:       append([]Column(nil), v.def.Columns...),
		Filters:       v.filters.Values(),
		ActiveFilters: active,
		Rows:          append([]Row(nil), v.rows...),
		Page:          v.page,
		PageSize:      v.def.PageSize,
		TotalElements: v.totalElements,
		TotalPages:    v.totalPages,
		Loading:       v.loading,
		Failed:        v.failed,
		HasPrev:       v.page > 0,
		HasNext:       v.page+1 < v.totalPages,
		DisplayPage:   v.page + 1,
	}
	if snap.HasPrev {
		snap.PrevURL = pageURL(v.def.Path, active, v.page-1)
	}
	if snap.HasNext {
		snap.NextURL = pageURL(v.def.Path, active, v.page+1)
	}
	export := PageQuery{Page: v.page, Filters: active}.Values()
	snap.ExportURL = v.def.Path + "/export?" + export.Encode()
	return snap
}

func pageURL(path string, filters map[string]string, page int) string {
	return path + "?" + PageQuery{Page: page, Filters: filters}.Values().Encode()
}

func invalidFilterMessage(err error) string {
	var fields []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if idx := strings.LastIndex(line, ": "); idx >= 0 {
			line = line[idx+2:]
		}
		fields = append(fields, line)
	}
	return "Invalid filter: " + strings.Join(fields, "; ")
}
