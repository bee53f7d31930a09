package console

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Widget codes.
const (
	WidgetStatCards      = "console.widget.stat_cards"
	WidgetCheckinGauge   = "console.widget.checkin_gauge"
	WidgetSalesChart     = "console.widget.sales_chart"
	WidgetRecentActivity = "console.widget.recent_activity"
)

// Dashboard areas.
const (
	AreaMain    = "main"
	AreaSidebar = "sidebar"
	AreaFooter  = "footer"
)

// WidgetDefinition describes a widget and the JSON schema of its configuration.
type WidgetDefinition struct {
	Code        string
	Name        string
	Description string
	Category    string
	Schema      map[string]any
}

// WidgetInstance places a widget on a dashboard. An empty Scope shows the
// widget on every dashboard; empty Roles admits every known role.
type WidgetInstance struct {
	ID            string         `yaml:"id" json:"id"`
	DefinitionID  string         `yaml:"definition" json:"definition"`
	Area          string         `yaml:"area" json:"area"`
	Scope         StatsScope     `yaml:"scope" json:"scope,omitempty"`
	Roles         []string       `yaml:"roles" json:"roles,omitempty"`
	Configuration map[string]any `yaml:"configuration" json:"configuration,omitempty"`
}

// WidgetContext contains what a provider needs to render an instance.
type WidgetContext struct {
	Instance WidgetInstance
	Viewer   ViewerContext
	Stats    DashboardStats
}

// WidgetData is an opaque payload passed to templates.
type WidgetData map[string]any

// Provider fetches data required to render a widget instance.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetHook lets packages register widgets or providers during init().
type WidgetHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []WidgetHook
)

// RegisterWidgetHook registers a hook executed against new registries.
func RegisterWidgetHook(h WidgetHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry stores widget definitions and their providers.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]WidgetDefinition
	providers   map[string]Provider
}

// NewRegistry builds a registry with the built-in definitions and stats
// providers, then applies global hooks.
func NewRegistry(charts *ChartRenderer) (*Registry, error) {
	reg := &Registry{
		definitions: map[string]WidgetDefinition{},
		providers:   map[string]Provider{},
	}
	if charts == nil {
		charts = NewChartRenderer()
	}
	for _, def := range DefaultWidgetDefinitions() {
		if err := reg.RegisterDefinition(def); err != nil {
			return nil, err
		}
	}
	defaults := map[string]Provider{
		WidgetStatCards:    statCardsProvider{},
		WidgetCheckinGauge: checkinGaugeProvider{charts: charts},
		WidgetSalesChart:   salesChartProvider{charts: charts},
	}
	for code, provider := range defaults {
		if err := reg.RegisterProvider(code, provider); err != nil {
			return nil, err
		}
	}
	if err := reg.ApplyHooks(); err != nil {
		return nil, err
	}
	return reg, nil
}

// ApplyHooks executes registered widget hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores widget metadata.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("console: widget definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider associates a provider with a registered definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if provider == nil {
		return fmt.Errorf("console: provider for %s cannot be nil", code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("console: widget definition %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

// Definition fetches a widget definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a widget provider by code.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// Definitions returns all registered definitions sorted by code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// DefaultWidgetDefinitions returns the built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	return []WidgetDefinition{
		{
			Code:        WidgetStatCards,
			Name:        "Key figures",
			Description: "Reservation and sales counters with derived rates",
			Category:    "stats",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"metrics": map[string]any{
						"type":        "array",
						"uniqueItems": true,
						"items":       map[string]any{"type": "string", "enum": statMetricCodes()},
					},
				},
				"additionalProperties": false,
			},
		},
		{
			Code:        WidgetCheckinGauge,
			Name:        "Check-in rate",
			Description: "Share of reservations already checked in",
			Category:    "charts",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"theme": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
		{
			Code:        WidgetSalesChart,
			Name:        "Daily sales",
			Description: "Sales per day",
			Category:    "charts",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":      map[string]any{"type": "string"},
					"theme":      map[string]any{"type": "string"},
					"chart_type": map[string]any{"type": "string", "enum": []string{"line", "bar"}, "default": "line"},
					"metric":     map[string]any{"type": "string", "enum": []string{"amount", "count"}, "default": "amount"},
				},
				"additionalProperties": false,
			},
		},
		{
			Code:        WidgetRecentActivity,
			Name:        "Recent activity",
			Description: "Latest access log entries",
			Category:    "activity",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 50, "default": 10},
				},
				"additionalProperties": false,
			},
		},
	}
}

// DefaultWidgetLayout places the built-in widgets on both dashboards.
func DefaultWidgetLayout() []WidgetInstance {
	return []WidgetInstance{
		{ID: "stats", DefinitionID: WidgetStatCards, Area: AreaMain},
		{ID: "sales", DefinitionID: WidgetSalesChart, Area: AreaMain, Configuration: map[string]any{"chart_type": "line", "metric": "amount"}},
		{ID: "checkin", DefinitionID: WidgetCheckinGauge, Area: AreaSidebar},
		{ID: "activity", DefinitionID: WidgetRecentActivity, Area: AreaFooter, Scope: ScopeAdmin, Roles: []string{string(RoleAdmin)}, Configuration: map[string]any{"limit": 5}},
	}
}
