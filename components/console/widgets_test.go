package console

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaValidator(t *testing.T) {
	registry, err := NewRegistry(NewChartRenderer())
	require.NoError(t, err)
	def, ok := registry.Definition(WidgetSalesChart)
	require.True(t, ok)
	validator := NewJSONSchemaValidator()
	place := func(config map[string]any) WidgetInstance {
		return WidgetInstance{ID: "sales", DefinitionID: WidgetSalesChart, Area: AreaMain, Configuration: config}
	}

	got, err := validator.ValidateInstance(def, place(map[string]any{"chart_type": "bar"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"chart_type": "bar", "metric": "amount"}, got.Configuration)

	got, err = validator.ValidateInstance(def, place(nil))
	require.NoError(t, err)
	assert.Equal(t, "line", got.Configuration["chart_type"])

	_, err = validator.ValidateInstance(def, place(map[string]any{"chart_type": "pie"}))
	var instanceErr *WidgetInstanceError
	require.ErrorAs(t, err, &instanceErr)
	assert.Equal(t, "sales", instanceErr.InstanceID)
	assert.Equal(t, WidgetSalesChart, instanceErr.Definition)
	assert.Contains(t, err.Error(), "widget sales")
	_, err = validator.ValidateInstance(def, place(map[string]any{"colour": "red"}))
	assert.Error(t, err)

	activity, _ := registry.Definition(WidgetRecentActivity)
	feed := WidgetInstance{ID: "feed", DefinitionID: WidgetRecentActivity, Area: AreaFooter, Configuration: map[string]any{"limit": 5}}
	got, err = validator.ValidateInstance(activity, feed)
	require.NoError(t, err)
	assert.Equal(t, float64(5), got.Configuration["limit"])
	feed.Configuration = map[string]any{"limit": 500}
	_, err = validator.ValidateInstance(activity, feed)
	assert.Error(t, err)
}

func TestJSONSchemaValidatorChecksPlacement(t *testing.T) {
	registry, err := NewRegistry(NewChartRenderer())
	require.NoError(t, err)
	def, _ := registry.Definition(WidgetStatCards)
	validator := NewJSONSchemaValidator()

	cases := map[string]WidgetInstance{
		"unknown area":  {ID: "a", Area: "header"},
		"unknown scope": {ID: "b", Area: AreaMain, Scope: "partner"},
		"unknown role":  {ID: "c", Area: AreaMain, Roles: []string{"ADMIN", "OWNER"}},
	}
	for want, instance := range cases {
		_, err := validator.ValidateInstance(def, instance)
		require.Error(t, err, want)
		assert.Contains(t, err.Error(), want)
		assert.Contains(t, err.Error(), "widget "+instance.ID)
	}

	_, err = validator.ValidateInstance(def, WidgetInstance{ID: "d", Area: AreaSidebar, Scope: ScopeHost, Roles: []string{"event-manager"}})
	assert.NoError(t, err)
}

func TestWidgetBoardRejectsBadLayout(t *testing.T) {
	registry, err := NewRegistry(NewChartRenderer())
	require.NoError(t, err)

	_, err = NewWidgetBoard(WidgetBoardOptions{Registry: registry, Layout: []WidgetInstance{
		{ID: "a", DefinitionID: WidgetStatCards, Area: AreaMain},
		{ID: "a", DefinitionID: WidgetStatCards, Area: AreaMain},
		{ID: "b", DefinitionID: "console.widget.missing", Area: AreaMain},
		{ID: "c", DefinitionID: WidgetStatCards, Area: AreaMain, Configuration: map[string]any{"metrics": []string{"nope"}}},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate widget id a")
	assert.Contains(t, err.Error(), "unknown definition")
	assert.Contains(t, err.Error(), "widget c ("+WidgetStatCards+")")
}

func TestWidgetBoardKeepsNormalizedConfiguration(t *testing.T) {
	registry, err := NewRegistry(NewChartRenderer(WithChartCache(NewChartCache(0))))
	require.NoError(t, err)
	var seen WidgetInstance
	require.NoError(t, registry.RegisterProvider(WidgetRecentActivity, ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		seen = meta.Instance
		return WidgetData{}, nil
	})))

	board, err := NewWidgetBoard(WidgetBoardOptions{Registry: registry, Layout: []WidgetInstance{
		{ID: "feed", DefinitionID: WidgetRecentActivity, Area: AreaFooter},
	}})
	require.NoError(t, err)
	board.Render(context.Background(), ViewerContext{Role: RoleAdmin}, DashboardStats{Scope: ScopeAdmin})
	assert.Equal(t, float64(10), seen.Configuration["limit"])
}

type failingProvider struct{}

func (failingProvider) Fetch(context.Context, WidgetContext) (WidgetData, error) {
	return nil, errors.New("provider down")
}

func TestWidgetBoardRenderFiltersByScopeAndRole(t *testing.T) {
	registry, err := NewRegistry(NewChartRenderer(WithChartCache(NewChartCache(0))))
	require.NoError(t, err)
	require.NoError(t, registry.RegisterProvider(WidgetRecentActivity, failingProvider{}))

	board, err := NewWidgetBoard(WidgetBoardOptions{Registry: registry, Layout: []WidgetInstance{
		{ID: "stats", DefinitionID: WidgetStatCards, Area: AreaMain, Configuration: map[string]any{"metrics": []string{MetricCheckinRate}}},
		{ID: "host-only", DefinitionID: WidgetCheckinGauge, Area: AreaSidebar, Scope: ScopeHost},
		{ID: "admins", DefinitionID: WidgetSalesChart, Area: AreaMain, Roles: []string{"ADMIN"}},
		{ID: "activity", DefinitionID: WidgetRecentActivity, Area: AreaFooter},
	}})
	require.NoError(t, err)

	stats := DashboardStats{Scope: ScopeAdmin, Derived: DerivedStats{CheckinRate: 42}}
	areas := board.Render(context.Background(), ViewerContext{Role: RoleGeneral}, stats)

	require.Len(t, areas[AreaMain], 1)
	assert.Equal(t, "stats", areas[AreaMain][0].ID)
	cards, ok := areas[AreaMain][0].Data["cards"].([]map[string]any)
	require.True(t, ok)
	assert.Equal(t, "42%", cards[0]["value"])
	assert.Empty(t, areas[AreaSidebar])
	assert.Empty(t, areas[AreaFooter], "failing providers are skipped")

	adminAreas := board.Render(context.Background(), ViewerContext{Role: RoleAdmin}, stats)
	require.Len(t, adminAreas[AreaMain], 2)
	assert.Equal(t, true, adminAreas[AreaMain][1].Data["empty"])

	assert.Empty(t, board.Render(context.Background(), ViewerContext{}, stats))
}
