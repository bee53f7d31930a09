package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// RenderedWidget is a widget instance with its provider data.
type RenderedWidget struct {
	ID   string     `json:"id"`
	Code string     `json:"code"`
	Name string     `json:"name"`
	Area string     `json:"area"`
	Data WidgetData `json:"data"`
}

// WidgetBoardOptions configures a WidgetBoard.
type WidgetBoardOptions struct {
	Registry  *Registry
	Validator ConfigValidator
	Layout    []WidgetInstance
	Logger    *slog.Logger
	Telemetry Telemetry
}

// WidgetBoard renders the configured widget layout for a viewer.
type WidgetBoard struct {
	registry  *Registry
	layout    []WidgetInstance
	logger    *slog.Logger
	telemetry Telemetry
}

// NewWidgetBoard validates every layout entry and keeps the normalized copies.
func NewWidgetBoard(opts WidgetBoardOptions) (*WidgetBoard, error) {
	if opts.Registry == nil {
		return nil, errors.New("console: widget registry is required")
	}
	validator := opts.Validator
	if validator == nil {
		validator = NewJSONSchemaValidator()
	}
	layout := DefaultWidgetLayout()
	if opts.Layout != nil {
		layout = append([]WidgetInstance(nil), opts.Layout...)
	}
	var errs []error
	seen := map[string]struct{}{}
	for i, instance := range layout {
		if instance.ID == "" {
			instance.ID = fmt.Sprintf("%s-%d", instance.DefinitionID, i)
			layout[i] = instance
		}
		if _, dup := seen[instance.ID]; dup {
			errs = append(errs, fmt.Errorf("console: duplicate widget id %s", instance.ID))
			continue
		}
		seen[instance.ID] = struct{}{}
		def, ok := opts.Registry.Definition(instance.DefinitionID)
		if !ok {
			errs = append(errs, fmt.Errorf("console: widget %s uses unknown definition %s", instance.ID, instance.DefinitionID))
			continue
		}
		normalized, err := validator.ValidateInstance(def, instance)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		layout[i] = normalized
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &WidgetBoard{
		registry:  opts.Registry,
		layout:    layout,
		logger:    normalizeLogger(opts.Logger),
		telemetry: normalizeTelemetry(opts.Telemetry),
	}, nil
}

// Render returns the widgets visible to viewer on the stats scope, grouped by area.
// Widgets whose provider fails are skipped.
func (b *WidgetBoard) Render(ctx context.Context, viewer ViewerContext, stats DashboardStats) map[string][]RenderedWidget {
	areas := map[string][]RenderedWidget{}
	for _, instance := range b.layout {
		if instance.Scope != "" && instance.Scope != stats.Scope {
			continue
		}
		if !RoleAllowed(viewer.Role, instance.Roles) {
			continue
		}
		def, _ := b.registry.Definition(instance.DefinitionID)
		provider, ok := b.registry.Provider(instance.DefinitionID)
		if !ok {
			b.logger.WarnContext(ctx, "widget has no provider", "widget", instance.ID, "definition", instance.DefinitionID)
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{Instance: instance, Viewer: viewer, Stats: stats})
		if err != nil {
			b.logger.WarnContext(ctx, "widget provider failed", "widget", instance.ID, "error", err)
			b.telemetry.Record(ctx, "console.widget.error", map[string]any{
				"widget":     instance.ID,
				"definition": instance.DefinitionID,
				"error":      err.Error(),
			})
			continue
		}
		areas[instance.Area] = append(areas[instance.Area], RenderedWidget{
			ID:   instance.ID,
			Code: instance.DefinitionID,
			Name: def.Name,
			Area: instance.Area,
			Data: data,
		})
	}
	return areas
}
