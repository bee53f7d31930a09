package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
	"github.com/goliatone/go-ticketing-dashboard/pkg/backend"
)

var stdout io.Writer = os.Stdout

type exportCmd struct {
	List   string            `required:"" help:"List code (e.g. access-logs, host-reservations)."`
	Filter map[string]string `help:"Filter values as key=value pairs."`
	Page   int               `default:"0" help:"Zero-based page to export."`
	Out    string            `type:"path" help:"Output file; defaults to the generated workbook name."`
	Token  string            `help:"Bearer token of the viewer to export as." env:"TICKETING_VIEWER_TOKEN"`
}

func (e *exportCmd) Run(ctx context.Context, root *cli) error {
	app, err := root.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	query := url.Values{}
	for key, value := range e.Filter {
		query.Set(key, value)
	}
	if e.Page > 0 {
		query.Set("page", strconv.Itoa(e.Page))
	}
	viewer := app.cliViewer(e.Token)
	file, err := app.controller.ExportList(console.ContextWithViewer(ctx, viewer), viewer, e.List, query)
	if err != nil {
		return fmt.Errorf("ticketctl: export %s: %w", e.List, err)
	}
	out := e.Out
	if out == "" {
		out = file.Name
	}
	if err := os.WriteFile(out, file.Data, 0o644); err != nil {
		return fmt.Errorf("ticketctl: write %s: %w", out, err)
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", out, len(file.Data))
	return nil
}

type statsCmd struct {
	Scope  string `default:"admin" enum:"admin,host" help:"Aggregate scope."`
	Format string `default:"yaml" enum:"yaml,json" help:"Output format."`
}

func (s *statsCmd) Run(ctx context.Context, root *cli) error {
	app, err := root.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	view := console.NewDashboardView(console.StatsScope(s.Scope), backend.NewStatsRepository(app.client), console.ListOptions{
		Logger: app.logger,
		Notifier: console.NotifierFunc(func(ctx context.Context, level console.ToastLevel, message string) {
			app.logger.WarnContext(ctx, "stats", "level", level, "message", message)
		}),
	})
	stats := view.Load(console.ContextWithViewer(ctx, app.cliViewer("")))
	return writeDocument(stdout, s.Format, stats)
}

type navCmd struct {
	Shell  string `default:"admin" enum:"admin,host" help:"Shell to build."`
	Role   string `default:"ADMIN" help:"Viewer role (ADMIN, EVENT_MANAGER, GENERAL)."`
	Path   string `help:"Current path used to mark the active item."`
	Format string `default:"text" enum:"text,json" help:"Output format."`
}

func (n *navCmd) Run(ctx context.Context, root *cli) error {
	app, err := root.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	viewer := app.cliViewer("")
	viewer.Role = console.ParseRole(n.Role)
	view, err := app.controller.Navigation(console.ContextWithViewer(ctx, viewer), viewer, n.Shell, n.Path)
	if err != nil {
		return err
	}
	if n.Format == "json" {
		return writeDocument(stdout, "json", view)
	}
	printNav(stdout, view)
	return nil
}

func printNav(w io.Writer, view console.NavView) {
	if !view.Visible {
		fmt.Fprintf(w, "%s: hidden\n", view.Shell)
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", view.Title, view.Shell)
	var walk func(items []console.NavItem, depth int)
	walk = func(items []console.NavItem, depth int) {
		for _, item := range items {
			marker := " "
			if item.Active {
				marker = "*"
			}
			fmt.Fprintf(w, "%s%s %s  %s\n", strings.Repeat("  ", depth+1), marker, item.Label, item.Path)
			walk(item.Children, depth+1)
		}
	}
	walk(view.Items, 0)
}

type widgetsCmd struct {
	List     widgetsListCmd     `cmd:"" default:"1" help:"List registered widget definitions."`
	Validate widgetsValidateCmd `cmd:"" help:"Validate a dashboard layout YAML file."`
	Scaffold widgetsScaffoldCmd `cmd:"" help:"Print a layout entry for a widget definition."`
}

type widgetsListCmd struct{}

func (widgetsListCmd) Run() error {
	registry, err := console.NewRegistry(console.NewChartRenderer())
	if err != nil {
		return err
	}
	defs := registry.Definitions()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	for _, def := range defs {
		fmt.Fprintf(stdout, "%-34s %-10s %s\n", def.Code, def.Category, def.Name)
	}
	return nil
}

type widgetsValidateCmd struct {
	Layout string `arg:"" type:"existingfile" help:"Layout file with a top-level widgets list."`
}

type layoutDocument struct {
	Widgets []console.WidgetInstance `yaml:"widgets"`
}

func (v *widgetsValidateCmd) Run() error {
	data, err := os.ReadFile(v.Layout)
	if err != nil {
		return fmt.Errorf("ticketctl: read layout: %w", err)
	}
	var doc layoutDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("ticketctl: parse layout: %w", err)
	}
	if len(doc.Widgets) == 0 {
		return errors.New("ticketctl: layout defines no widgets")
	}
	registry, err := console.NewRegistry(console.NewChartRenderer())
	if err != nil {
		return err
	}
	if _, err := console.NewWidgetBoard(console.WidgetBoardOptions{Registry: registry, Layout: doc.Widgets}); err != nil {
		return fmt.Errorf("ticketctl: %s: %w", filepath.Base(v.Layout), err)
	}
	fmt.Fprintf(stdout, "%s: %d widgets ok\n", filepath.Base(v.Layout), len(doc.Widgets))
	return nil
}

type widgetsScaffoldCmd struct {
	Definition string   `required:"" help:"Widget definition code."`
	Name       string   `required:"" help:"Human name; the instance id is derived from it."`
	Area       string   `default:"main" help:"Dashboard area."`
	Scope      string   `help:"Restrict to one dashboard scope (admin or host)."`
	Role       []string `help:"Roles allowed to see the widget."`
}

func (s *widgetsScaffoldCmd) Run() error {
	registry, err := console.NewRegistry(console.NewChartRenderer())
	if err != nil {
		return err
	}
	if _, ok := registry.Definition(s.Definition); !ok {
		return fmt.Errorf("ticketctl: unknown widget definition %s", s.Definition)
	}
	switch console.StatsScope(s.Scope) {
	case "", console.ScopeAdmin, console.ScopeHost:
	default:
		return fmt.Errorf("ticketctl: unknown scope %s", s.Scope)
	}
	instance := console.WidgetInstance{
		ID:           strcase.ToKebab(s.Name),
		DefinitionID: s.Definition,
		Area:         s.Area,
		Scope:        console.StatsScope(s.Scope),
		Roles:        s.Role,
	}
	return yaml.NewEncoder(stdout).Encode(layoutDocument{Widgets: []console.WidgetInstance{instance}})
}

// writeDocument encodes v as indented JSON or as YAML keyed by its JSON names.
func writeDocument(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}
