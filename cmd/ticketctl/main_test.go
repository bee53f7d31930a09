package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
	"github.com/goliatone/go-ticketing-dashboard/pkg/config"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := stdout
	stdout = buf
	t.Cleanup(func() { stdout = prev })
	return buf
}

func newDemoApp(t *testing.T) *application {
	t.Helper()
	cfg := config.Default()
	cfg.Demo = true
	app, err := newApplication(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func TestDemoApplicationExportsReservations(t *testing.T) {
	app := newDemoApp(t)
	ctx := console.ContextWithViewer(context.Background(), demoViewer)

	file, err := app.controller.ExportList(ctx, demoViewer, console.ListReservations, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.Name, console.ListReservations))

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 1+config.Default().UI.PageSize)
}

func TestDemoApplicationNavigationByRole(t *testing.T) {
	app := newDemoApp(t)
	ctx := context.Background()

	general := demoViewer
	general.Role = console.RoleGeneral
	view, err := app.controller.Navigation(ctx, general, console.ShellAdmin, "")
	require.NoError(t, err)
	assert.False(t, view.Visible)

	out := &bytes.Buffer{}
	printNav(out, view)
	assert.Equal(t, "admin: hidden\n", out.String())

	view, err = app.controller.Navigation(ctx, demoViewer, console.ShellAdmin, console.AdminBasePath)
	require.NoError(t, err)
	require.True(t, view.Visible)
	out.Reset()
	printNav(out, view)
	assert.Contains(t, out.String(), console.AdminBasePath)
}

func TestDemoApplicationRendersPages(t *testing.T) {
	app := newDemoApp(t)
	ctx := context.Background()

	data, err := app.controller.DashboardPage(ctx, demoViewer, console.ScopeAdmin)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	require.NoError(t, app.controller.Render(out, data))
	page := out.String()
	assert.Contains(t, page, `data-shell="admin"`)
	assert.Contains(t, page, "Creators")
	assert.Contains(t, page, `data-widget="`+console.WidgetStatCards+`"`)
	assert.Contains(t, page, `data-widget="`+console.WidgetSalesChart+`"`)

	out.Reset()
	general := demoViewer
	general.Role = console.RoleGeneral
	status := app.controller.RenderError(out, general, console.ErrForbidden)
	assert.Equal(t, 403, status)
	assert.Contains(t, out.String(), `data-status="403"`)
}

func TestCLIViewerFallsBackToDemoAdmin(t *testing.T) {
	app := newDemoApp(t)
	assert.Equal(t, console.RoleAdmin, app.cliViewer("").Role)

	token, err := app.sessions.Issue(console.ViewerContext{UserID: "u-7", Role: console.RoleEventManager}, 0)
	require.NoError(t, err)
	viewer := app.cliViewer(token)
	assert.Equal(t, "u-7", viewer.UserID)
	assert.Equal(t, console.RoleEventManager, viewer.Role)
}

func TestWriteDocumentFormats(t *testing.T) {
	stats := console.DashboardStats{Scope: console.ScopeHost, SalesFailed: true}

	out := &bytes.Buffer{}
	require.NoError(t, writeDocument(out, "yaml", stats))
	assert.Contains(t, out.String(), "scope: host")
	assert.Contains(t, out.String(), "salesFailed: true")

	out.Reset()
	require.NoError(t, writeDocument(out, "json", stats))
	assert.Contains(t, out.String(), `"scope": "host"`)
}

func TestWidgetsValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`widgets:
  - id: sales
    definition: console.widget.sales_chart
    area: main
    configuration:
      chart_type: bar
`), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`widgets:
  - id: sales
    definition: console.widget.sales_chart
    area: main
    configuration:
      chart_type: pie
`), 0o644))

	buf := captureStdout(t)
	require.NoError(t, (&widgetsValidateCmd{Layout: good}).Run())
	assert.Contains(t, buf.String(), "good.yaml: 1 widgets ok")

	assert.Error(t, (&widgetsValidateCmd{Layout: bad}).Run())
}

func TestWidgetsScaffold(t *testing.T) {
	buf := captureStdout(t)
	cmd := &widgetsScaffoldCmd{Definition: console.WidgetCheckinGauge, Name: "Door Rate", Area: "sidebar"}
	require.NoError(t, cmd.Run())
	assert.Contains(t, buf.String(), "id: door-rate")
	assert.Contains(t, buf.String(), "definition: "+console.WidgetCheckinGauge)

	cmd.Definition = "console.widget.unknown"
	assert.Error(t, cmd.Run())
}
