package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
	"github.com/goliatone/go-ticketing-dashboard/pkg/backend"
	"github.com/goliatone/go-ticketing-dashboard/pkg/config"
	"github.com/goliatone/go-ticketing-dashboard/pkg/logging"
)

var demoViewer = console.ViewerContext{UserID: "demo", Email: "demo@example.com", Role: console.RoleAdmin}

// application holds the wired console collaborators.
type application struct {
	cfg        config.Config
	logger     *slog.Logger
	client     *backend.HTTPClient
	controller *console.Controller
	hub        *console.BroadcastHub
	sessions   *console.TokenViewerResolver
	closers    []func(context.Context) error
}

func loadConfig(path string, demo bool) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg.Demo = cfg.Demo || demo
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}
	if cfg.Demo {
		base, stop, err := startMockBackend(backend.NewMockServer(backend.DemoData(time.Now())))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, stop)
		cfg.API.BaseURL = base
		app.cfg = cfg
		logger.Info("demo backend started", "base_url", base)
	}

	client, err := backend.NewHTTPClient(backend.HTTPConfig{
		BaseURL:           cfg.API.BaseURL,
		Token:             cfg.API.Token,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		Logger:            logger,
	})
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.client = client

	telemetry := console.LogTelemetry{Logger: logger}
	sources := backend.NewListSources(client)
	lists, err := console.DefaultListCatalog(sources, cfg.UI.PageSize)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("ticketctl: list catalog: %w", err)
	}

	app.hub = console.NewBroadcastHub()
	chartCache := console.NewChartCache(cfg.Chart.CacheTTL, console.ChartCacheLimit(cfg.Chart.CacheSize))
	stopInvalidation := chartCache.InvalidateOn(app.hub)
	app.closers = append(app.closers, func(context.Context) error {
		stopInvalidation()
		return nil
	})
	charts := console.NewChartRenderer(
		console.WithChartCache(chartCache),
		console.WithChartTheme(cfg.Chart.Theme),
		console.WithChartAssetsHost(cfg.Chart.AssetsHost),
	)
	registry, err := console.NewRegistry(charts)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("ticketctl: widget registry: %w", err)
	}
	if err := registry.RegisterProvider(console.WidgetRecentActivity, console.NewRecentActivityProvider(sources.AccessLogs)); err != nil {
		app.Close(ctx)
		return nil, err
	}
	board, err := console.NewWidgetBoard(console.WidgetBoardOptions{
		Registry:  registry,
		Layout:    cfg.WidgetLayout(),
		Logger:    logger,
		Telemetry: telemetry,
	})
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("ticketctl: widget layout: %w", err)
	}

	renderer, err := console.NewTemplateRenderer()
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("ticketctl: templates: %w", err)
	}

	app.sessions = console.NewTokenViewerResolver(cfg.Auth.JWTSecret, cfg.Auth.CookieName)
	app.controller, err = console.NewController(console.ControllerOptions{
		Lists: lists,
		Forms: console.NewFormRegistry(
			console.NewCreatorResource(backend.NewResourceStore[console.Creator](client, console.EndpointCreators)),
			console.NewBannerResource(backend.NewResourceStore[console.Banner](client, console.EndpointBanners)),
			console.NewSettingsResource(backend.NewSettingsRepository(client)),
		),
		Stats:      backend.NewStatsRepository(client),
		Widgets:    board,
		AdminShell: console.NewAdminShell(logger),
		HostShell:  console.NewHostShell(backend.NewManagedBoothResolver(client), logger),
		Renderer:   renderer,
		Refresh:    app.hub,
		Logger:     logger,
		Telemetry:  telemetry,
	})
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	return app, nil
}

// cliViewer resolves the viewer for one-shot commands. Demo mode acts as an
// admin since the mock backend does not check tokens.
func (a *application) cliViewer(token string) console.ViewerContext {
	if token == "" {
		token = a.cfg.API.Token
	}
	viewer := a.sessions.Resolve("Bearer "+token, "")
	if viewer.Role.Known() {
		return viewer
	}
	if a.cfg.Demo {
		return demoViewer
	}
	return viewer
}

// Close stops the demo backend if one was started.
func (a *application) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

func startMockBackend(handler http.Handler) (string, func(context.Context) error, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("ticketctl: demo backend listen: %w", err)
	}
	server := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.Serve(listener)
	}()
	return "http://" + listener.Addr().String(), server.Shutdown, nil
}
