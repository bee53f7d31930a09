package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-ticketing-dashboard/components/console/gorouter"
	"github.com/goliatone/go-ticketing-dashboard/components/console/httpapi"
	"github.com/goliatone/go-ticketing-dashboard/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr      string `help:"Listen address; overrides configuration."`
	Transport string `help:"HTTP stack to serve with." enum:"fiber,http" default:"fiber"`
}

func (s *serveCmd) Run(ctx context.Context, root *cli) error {
	app, err := root.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())
	slog.SetDefault(app.logger)
	if app.cfg.Demo {
		token, err := app.sessions.Issue(demoViewer, 24*time.Hour)
		if err != nil {
			return fmt.Errorf("ticketctl: demo session: %w", err)
		}
		app.logger.Info("demo session issued", "cookie", app.sessions.CookieName()+"="+token)
	}

	addr := app.cfg.Addr
	if s.Addr != "" {
		addr = s.Addr
	}
	switch s.Transport {
	case "http":
		return s.serveHTTP(ctx, app, addr)
	default:
		return s.serveFiber(ctx, app, addr)
	}
}

func (s *serveCmd) serveFiber(ctx context.Context, app *application, addr string) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: app.controller,
		Broadcast:  app.hub,
		Sessions:   app.sessions,
		Logger:     app.logger,
	}); err != nil {
		return fmt.Errorf("ticketctl: register routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("console listening", "addr", addr, "transport", "fiber")
		errCh <- server.Serve(addr)
	}()

	select {
	case <-ctx.Done():
		if stopper, ok := any(server).(interface{ Shutdown(context.Context) error }); ok {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = stopper.Shutdown(shutdownCtx)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *serveCmd) serveHTTP(ctx context.Context, app *application, addr string) error {
	handlers, err := httpapi.NewHandlers(httpapi.Handlers{
		Controller: app.controller,
		Hub:        app.hub,
		Sessions:   app.sessions,
		Logger:     app.logger,
	})
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           logging.RequestLogger(app.logger)(handlers.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("console listening", "addr", addr, "transport", "http")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
