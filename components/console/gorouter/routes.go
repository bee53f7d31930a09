package gorouter

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
	"github.com/goliatone/go-ticketing-dashboard/components/console/commands"
	"github.com/goliatone/go-ticketing-dashboard/components/console/queries"
)

// ViewerResolver converts a router.Context into a console.ViewerContext.
type ViewerResolver func(router.Context) console.ViewerContext

// Commands are the write operations behind the form routes. Nil entries are
// built from the controller.
type Commands struct {
	Submit gocommand.Commander[commands.SubmitFormInput]
	Delete gocommand.Commander[commands.DeleteEntityInput]
}

// Queries are the read operations behind the dashboards and JSON routes.
type Queries struct {
	Dashboard  gocommand.Querier[queries.DashboardInput, console.PageData]
	List       gocommand.Querier[queries.ListInput, queries.ListResult]
	Navigation gocommand.Querier[queries.NavigationInput, console.NavView]
}

// Config wires go-router with the console controller.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *console.Controller
	Commands   Commands
	Queries    Queries
	Broadcast  *console.BroadcastHub
	// Sessions resolves viewers from the Authorization header or session
	// cookie when ViewerResolver is nil, and clears the cookie on logout.
	Sessions       *console.TokenViewerResolver
	ViewerResolver ViewerResolver
	Routes         RouteConfig
	Logger         *slog.Logger
}

// RouteConfig customizes auxiliary endpoint paths.
type RouteConfig struct {
	Logout      string
	AfterLogout string
	ListAPI     string
	NavAPI      string
	WebSocket   string
}

// Register mounts the admin and host console routes, JSON reads and the
// refresh WebSocket on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	h := newHandlers(cfg)
	r := cfg.Router
	routes := defaultRouteConfig(cfg.Routes)

	admin := r.Group(console.AdminBasePath)
	admin.Get("/", router.WrapHandler(h.dashboard(console.ScopeAdmin)))
	admin.Get("/settings", router.WrapHandler(h.formPage(console.FormSettings, false)))
	admin.Post("/settings", router.WrapHandler(h.submitForm(console.FormSettings, false)))
	admin.Get("/creators/new", router.WrapHandler(h.formPage(console.FormCreators, false)))
	admin.Post("/creators/new", router.WrapHandler(h.submitForm(console.FormCreators, false)))
	admin.Get("/banners/new", router.WrapHandler(h.formPage(console.FormBanners, false)))
	admin.Post("/banners/new", router.WrapHandler(h.submitForm(console.FormBanners, false)))
	admin.Get("/:list/export", router.WrapHandler(h.export(console.AdminBasePath)))
	admin.Get("/banners/:id", router.WrapHandler(h.formPage(console.FormBanners, true)))
	admin.Post("/banners/:id", router.WrapHandler(h.submitForm(console.FormBanners, true)))
	admin.Post("/banners/:id/delete", router.WrapHandler(h.deleteEntity(console.FormBanners)))
	admin.Get("/:list", router.WrapHandler(h.listPage(console.AdminBasePath)))

	creators := r.Group("/creators")
	creators.Get("/:id", router.WrapHandler(h.formPage(console.FormCreators, true)))
	creators.Post("/:id", router.WrapHandler(h.submitForm(console.FormCreators, true)))
	creators.Post("/:id/delete", router.WrapHandler(h.deleteEntity(console.FormCreators)))

	host := r.Group(console.HostBasePath)
	host.Get("/", router.WrapHandler(h.dashboard(console.ScopeHost)))
	host.Get("/booths", router.WrapHandler(h.boothPage(false)))
	host.Get("/booths/:id", router.WrapHandler(h.boothPage(true)))
	host.Get("/:list/export", router.WrapHandler(h.export(console.HostBasePath)))
	host.Get("/:list", router.WrapHandler(h.listPage(console.HostBasePath)))

	r.Get(routes.Logout, router.WrapHandler(h.logout(routes.AfterLogout)))
	r.Post(routes.Logout, router.WrapHandler(h.logout(routes.AfterLogout)))
	r.Get(routes.ListAPI, router.WrapHandler(h.listAPI))
	r.Get(routes.NavAPI, router.WrapHandler(h.navAPI))

	if cfg.Broadcast != nil {
		registerWebSocket(r, cfg.Broadcast, routes.WebSocket, h.viewer)
	}
	return nil
}

type handlerFunc = func(router.Context) error

type handlers struct {
	controller *console.Controller
	commands   Commands
	queries    Queries
	sessions   *console.TokenViewerResolver
	viewer     ViewerResolver
	logger     *slog.Logger
}

func newHandlers[T any](cfg Config[T]) *handlers {
	h := &handlers{
		controller: cfg.Controller,
		commands:   cfg.Commands,
		queries:    cfg.Queries,
		sessions:   cfg.Sessions,
		viewer:     cfg.ViewerResolver,
		logger:     cfg.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.sessions == nil {
		h.sessions = console.NewTokenViewerResolver("", "")
	}
	if h.viewer == nil {
		sessions := h.sessions
		h.viewer = func(ctx router.Context) console.ViewerContext {
			return sessions.Resolve(ctx.Header("Authorization"), ctx.Header("Cookie"))
		}
	}
	if h.commands.Submit == nil {
		h.commands.Submit = commands.NewSubmitFormCommand(cfg.Controller, nil)
	}
	if h.commands.Delete == nil {
		h.commands.Delete = commands.NewDeleteEntityCommand(cfg.Controller, nil)
	}
	if h.queries.Dashboard == nil {
		h.queries.Dashboard = queries.NewDashboardQuery(cfg.Controller)
	}
	if h.queries.List == nil {
		h.queries.List = queries.NewListQuery(cfg.Controller)
	}
	if h.queries.Navigation == nil {
		h.queries.Navigation = queries.NewNavigationQuery(cfg.Controller)
	}
	return h
}

func (h *handlers) dashboard(scope console.StatsScope) handlerFunc {
	return func(ctx router.Context) error {
		viewer := h.viewer(ctx)
		data, err := h.queries.Dashboard.Query(ctx.Context(), queries.DashboardInput{Viewer: viewer, Scope: scope})
		if err != nil {
			return h.renderError(ctx, viewer, err)
		}
		return h.render(ctx, viewer, data)
	}
}

func (h *handlers) listPage(base string) handlerFunc {
	return func(ctx router.Context) error {
		viewer := h.viewer(ctx)
		entry, err := h.controller.Lists().LookupPath(base + "/" + ctx.Param("list"))
		if err != nil {
			return h.renderError(ctx, viewer, errors.Join(console.ErrNotFound, err))
		}
		query := queryValues(h.controller.QueryKeys(entry.Code), queryLookup(ctx))
		data, err := h.controller.ListPage(ctx.Context(), viewer, entry.Code, query)
		if err != nil {
			return h.renderError(ctx, viewer, err)
		}
		return h.render(ctx, viewer, data)
	}
}

func (h *handlers) boothPage(withID bool) handlerFunc {
	return func(ctx router.Context) error {
		viewer := h.viewer(ctx)
		id := ""
		if withID {
			id = ctx.Param("id")
		}
		query := queryValues(h.controller.QueryKeys(console.ListHostBoothApplications), queryLookup(ctx))
		data, err := h.controller.BoothPage(ctx.Context(), viewer, id, query)
		if err != nil {
			return h.renderError(ctx, viewer, err)
		}
		return h.render(ctx, viewer, data)
	}
}

func (h *handlers) export(base string) handlerFunc {
	return func(ctx router.Context) error {
		viewer := h.viewer(ctx)
		entry, err := h.controller.Lists().LookupPath(base + "/" + ctx.Param("list"))
		if err != nil {
			return h.renderError(ctx, viewer, errors.Join(console.ErrNotFound, err))
		}
		query := queryValues(h.controller.QueryKeys(entry.Code), queryLookup(ctx))
		file, err := h.controller.ExportList(ctx.Context(), viewer, entry.Code, query)
		if err != nil {
			return h.renderError(ctx, viewer, err)
		}
		ctx.SetHeader("Content-Type", file.ContentType)
		ctx.SetHeader("Content-Disposition", attachment(file.Name))
		return ctx.Send(file.Data)
	}
}

func (h *handlers) formPage(form string, withID bool) handlerFunc {
	return func(ctx router.Context) error {
		viewer := h.viewer(ctx)
		id := ""
		if withID {
			id = ctx.Param("id")
		}
		query := queryValues([]string{"notice"}, queryLookup(ctx))
		data, err := h.controller.FormPage(ctx.Context(), viewer, form, id, query)
		if err != nil {
			return h.renderError(ctx, viewer, err)
		}
		return h.render(ctx, viewer, data)
	}
}

func (h *handlers) submitForm(form string, withID bool) handlerFunc {
	return func(ctx router.Context) error {
		viewer := h.viewer(ctx)
		id := ""
		if withID {
			id = ctx.Param("id")
		}
		values, err := url.ParseQuery(string(ctx.Body()))
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var outcome console.FormOutcome
		err = h.commands.Submit.Execute(ctx.Context(), commands.SubmitFormInput{
			Viewer:  viewer,
			Form:    form,
			ID:      id,
			Values:  values,
			Outcome: &outcome,
		})
		if err != nil {
			return h.renderError(ctx, viewer, err)
		}
		if outcome.Redirect != "" {
			return redirect(ctx, outcome.Redirect)
		}
		return h.render(ctx, viewer, outcome.Page)
	}
}

func (h *handlers) deleteEntity(form string) handlerFunc {
	return func(ctx router.Context) error {
		viewer := h.viewer(ctx)
		var target string
		err := h.commands.Delete.Execute(ctx.Context(), commands.DeleteEntityInput{
			Viewer:   viewer,
			Form:     form,
			ID:       ctx.Param("id"),
			Redirect: &target,
		})
		if err != nil {
			return h.renderError(ctx, viewer, err)
		}
		return redirect(ctx, target)
	}
}

func (h *handlers) logout(target string) handlerFunc {
	return func(ctx router.Context) error {
		ctx.SetHeader("Set-Cookie", h.sessions.ExpiredSessionCookie())
		return redirect(ctx, target)
	}
}

func (h *handlers) listAPI(ctx router.Context) error {
	code := ctx.Param("code")
	result, err := h.queries.List.Query(ctx.Context(), queries.ListInput{
		Viewer: h.viewer(ctx),
		Code:   code,
		Query:  queryValues(h.controller.QueryKeys(code), queryLookup(ctx)),
	})
	if err != nil && result.List.Code == "" {
		return respondError(ctx, console.HTTPStatus(err), err)
	}
	return ctx.JSON(http.StatusOK, result)
}

func (h *handlers) navAPI(ctx router.Context) error {
	view, err := h.queries.Navigation.Query(ctx.Context(), queries.NavigationInput{
		Viewer: h.viewer(ctx),
		Shell:  ctx.Param("shell"),
		Path:   ctx.Query("path"),
	})
	if err != nil {
		return respondError(ctx, console.HTTPStatus(err), err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (h *handlers) render(ctx router.Context, viewer console.ViewerContext, data console.PageData) error {
	var buf bytes.Buffer
	if err := h.controller.Render(&buf, data); err != nil {
		h.logger.Error("render page failed", "path", data.Path, "error", err)
		return h.renderError(ctx, viewer, err)
	}
	status := data.Status
	if status == 0 {
		status = http.StatusOK
	}
	return sendHTML(ctx, status, buf.Bytes())
}

func (h *handlers) renderError(ctx router.Context, viewer console.ViewerContext, err error) error {
	var buf bytes.Buffer
	status := h.controller.RenderError(&buf, viewer, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("console request failed", "status", status, "error", err)
	} else {
		h.logger.Warn("console request rejected", "status", status, "error", err)
	}
	return sendHTML(ctx, status, buf.Bytes())
}

const upgradeViewerKey = "console_viewer"

// registerWebSocket streams refresh events to signed in viewers. The viewer is
// resolved before the upgrade; go-router's default config enforces same-origin.
func registerWebSocket[T any](r router.Router[T], hub *console.BroadcastHub, path string, resolve ViewerResolver) {
	cfg := router.DefaultWebSocketConfig()
	cfg.OnPreUpgrade = func(ctx router.Context) (router.UpgradeData, error) {
		viewer := resolve(ctx)
		if !viewer.Role.Known() {
			return nil, console.ErrForbidden
		}
		return router.UpgradeData{upgradeViewerKey: viewer}, nil
	}
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		viewer, _ := router.GetUpgradeDataWithDefault(ws, upgradeViewerKey, console.ViewerContext{}).(console.ViewerContext)
		if !viewer.Role.Known() {
			return ws.CloseWithStatus(websocket.ClosePolicyViolation, console.ErrForbidden.Error())
		}
		events, cancel := hub.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Logout == "" {
		routes.Logout = "/logout"
	}
	if routes.AfterLogout == "" {
		routes.AfterLogout = "/"
	}
	if routes.ListAPI == "" {
		routes.ListAPI = "/api/console/lists/:code"
	}
	if routes.NavAPI == "" {
		routes.NavAPI = "/api/console/nav/:shell"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/console/ws"
	}
	return routes
}
