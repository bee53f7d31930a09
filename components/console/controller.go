package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrForbidden is returned when the viewer's role may not see a page.
	ErrForbidden = errors.New("console: forbidden")
	// ErrNotFound is returned for unknown lists, forms or shells.
	ErrNotFound = errors.New("console: not found")
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// ControllerOptions wires the controller's collaborators.
type ControllerOptions struct {
	Lists      *ListCatalog
	Forms      *FormRegistry
	Stats      StatsRepository
	Widgets    *WidgetBoard
	AdminShell *NavShell
	HostShell  *NavShell
	Renderer   Renderer
	Refresh    RefreshPublisher
	Logger     *slog.Logger
	Telemetry  Telemetry
	Now        func() time.Time
}

// Controller builds page data for every console route. It is transport
// agnostic; gorouter and httpapi adapt it to HTTP.
type Controller struct {
	opts ControllerOptions
}

// PageData is the template context of a console page.
type PageData struct {
	Title     string            `json:"title"`
	Path      string            `json:"path"`
	Viewer    ViewerContext     `json:"-"`
	Nav       NavView           `json:"nav"`
	Toasts    []Toast           `json:"toasts"`
	List      *ListSnapshot     `json:"list,omitempty"`
	Dashboard *DashboardPayload `json:"dashboard,omitempty"`
	Form      *FormView         `json:"form,omitempty"`
	Status    int               `json:"status"`
	Message   string            `json:"message,omitempty"`
}

// DashboardPayload is the rendered dashboard state.
type DashboardPayload struct {
	Stats   DashboardStats              `json:"stats"`
	Widgets map[string][]RenderedWidget `json:"widgets"`
}

// ExportFile is a generated download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// FormOutcome is the result of a form POST. Redirect is set after success.
type FormOutcome struct {
	Redirect string
	Page     PageData
}

// NewController validates options and applies defaults.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Lists == nil {
		return nil, errors.New("console: list catalog is required")
	}
	if opts.Forms == nil {
		opts.Forms = NewFormRegistry()
	}
	if opts.AdminShell == nil {
		opts.AdminShell = NewAdminShell(opts.Logger)
	}
	if opts.HostShell == nil {
		opts.HostShell = NewHostShell(nil, opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Controller{opts: opts}, nil
}

// Shell returns the navigation shell for code.
func (c *Controller) Shell(code string) (*NavShell, error) {
	switch code {
	case ShellAdmin:
		return c.opts.AdminShell, nil
	case ShellHost:
		return c.opts.HostShell, nil
	}
	return nil, fmt.Errorf("%w: shell %s", ErrNotFound, code)
}

// Navigation renders a shell for the viewer at currentPath.
func (c *Controller) Navigation(ctx context.Context, viewer ViewerContext, shell, currentPath string) (NavView, error) {
	nav, err := c.Shell(shell)
	if err != nil {
		return NavView{}, err
	}
	return nav.Render(ctx, viewer, currentPath), nil
}

// ListPage loads the list for code with filters and page from query.
func (c *Controller) ListPage(ctx context.Context, viewer ViewerContext, code string, query url.Values) (PageData, error) {
	entry, err := c.listEntry(viewer, code)
	if err != nil {
		return PageData{}, err
	}
	return c.listPage(ctx, viewer, entry, entry.Path, query)
}

// BoothPage lists the applications of the host's booth id.
func (c *Controller) BoothPage(ctx context.Context, viewer ViewerContext, boothID string, query url.Values) (PageData, error) {
	entry, err := c.listEntry(viewer, ListHostBoothApplications)
	if err != nil {
		return PageData{}, err
	}
	scoped := url.Values{}
	for key, values := range query {
		scoped[key] = append([]string(nil), values...)
	}
	path := HostBasePath + "/booths"
	if boothID != "" {
		scoped.Set("boothId", boothID)
		path += "/" + url.PathEscape(boothID)
	}
	return c.listPage(ctx, viewer, entry, path, scoped)
}

// QueryKeys returns the request parameters list code reads. Unknown codes
// only read the notice parameter.
func (c *Controller) QueryKeys(code string) []string {
	keys := []string{"notice"}
	if entry, err := c.opts.Lists.Lookup(code); err == nil {
		keys = append(keys, entry.QueryKeys...)
	}
	return keys
}

// Lists returns the list catalog.
func (c *Controller) Lists() *ListCatalog {
	return c.opts.Lists
}

func (c *Controller) listEntry(viewer ViewerContext, code string) (ListEntry, error) {
	entry, err := c.opts.Lists.Lookup(code)
	if err != nil {
		return ListEntry{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !allowed(entry.Gate, viewer.Role) {
		return ListEntry{}, ErrForbidden
	}
	return entry, nil
}

func (c *Controller) listPage(ctx context.Context, viewer ViewerContext, entry ListEntry, path string, query url.Values) (PageData, error) {
	return c.page(ctx, viewer, entry.Shell, path, entry.Title, query, func(ctx context.Context, toasts Notifier, data *PageData) error {
		view := entry.New(ListOptions{Logger: c.opts.Logger, Notifier: toasts, Telemetry: c.opts.Telemetry})
		// Fetch failures leave an empty list and an error toast.
		_ = view.Load(ctx, query)
		snap := view.Snapshot()
		data.List = &snap
		return nil
	})
}

// ListSnapshot loads a list and returns its state plus raised toasts.
func (c *Controller) ListSnapshot(ctx context.Context, viewer ViewerContext, code string, query url.Values) (ListSnapshot, []Toast, error) {
	entry, err := c.listEntry(viewer, code)
	if err != nil {
		return ListSnapshot{}, nil, err
	}
	toasts := NewToastQueue()
	view := entry.New(ListOptions{Logger: c.opts.Logger, Notifier: toasts, Telemetry: c.opts.Telemetry})
	loadErr := view.Load(ContextWithViewer(ctx, viewer), query)
	if errors.Is(loadErr, ErrSuperseded) {
		loadErr = nil
	}
	return view.Snapshot(), toasts.Drain(), loadErr
}

// ExportList exports the rows of the current page of a list as xlsx.
func (c *Controller) ExportList(ctx context.Context, viewer ViewerContext, code string, query url.Values) (ExportFile, error) {
	snap, _, err := c.ListSnapshot(ctx, viewer, code, query)
	if err != nil {
		return ExportFile{}, err
	}
	data, err := ExportSnapshot(snap)
	if err != nil {
		return ExportFile{}, err
	}
	c.opts.Telemetry.Record(ctx, "console.list.export", map[string]any{"list": code, "rows": len(snap.Rows)})
	return ExportFile{
		Name:        ExportFileName(code, c.opts.Now()),
		ContentType: ExportContentType,
		Data:        data,
	}, nil
}

// DashboardPage loads the statistics dashboard for scope.
func (c *Controller) DashboardPage(ctx context.Context, viewer ViewerContext, scope StatsScope) (PageData, error) {
	shell, path, title, gate := ShellAdmin, AdminBasePath, "Dashboard", PermissionGate(HasAdminPermission)
	if scope == ScopeHost {
		shell, path, title, gate = ShellHost, HostBasePath, "Host dashboard", Role.Known
	}
	if !gate(viewer.Role) {
		return PageData{}, ErrForbidden
	}
	return c.page(ctx, viewer, shell, path, title, nil, func(ctx context.Context, toasts Notifier, data *PageData) error {
		stats := NewDashboardView(scope, c.opts.Stats, ListOptions{
			Logger:    c.opts.Logger,
			Notifier:  toasts,
			Telemetry: c.opts.Telemetry,
		}).Load(ctx)
		payload := &DashboardPayload{Stats: stats}
		if c.opts.Widgets != nil {
			payload.Widgets = c.opts.Widgets.Render(ctx, viewer, stats)
		}
		data.Dashboard = payload
		return nil
	})
}

// FormPage opens the editor for form; an empty id opens create mode.
func (c *Controller) FormPage(ctx context.Context, viewer ViewerContext, form, id string, query url.Values) (PageData, error) {
	res, err := c.form(viewer, form)
	if err != nil {
		return PageData{}, err
	}
	return c.page(ctx, viewer, ShellAdmin, res.ReturnPath(), res.Title(), query, func(ctx context.Context, toasts Notifier, data *PageData) error {
		view, err := res.Open(ctx, id, c.formOptions(toasts))
		if err != nil {
			return err
		}
		data.Form = &view
		data.Title = view.Title
		return nil
	})
}

// SubmitForm saves the posted values. On success the outcome carries a
// redirect to the list; otherwise the form page with the submitted values.
func (c *Controller) SubmitForm(ctx context.Context, viewer ViewerContext, form, id string, values url.Values) (FormOutcome, error) {
	res, err := c.form(viewer, form)
	if err != nil {
		return FormOutcome{}, err
	}
	var result FormResult
	page, err := c.page(ctx, viewer, ShellAdmin, res.ReturnPath(), res.Title(), nil, func(ctx context.Context, toasts Notifier, data *PageData) error {
		r, err := res.Submit(ctx, id, values, c.formOptions(toasts))
		if err != nil {
			return err
		}
		result = r
		if !r.Saved {
			data.Form = &r.Form
			data.Title = r.Form.Title
			data.Status = http.StatusUnprocessableEntity
		}
		return nil
	})
	if err != nil {
		return FormOutcome{}, err
	}
	if result.Saved {
		notice := "updated"
		if id == "" {
			notice = "created"
		}
		return FormOutcome{Redirect: withNotice(result.Redirect, notice)}, nil
	}
	return FormOutcome{Page: page}, nil
}

// DeleteForm deletes id and returns the list path to redirect to.
func (c *Controller) DeleteForm(ctx context.Context, viewer ViewerContext, form, id string) (string, []Toast, error) {
	res, err := c.form(viewer, form)
	if err != nil {
		return "", nil, err
	}
	toasts := NewToastQueue()
	if err := res.Delete(ContextWithViewer(ctx, viewer), id, c.formOptions(toasts)); err != nil {
		return "", toasts.Drain(), err
	}
	return withNotice(res.ReturnPath(), "deleted"), toasts.Drain(), nil
}

// Render writes the page through the template renderer.
func (c *Controller) Render(out io.Writer, data PageData) error {
	if c.opts.Renderer == nil {
		return errors.New("console: renderer not configured")
	}
	var buf bytes.Buffer
	if _, err := c.opts.Renderer.Render("page", templateContext(data), &buf); err != nil {
		return fmt.Errorf("console: render page: %w", err)
	}
	_, err := out.Write(buf.Bytes())
	return err
}

// RenderError writes the error page for err.
func (c *Controller) RenderError(out io.Writer, viewer ViewerContext, err error) int {
	status := HTTPStatus(err)
	data := PageData{
		Title:   http.StatusText(status),
		Viewer:  viewer,
		Status:  status,
		Message: publicMessage(status),
	}
	if c.opts.Renderer == nil {
		fmt.Fprintf(out, "%d %s", status, data.Message)
		return status
	}
	if _, renderErr := c.opts.Renderer.Render("error", templateContext(data), out); renderErr != nil {
		c.opts.Logger.Error("render error page failed", "error", renderErr)
	}
	return status
}

// HTTPStatus maps controller errors to status codes.
func HTTPStatus(err error) int {
	var auth unauthorizedError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, errUnknownList), errors.Is(err, errUnknownForm):
		return http.StatusNotFound
	case errors.As(err, &auth) && auth.Unauthorized():
		return http.StatusUnauthorized
	case errors.Is(err, errDeleteNotAllowed), errors.Is(err, errCreateNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusBadGateway
	}
}

func publicMessage(status int) string {
	switch status {
	case http.StatusForbidden:
		return "You do not have access to this page."
	case http.StatusNotFound:
		return "The page you requested does not exist."
	case http.StatusUnauthorized:
		return sessionExpiredMessage
	default:
		return "Something went wrong while talking to the ticketing service."
	}
}

type contentLoader func(ctx context.Context, toasts Notifier, data *PageData) error

// page renders the navigation shell and the page content concurrently.
func (c *Controller) page(ctx context.Context, viewer ViewerContext, shell, path, title string, query url.Values, load contentLoader) (PageData, error) {
	ctx = ContextWithViewer(ctx, viewer)
	toasts := NewToastQueue()
	data := PageData{Title: title, Path: path, Viewer: viewer, Status: http.StatusOK}
	if notice := noticeMessage(query.Get("notice")); notice != "" {
		toasts.Notify(ctx, ToastSuccess, notice)
	}

	nav, err := c.Shell(shell)
	if err != nil {
		return PageData{}, err
	}
	var navView NavView
	var g errgroup.Group
	g.Go(func() error {
		navView = nav.Render(ctx, viewer, path)
		return nil
	})
	g.Go(func() error {
		return load(ctx, toasts, &data)
	})
	if err := g.Wait(); err != nil {
		return PageData{}, err
	}
	data.Nav = navView
	data.Toasts = toasts.Drain()
	return data, nil
}

func (c *Controller) form(viewer ViewerContext, code string) (FormResource, error) {
	res, err := c.opts.Forms.Lookup(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !allowed(res.Gate(), viewer.Role) {
		return nil, ErrForbidden
	}
	return res, nil
}

func (c *Controller) formOptions(toasts Notifier) FormOptions {
	return FormOptions{
		Logger:    c.opts.Logger,
		Notifier:  toasts,
		Telemetry: c.opts.Telemetry,
		Refresh:   c.opts.Refresh,
	}
}

func allowed(gate PermissionGate, role Role) bool {
	if gate == nil {
		return role.Known()
	}
	return gate(role)
}

func withNotice(path, notice string) string {
	if path == "" {
		path = AdminBasePath
	}
	return path + "?notice=" + url.QueryEscape(notice)
}

func noticeMessage(notice string) string {
	switch notice {
	case "created":
		return "Saved. The new entry was created."
	case "updated":
		return "Saved. Your changes were applied."
	case "deleted":
		return "Deleted."
	}
	return ""
}
