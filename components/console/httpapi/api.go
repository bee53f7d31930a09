package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
	"github.com/goliatone/go-ticketing-dashboard/components/console/commands"
	"github.com/goliatone/go-ticketing-dashboard/components/console/queries"
)

// Handlers exposes the console over net/http, backed by the shared
// controller, commands and queries.
type Handlers struct {
	Controller *console.Controller
	Submit     gocommand.Commander[commands.SubmitFormInput]
	Delete     gocommand.Commander[commands.DeleteEntityInput]
	Refresh    gocommand.Commander[commands.PublishRefreshInput]
	Dashboard  gocommand.Querier[queries.DashboardInput, console.PageData]
	List       gocommand.Querier[queries.ListInput, queries.ListResult]
	Navigation gocommand.Querier[queries.NavigationInput, console.NavView]
	Hub        *console.BroadcastHub
	Sessions   *console.TokenViewerResolver
	Logger     *slog.Logger
}

// NewHandlers fills unset commands and queries from the controller.
func NewHandlers(h Handlers) (*Handlers, error) {
	if h.Controller == nil {
		return nil, errors.New("httpapi: controller is required")
	}
	if h.Sessions == nil {
		h.Sessions = console.NewTokenViewerResolver("", "")
	}
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
	if h.Submit == nil {
		h.Submit = commands.NewSubmitFormCommand(h.Controller, nil)
	}
	if h.Delete == nil {
		h.Delete = commands.NewDeleteEntityCommand(h.Controller, nil)
	}
	if h.Refresh == nil && h.Hub != nil {
		h.Refresh = commands.NewPublishRefreshCommand(h.Hub, nil)
	}
	if h.Dashboard == nil {
		h.Dashboard = queries.NewDashboardQuery(h.Controller)
	}
	if h.List == nil {
		h.List = queries.NewListQuery(h.Controller)
	}
	if h.Navigation == nil {
		h.Navigation = queries.NewNavigationQuery(h.Controller)
	}
	return &h, nil
}

// Routes mounts every console endpoint on a ServeMux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	admin := console.AdminBasePath

	mux.HandleFunc("GET "+admin+"/{$}", h.HandleDashboard(console.ScopeAdmin))
	mux.HandleFunc("GET "+admin, h.HandleDashboard(console.ScopeAdmin))
	mux.HandleFunc("GET "+admin+"/settings", h.HandleFormPage(console.FormSettings))
	mux.HandleFunc("POST "+admin+"/settings", h.HandleSubmit(console.FormSettings))
	mux.HandleFunc("GET "+admin+"/{list}", h.HandleListPage(admin))
	mux.HandleFunc("GET "+admin+"/{list}/{item}", h.handleAdminItem)
	mux.HandleFunc("POST "+admin+"/creators/new", h.HandleSubmit(console.FormCreators))
	mux.HandleFunc("POST "+admin+"/banners/{id}", h.HandleSubmit(console.FormBanners))
	mux.HandleFunc("POST "+admin+"/banners/{id}/delete", h.HandleDelete(console.FormBanners))

	mux.HandleFunc("GET /creators/{id}", h.HandleFormPage(console.FormCreators))
	mux.HandleFunc("POST /creators/{id}", h.HandleSubmit(console.FormCreators))
	mux.HandleFunc("POST /creators/{id}/delete", h.HandleDelete(console.FormCreators))

	host := console.HostBasePath
	mux.HandleFunc("GET "+host+"/{$}", h.HandleDashboard(console.ScopeHost))
	mux.HandleFunc("GET "+host, h.HandleDashboard(console.ScopeHost))
	mux.HandleFunc("GET "+host+"/booths", h.HandleBoothPage)
	mux.HandleFunc("GET "+host+"/{list}", h.HandleListPage(host))
	mux.HandleFunc("GET "+host+"/{list}/{item}", h.handleHostItem)

	mux.HandleFunc("GET /logout", h.HandleLogout)
	mux.HandleFunc("POST /logout", h.HandleLogout)
	mux.HandleFunc("GET /api/console/lists/{code}", h.HandleListJSON)
	mux.HandleFunc("GET /api/console/nav/{shell}", h.HandleNavigationJSON)
	if h.Refresh != nil {
		mux.HandleFunc("POST /api/console/refresh", h.HandleRefresh)
	}
	if h.Hub != nil {
		mux.HandleFunc("GET /console/events", h.requireViewer(h.Hub.ServeSSE))
		mux.HandleFunc("GET /console/ws", h.requireViewer(h.Hub.ServeWebSocket))
	}
	return mux
}

// HandleDashboard renders the statistics dashboard for scope.
func (h *Handlers) HandleDashboard(scope console.StatsScope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := h.viewer(r)
		data, err := h.Dashboard.Query(r.Context(), queries.DashboardInput{Viewer: viewer, Scope: scope})
		if err != nil {
			h.renderError(w, viewer, err)
			return
		}
		h.render(w, viewer, data)
	}
}

// HandleListPage renders the list mounted at base/{list}.
func (h *Handlers) HandleListPage(base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := h.viewer(r)
		entry, err := h.lookup(base, r.PathValue("list"))
		if err != nil {
			h.renderError(w, viewer, err)
			return
		}
		data, err := h.Controller.ListPage(r.Context(), viewer, entry.Code, r.URL.Query())
		if err != nil {
			h.renderError(w, viewer, err)
			return
		}
		h.render(w, viewer, data)
	}
}

// HandleBoothPage renders the host's booth applications, optionally scoped
// to the {id} path value.
func (h *Handlers) HandleBoothPage(w http.ResponseWriter, r *http.Request) {
	viewer := h.viewer(r)
	data, err := h.Controller.BoothPage(r.Context(), viewer, r.PathValue("item"), r.URL.Query())
	if err != nil {
		h.renderError(w, viewer, err)
		return
	}
	h.render(w, viewer, data)
}

// HandleExport downloads the current page of the list at base/{list}.
func (h *Handlers) HandleExport(base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := h.viewer(r)
		entry, err := h.lookup(base, r.PathValue("list"))
		if err != nil {
			h.renderError(w, viewer, err)
			return
		}
		file, err := h.Controller.ExportList(r.Context(), viewer, entry.Code, r.URL.Query())
		if err != nil {
			h.renderError(w, viewer, err)
			return
		}
		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(file.Data)
	}
}

// HandleFormPage opens the editor; a missing or "new" id opens create mode.
func (h *Handlers) HandleFormPage(form string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := h.viewer(r)
		data, err := h.Controller.FormPage(r.Context(), viewer, form, formID(r), r.URL.Query())
		if err != nil {
			h.renderError(w, viewer, err)
			return
		}
		h.render(w, viewer, data)
	}
}

// HandleSubmit saves a posted form and redirects back to its list.
func (h *Handlers) HandleSubmit(form string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := h.viewer(r)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var outcome console.FormOutcome
		err := h.Submit.Execute(r.Context(), commands.SubmitFormInput{
			Viewer:  viewer,
			Form:    form,
			ID:      formID(r),
			Values:  r.PostForm,
			Outcome: &outcome,
		})
		if err != nil {
			h.renderError(w, viewer, err)
			return
		}
		if outcome.Redirect != "" {
			http.Redirect(w, r, outcome.Redirect, http.StatusSeeOther)
			return
		}
		h.render(w, viewer, outcome.Page)
	}
}

// HandleDelete deletes {id} and redirects to the list.
func (h *Handlers) HandleDelete(form string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := h.viewer(r)
		var target string
		err := h.Delete.Execute(r.Context(), commands.DeleteEntityInput{
			Viewer:   viewer,
			Form:     form,
			ID:       r.PathValue("id"),
			Redirect: &target,
		})
		if err != nil {
			h.renderError(w, viewer, err)
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// HandleLogout clears the session cookie.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Set-Cookie", h.Sessions.ExpiredSessionCookie())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleListJSON returns the list snapshot and toasts as JSON. Backend
// failures still answer 200 with the empty snapshot and its error toast.
func (h *Handlers) HandleListJSON(w http.ResponseWriter, r *http.Request) {
	result, err := h.List.Query(r.Context(), queries.ListInput{
		Viewer: h.viewer(r),
		Code:   r.PathValue("code"),
		Query:  r.URL.Query(),
	})
	if err != nil && result.List.Code == "" {
		writeJSONError(w, console.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleNavigationJSON renders a shell for ?path=.
func (h *Handlers) HandleNavigationJSON(w http.ResponseWriter, r *http.Request) {
	view, err := h.Navigation.Query(r.Context(), queries.NavigationInput{
		Viewer: h.viewer(r),
		Shell:  r.PathValue("shell"),
		Path:   r.URL.Query().Get("path"),
	})
	if err != nil {
		writeJSONError(w, console.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRefresh publishes a refresh event. Admin only.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !console.HasAdminPermission(h.viewer(r).Role) {
		writeJSONError(w, http.StatusForbidden, console.ErrForbidden)
		return
	}
	var payload commands.PublishRefreshInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Refresh.Execute(r.Context(), payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) handleAdminItem(w http.ResponseWriter, r *http.Request) {
	list, item := r.PathValue("list"), r.PathValue("item")
	switch {
	case item == "export":
		h.HandleExport(console.AdminBasePath)(w, r)
	case list == "creators" && item == "new":
		h.HandleFormPage(console.FormCreators)(w, r)
	case list == "banners":
		h.HandleFormPage(console.FormBanners)(w, r)
	default:
		h.renderError(w, h.viewer(r), console.ErrNotFound)
	}
}

func (h *Handlers) handleHostItem(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.PathValue("list") == "booths":
		h.HandleBoothPage(w, r)
	case r.PathValue("item") == "export":
		h.HandleExport(console.HostBasePath)(w, r)
	default:
		h.renderError(w, h.viewer(r), console.ErrNotFound)
	}
}

func (h *Handlers) lookup(base, segment string) (console.ListEntry, error) {
	entry, err := h.Controller.Lists().LookupPath(base + "/" + segment)
	if err != nil {
		return console.ListEntry{}, errors.Join(console.ErrNotFound, err)
	}
	return entry, nil
}

func (h *Handlers) viewer(r *http.Request) console.ViewerContext {
	return h.Sessions.ResolveRequest(r)
}

// requireViewer rejects requests without a signed in console role.
func (h *Handlers) requireViewer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.viewer(r).Role.Known() {
			writeJSONError(w, http.StatusForbidden, console.ErrForbidden)
			return
		}
		next(w, r)
	}
}

func (h *Handlers) render(w http.ResponseWriter, viewer console.ViewerContext, data console.PageData) {
	var buf bytes.Buffer
	if err := h.Controller.Render(&buf, data); err != nil {
		h.Logger.Error("render page failed", "path", data.Path, "error", err)
		h.renderError(w, viewer, err)
		return
	}
	status := data.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) renderError(w http.ResponseWriter, viewer console.ViewerContext, err error) {
	var buf bytes.Buffer
	status := h.Controller.RenderError(&buf, viewer, err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("console request failed", "status", status, "error", err)
	} else {
		h.Logger.Warn("console request rejected", "status", status, "error", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func formID(r *http.Request) string {
	id := r.PathValue("id")
	if id == "" {
		id = r.PathValue("item")
	}
	if strings.EqualFold(id, "new") {
		return ""
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
