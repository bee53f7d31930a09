package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// Form resource codes.
const (
	FormCreators = "creators"
	FormBanners  = "banners"
	FormSettings = "settings"
)

var (
	errUnknownForm      = errors.New("console: unknown form")
	errDeleteNotAllowed = errors.New("console: delete is not supported for this form")
	errCreateNotAllowed = errors.New("console: create is not supported for this form")
)

// FieldType selects the input control for a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldNumber   FieldType = "number"
	FieldCheckbox FieldType = "checkbox"
	FieldTextarea FieldType = "textarea"
	FieldDate     FieldType = "date"
)

// FormField declares how one entity field is rendered and bound.
type FormField[T any] struct {
	Key      string
	Label    string
	Type     FieldType
	Required bool
	Help     string
	Get      func(T) string
	Set      func(*T, string) error
}

// FieldView is a rendered form input.
type FieldView struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Help     string    `json:"help,omitempty"`
	Value    string    `json:"value"`
	Checked  bool      `json:"checked,omitempty"`
}

// FormView is what the editor modal renders.
type FormView struct {
	Resource     string      `json:"resource"`
	Title        string      `json:"title"`
	State        EditorState `json:"state"`
	Action       string      `json:"action"`
	CancelURL    string      `json:"cancelUrl"`
	DeleteAction string      `json:"deleteAction,omitempty"`
	Fields       []FieldView `json:"fields"`
}

// FormOptions carries per-request collaborators for form handling.
type FormOptions struct {
	Logger    *slog.Logger
	Notifier  Notifier
	Telemetry Telemetry
	Refresh   RefreshPublisher
}

// FormResult reports the outcome of a form submission.
type FormResult struct {
	Saved    bool
	ID       string
	Redirect string
	Form     FormView
}

// FormResource is the type-erased editor surface used by transports.
type FormResource interface {
	Code() string
	Title() string
	Gate() PermissionGate
	ReturnPath() string
	Open(ctx context.Context, id string, opts FormOptions) (FormView, error)
	Submit(ctx context.Context, id string, values url.Values, opts FormOptions) (FormResult, error)
	Delete(ctx context.Context, id string, opts FormOptions) error
}

// Resource binds an entity store and its form fields into a FormResource.
// Singleton resources have exactly one record and are update-only.
type Resource[T any] struct {
	ResourceCode string
	Label        string
	ListCode     string
	ListPath     string
	Singleton    bool
	Permission   PermissionGate
	Store        EntityStore[T]
	Fields       []FormField[T]
	ID           func(T) string
	ItemPath     func(id string) string
	NewPath      string
	Defaults     func() T
}

// Code returns the resource code.
func (r *Resource[T]) Code() string { return r.ResourceCode }

// Title returns the human label.
func (r *Resource[T]) Title() string { return r.Label }

// Gate returns the permission required to use the form.
func (r *Resource[T]) Gate() PermissionGate {
	if r.Permission == nil {
		return HasAdminPermission
	}
	return r.Permission
}

// Open loads the entity for id, or prepares an empty draft when id is empty.
func (r *Resource[T]) Open(ctx context.Context, id string, opts FormOptions) (FormView, error) {
	editor, err := r.openEditor(ctx, id, opts)
	if err != nil {
		return FormView{}, err
	}
	return r.view(editor, id), nil
}

// Submit binds values onto the draft and saves it. Validation and backend
// failures return the form with the submitted values and a nil error; the
// toast has already been raised.
func (r *Resource[T]) Submit(ctx context.Context, id string, values url.Values, opts FormOptions) (FormResult, error) {
	editor, err := r.openEditor(ctx, id, opts)
	if err != nil {
		return FormResult{}, err
	}
	var bindErr error
	if err := editor.Update(func(draft *T) { bindErr = r.bind(draft, values) }); err != nil {
		return FormResult{}, err
	}
	if bindErr != nil {
		normalizeNotifier(opts.Notifier).Notify(ctx, ToastWarning, bindErr.Error())
		return FormResult{Form: r.view(editor, id)}, nil
	}
	saved, err := editor.Save(ctx)
	if err != nil {
		return FormResult{Form: r.view(editor, id)}, nil
	}
	savedID := id
	if r.ID != nil {
		if v := r.ID(saved); v != "" {
			savedID = v
		}
	}
	return FormResult{Saved: true, ID: savedID, Redirect: r.ReturnPath()}, nil
}

// Delete removes the entity and broadcasts a list refresh.
func (r *Resource[T]) Delete(ctx context.Context, id string, opts FormOptions) error {
	notifier := normalizeNotifier(opts.Notifier)
	if r.Singleton {
		return errDeleteNotAllowed
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("console: %s id is required", r.ResourceCode)
	}
	if err := r.Store.Delete(ctx, id); err != nil {
		normalizeLogger(opts.Logger).ErrorContext(ctx, "delete failed", "resource", r.ResourceCode, "id", id, "error", err)
		notifier.Notify(ctx, ToastError, failureMessage(err, fmt.Sprintf("Could not delete %s.", strings.ToLower(r.Label))))
		return fmt.Errorf("console: delete %s %s: %w", r.ResourceCode, id, err)
	}
	notifier.Notify(ctx, ToastSuccess, r.Label+" deleted.")
	publishRefresh(ctx, opts, r.refreshEvent(id, "delete"))
	return nil
}

func (r *Resource[T]) openEditor(ctx context.Context, id string, opts FormOptions) (*Editor[T], error) {
	editor := NewEditor(EditorOptions[T]{
		Store:     editorStore[T]{store: r.Store, singleton: r.Singleton},
		Label:     r.Label,
		ID:        r.ID,
		Notifier:  opts.Notifier,
		Logger:    opts.Logger,
		Telemetry: opts.Telemetry,
		OnSaved: func(ctx context.Context, saved T, created bool) {
			savedID := ""
			if r.ID != nil {
				savedID = r.ID(saved)
			}
			reason := "update"
			if created {
				reason = "create"
			}
			publishRefresh(ctx, opts, r.refreshEvent(savedID, reason))
		},
	})
	if id == "" && !r.Singleton {
		var defaults T
		if r.Defaults != nil {
			defaults = r.Defaults()
		}
		return editor, editor.OpenCreate(defaults)
	}
	current, err := r.Store.Get(ctx, id)
	if err != nil {
		normalizeLogger(opts.Logger).ErrorContext(ctx, "form load failed", "resource", r.ResourceCode, "id", id, "error", err)
		normalizeNotifier(opts.Notifier).Notify(ctx, ToastError, failureMessage(err, fmt.Sprintf("Could not load %s.", strings.ToLower(r.Label))))
		return nil, fmt.Errorf("console: load %s %s: %w", r.ResourceCode, id, err)
	}
	return editor, editor.OpenEdit(current)
}

func (r *Resource[T]) bind(draft *T, values url.Values) error {
	var errs []error
	for _, field := range r.Fields {
		if field.Set == nil {
			continue
		}
		value := values.Get(field.Key)
		if field.Type != FieldCheckbox && !values.Has(field.Key) {
			continue
		}
		if err := field.Set(draft, strings.TrimSpace(value)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field.Label, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Resource[T]) view(editor *Editor[T], id string) FormView {
	draft, _ := editor.Draft()
	state := editor.State()
	view := FormView{
		Resource:  r.ResourceCode,
		State:     state,
		CancelURL: r.ListPath,
	}
	if editor.IsCreateMode() {
		view.Title = "New " + strings.ToLower(r.Label)
		view.Action = r.NewPath
		if view.CancelURL == "" {
			view.CancelURL = r.NewPath
		}
	} else {
		view.Title = "Edit " + strings.ToLower(r.Label)
		view.Action = r.itemPath(id)
		if !r.Singleton {
			view.DeleteAction = view.Action + "/delete"
		}
	}
	for _, field := range r.Fields {
		fv := FieldView{
			Key:      field.Key,
			Label:    field.Label,
			Type:     field.Type,
			Required: field.Required,
			Help:     field.Help,
		}
		if field.Get != nil {
			fv.Value = field.Get(draft)
		}
		if field.Type == FieldCheckbox {
			fv.Checked = fv.Value == "true"
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}

func (r *Resource[T]) itemPath(id string) string {
	if r.ItemPath == nil {
		return r.NewPath
	}
	return r.ItemPath(id)
}

// ReturnPath is where the console goes after a save or delete.
func (r *Resource[T]) ReturnPath() string {
	if r.ListPath != "" {
		return r.ListPath
	}
	return r.itemPath("")
}

func (r *Resource[T]) refreshEvent(id, reason string) ConsoleEvent {
	return ConsoleEvent{Kind: EventListRefresh, List: r.ListCode, Resource: r.ResourceCode, ID: id, Reason: reason}
}

func publishRefresh(ctx context.Context, opts FormOptions, event ConsoleEvent) {
	if opts.Refresh == nil {
		return
	}
	if err := opts.Refresh.Publish(ctx, event); err != nil {
		normalizeLogger(opts.Logger).WarnContext(ctx, "refresh publish failed", "event", event.Kind, "error", err)
	}
}

type editorStore[T any] struct {
	store     EntityStore[T]
	singleton bool
}

func (s editorStore[T]) Create(ctx context.Context, draft T) (T, error) {
	if s.singleton {
		var zero T
		return zero, errCreateNotAllowed
	}
	return s.store.Create(ctx, draft)
}

func (s editorStore[T]) Update(ctx context.Context, id string, draft T) (T, error) {
	return s.store.Update(ctx, id, draft)
}

// FormRegistry indexes the form resources by code.
type FormRegistry struct {
	forms map[string]FormResource
}

// NewFormRegistry registers the given resources.
func NewFormRegistry(resources ...FormResource) *FormRegistry {
	reg := &FormRegistry{forms: map[string]FormResource{}}
	for _, res := range resources {
		if res != nil {
			reg.forms[res.Code()] = res
		}
	}
	return reg
}

// Lookup returns the resource for code.
func (r *FormRegistry) Lookup(code string) (FormResource, error) {
	res, ok := r.forms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownForm, code)
	}
	return res, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

func parseNonNegative(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("must be a whole number")
	}
	return n, nil
}
