package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// EditorState is the lifecycle state of an editor modal.
type EditorState string

const (
	EditorClosed     EditorState = "closed"
	EditorOpenCreate EditorState = "open-create"
	EditorOpenEdit   EditorState = "open-edit"
	EditorSubmitting EditorState = "submitting"
)

var (
	ErrEditorClosed = errors.New("console: editor is not open")
	ErrEditorBusy   = errors.New("console: editor is submitting")
	ErrValidation   = errors.New("console: validation failed")
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs the `validate` tag rules on v.
func ValidateStruct(v any) error {
	return structValidator.Struct(v)
}

// EditorStore persists drafts.
type EditorStore[T any] interface {
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id string, draft T) (T, error)
}

// EditorOptions configures an Editor.
type EditorOptions[T any] struct {
	Store     EditorStore[T]
	Label     string
	ID        func(T) string
	Validate  func(T) error
	Clone     func(T) (T, error)
	OnSaved   func(ctx context.Context, saved T, created bool)
	Notifier  Notifier
	Logger    *slog.Logger
	Telemetry Telemetry
}

// Editor is the create/edit modal state machine. The draft is always a deep
// copy and never aliases the entity it was opened from.
type Editor[T any] struct {
	opts EditorOptions[T]

	mu         sync.Mutex
	state      EditorState
	createMode bool
	id         string
	draft      T
}

// NewEditor builds a closed editor.
func NewEditor[T any](opts EditorOptions[T]) *Editor[T] {
	if opts.Validate == nil {
		opts.Validate = func(v T) error { return ValidateStruct(v) }
	}
	if opts.Clone == nil {
		opts.Clone = jsonClone[T]
	}
	if opts.Label == "" {
		opts.Label = "Item"
	}
	opts.Notifier = normalizeNotifier(opts.Notifier)
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Editor[T]{opts: opts, state: EditorClosed}
}

// OpenCreate opens the editor in create mode with a copy of defaults.
func (e *Editor[T]) OpenCreate(defaults T) error {
	return e.open(defaults, true, "")
}

// OpenEdit opens the editor in edit mode with a copy of row.
func (e *Editor[T]) OpenEdit(row T) error {
	id := ""
	if e.opts.ID != nil {
		id = e.opts.ID(row)
	}
	return e.open(row, false, id)
}

func (e *Editor[T]) open(source T, create bool, id string) error {
	draft, err := e.opts.Clone(source)
	if err != nil {
		return fmt.Errorf("console: copy draft: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == EditorSubmitting {
		return ErrEditorBusy
	}
	e.draft = draft
	e.createMode = create
	e.id = id
	if create {
		e.state = EditorOpenCreate
	} else {
		e.state = EditorOpenEdit
	}
	return nil
}

// Update mutates the draft.
func (e *Editor[T]) Update(mutate func(*T)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case EditorClosed:
		return ErrEditorClosed
	case EditorSubmitting:
		return ErrEditorBusy
	}
	mutate(&e.draft)
	return nil
}

// Draft returns a copy of the draft and whether the editor is open.
func (e *Editor[T]) Draft() (T, bool) {
	e.mu.Lock()
	state, draft := e.state, e.draft
	e.mu.Unlock()
	if state == EditorClosed {
		var zero T
		return zero, false
	}
	out, err := e.opts.Clone(draft)
	if err != nil {
		return draft, true
	}
	return out, true
}

// State returns the current state.
func (e *Editor[T]) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsCreateMode reports whether the editor was opened for a new entity.
func (e *Editor[T]) IsCreateMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.createMode
}

// Cancel discards the draft and closes the editor.
func (e *Editor[T]) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == EditorSubmitting {
		return
	}
	e.reset()
}

func (e *Editor[T]) reset() {
	var zero T
	e.state = EditorClosed
	e.draft = zero
	e.createMode = false
	e.id = ""
}

// Save validates the draft and submits it to the create or update endpoint
// chosen when the editor was opened. Validation failures never reach the store.
// On a store failure the editor returns to its open state with the draft intact.
func (e *Editor[T]) Save(ctx context.Context) (T, error) {
	var zero T
	e.mu.Lock()
	switch e.state {
	case EditorClosed:
		e.mu.Unlock()
		return zero, ErrEditorClosed
	case EditorSubmitting:
		e.mu.Unlock()
		return zero, ErrEditorBusy
	}
	if err := e.opts.Validate(e.draft); err != nil {
		e.mu.Unlock()
		e.opts.Notifier.Notify(ctx, ToastWarning, validationMessage(err))
		return zero, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	previous := e.state
	create, id, draft := e.createMode, e.id, e.draft
	e.state = EditorSubmitting
	e.mu.Unlock()

	saved, err := e.submit(ctx, create, id, draft)
	if err != nil {
		e.mu.Lock()
		e.state = previous
		e.mu.Unlock()
		e.opts.Logger.ErrorContext(ctx, "editor save failed",
			"entity", e.opts.Label,
			"create", create,
			"id", id,
			"error", err,
		)
		e.opts.Notifier.Notify(ctx, ToastError, failureMessage(err, fmt.Sprintf("Could not save %s.", strings.ToLower(e.opts.Label))))
		return zero, err
	}

	e.mu.Lock()
	e.reset()
	e.mu.Unlock()

	e.opts.Telemetry.Record(ctx, "console.editor.save", map[string]any{
		"entity": e.opts.Label,
		"create": create,
	})
	if e.opts.OnSaved != nil {
		e.opts.OnSaved(ctx, saved, create)
	}
	verb := "updated"
	if create {
		verb = "created"
	}
	e.opts.Notifier.Notify(ctx, ToastSuccess, fmt.Sprintf("%s %s.", e.opts.Label, verb))
	return saved, nil
}

func (e *Editor[T]) submit(ctx context.Context, create bool, id string, draft T) (T, error) {
	var zero T
	if e.opts.Store == nil {
		return zero, errors.New("console: editor store not configured")
	}
	if create {
		return e.opts.Store.Create(ctx, draft)
	}
	return e.opts.Store.Update(ctx, id, draft)
}

func jsonClone[T any](v T) (T, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Please check the form: " + err.Error()
	}
	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "required: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return "Please check the form (" + strings.Join(parts, "; ") + ")."
}
