package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// DeleteEntityInput identifies the entity to delete. Redirect and Toasts,
// when set, receive the list path and the raised toasts.
type DeleteEntityInput struct {
	Viewer   console.ViewerContext
	Form     string
	ID       string
	Redirect *string
	Toasts   *[]console.Toast
}

type entityDeleter interface {
	DeleteForm(ctx context.Context, viewer console.ViewerContext, form, id string) (string, []console.Toast, error)
}

// DeleteEntityCommand wraps Controller.DeleteForm.
type DeleteEntityCommand struct {
	service   entityDeleter
	telemetry Telemetry
}

// NewDeleteEntityCommand builds the command.
func NewDeleteEntityCommand(service entityDeleter, telemetry Telemetry) *DeleteEntityCommand {
	return &DeleteEntityCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteEntityInput] = (*DeleteEntityCommand)(nil)

// Execute deletes the entity.
func (c *DeleteEntityCommand) Execute(ctx context.Context, msg DeleteEntityInput) error {
	if c.service == nil {
		return errors.New("delete command requires service")
	}
	if msg.ID == "" {
		return errors.New("delete command requires id")
	}
	redirect, toasts, err := c.service.DeleteForm(ctx, msg.Viewer, msg.Form, msg.ID)
	if msg.Toasts != nil {
		*msg.Toasts = toasts
	}
	if err != nil {
		return err
	}
	if msg.Redirect != nil {
		*msg.Redirect = redirect
	}
	c.telemetry.Record(ctx, "console.entity.delete", map[string]any{"form": msg.Form, "id": msg.ID})
	return nil
}
