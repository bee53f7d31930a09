package commands

import (
	"context"
	"errors"
	"net/url"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// SubmitFormInput carries a posted editor form. Outcome, when set, receives
// the redirect or the re-rendered form.
type SubmitFormInput struct {
	Viewer  console.ViewerContext
	Form    string
	ID      string
	Values  url.Values
	Outcome *console.FormOutcome
}

type formSubmitter interface {
	SubmitForm(ctx context.Context, viewer console.ViewerContext, form, id string, values url.Values) (console.FormOutcome, error)
}

// SubmitFormCommand wraps Controller.SubmitForm.
type SubmitFormCommand struct {
	service   formSubmitter
	telemetry Telemetry
}

// NewSubmitFormCommand builds the command.
func NewSubmitFormCommand(service formSubmitter, telemetry Telemetry) *SubmitFormCommand {
	return &SubmitFormCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SubmitFormInput] = (*SubmitFormCommand)(nil)

// Execute saves the form.
func (c *SubmitFormCommand) Execute(ctx context.Context, msg SubmitFormInput) error {
	if c.service == nil {
		return errors.New("submit command requires service")
	}
	outcome, err := c.service.SubmitForm(ctx, msg.Viewer, msg.Form, msg.ID, msg.Values)
	if err != nil {
		return err
	}
	if msg.Outcome != nil {
		*msg.Outcome = outcome
	}
	c.telemetry.Record(ctx, "console.form.submit", map[string]any{
		"form":  msg.Form,
		"id":    msg.ID,
		"saved": outcome.Redirect != "",
	})
	return nil
}
