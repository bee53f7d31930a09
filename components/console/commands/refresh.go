package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// PublishRefreshInput asks open consoles to reload a list or the dashboard.
type PublishRefreshInput struct {
	Event console.ConsoleEvent `json:"event"`
}

// PublishRefreshCommand pushes refresh events without forcing a transport.
type PublishRefreshCommand struct {
	publisher console.RefreshPublisher
	telemetry Telemetry
}

// NewPublishRefreshCommand creates the command.
func NewPublishRefreshCommand(publisher console.RefreshPublisher, telemetry Telemetry) *PublishRefreshCommand {
	return &PublishRefreshCommand{publisher: publisher, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PublishRefreshInput] = (*PublishRefreshCommand)(nil)

// Execute publishes the event.
func (c *PublishRefreshCommand) Execute(ctx context.Context, msg PublishRefreshInput) error {
	if c.publisher == nil {
		return errors.New("refresh command requires publisher")
	}
	if msg.Event.Kind == "" {
		return errors.New("refresh command requires event kind")
	}
	if err := c.publisher.Publish(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "console.refresh.publish", map[string]any{
		"kind": msg.Event.Kind,
		"list": msg.Event.List,
	})
	return nil
}
