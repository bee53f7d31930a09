package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Config string `help:"YAML configuration file." type:"path" env:"CONSOLE_CONFIG"`
	Demo   bool   `help:"Serve against an in-process mock backend seeded with demo data."`

	Serve   serveCmd   `cmd:"" help:"Run the admin and host console web server."`
	Export  exportCmd  `cmd:"" help:"Export one page of a console list to an xlsx workbook."`
	Stats   statsCmd   `cmd:"" help:"Print dashboard aggregates for a scope."`
	Nav     navCmd     `cmd:"" help:"Print the navigation tree a role would see."`
	Widgets widgetsCmd `cmd:"" help:"List widget definitions or validate a dashboard layout."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cli{}
	kctx := kong.Parse(root,
		kong.Name("ticketctl"),
		kong.Description("Admin and host console for the event ticketing platform."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(root),
	)
	kctx.FatalIfErrorf(kctx.Run())
}

// open loads configuration and wires the application for a subcommand.
func (c *cli) open(ctx context.Context) (*application, error) {
	cfg, logger, err := loadConfig(c.Config, c.Demo)
	if err != nil {
		return nil, err
	}
	return newApplication(ctx, cfg, logger)
}
