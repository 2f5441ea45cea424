// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/estifie/Expense-Tracker-API/cmd/app/commands"
	"github.com/estifie/Expense-Tracker-API/internal/app"
	"github.com/estifie/Expense-Tracker-API/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Expense tracker API",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					defer func() { _ = container.Shutdown(ctx) }()

					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "create-user",
				Usage: "Register a new user account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Username for the new account",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Password for the new account",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateUser(ctx, cmd.String("username"), cmd.String("password"))
				},
			},
			{
				Name:  "grant-permission",
				Usage: "Grant a capability to a user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Username of the account",
					},
					&cli.StringFlag{
						Name:     "capability",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Capability name (e.g., MANAGE_PERMISSIONS)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunGrantPermission(ctx, cmd.String("username"), cmd.String("capability"))
				},
			},
			{
				Name:  "revoke-permission",
				Usage: "Revoke a capability from a user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Username of the account",
					},
					&cli.StringFlag{
						Name:     "capability",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Capability name (e.g., VIEW_EXPENSES)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRevokePermission(ctx, cmd.String("username"), cmd.String("capability"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
