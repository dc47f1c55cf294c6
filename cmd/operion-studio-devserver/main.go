// Package main provides a development backend serving the workflow, node-type
// and execution endpoints with a simulated run progression.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/operion-studio/pkg/cmd"
	"github.com/dukex/operion-studio/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "operion-studio-devserver",
		Usage:                 "Serve the studio endpoints over a local file store",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Location of the file store",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token required on /api routes (empty disables auth)",
				Sources: cli.EnvVars("OPERION_TOKEN"),
			},
			&cli.BoolFlag{
				Name:    "seed-templates",
				Usage:   "Store the built-in templates when none exist",
				Value:   true,
				Sources: cli.EnvVars("OPERION_SEED_TEMPLATES"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OPERION_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   log.FormatText,
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("devserver")

			logger.InfoContext(ctx, "Initializing Operion Studio dev server")

			shutdown := cmd.SetupTracing(ctx, command.Bool("tracing"), "operion-studio-devserver", logger)
			defer shutdown()

			persistence, err := cmd.NewPersistence(command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, command.String("token"))

			if command.Bool("seed-templates") {
				if err := api.SeedTemplates(ctx); err != nil {
					return err
				}
			}

			port := command.Int("port")
			logger.InfoContext(ctx, "Listening", "port", port)

			if err := api.Start(port); err != nil {
				return fmt.Errorf("failed to start dev server: %w", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
