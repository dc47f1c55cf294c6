package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/dukex/operion-studio/pkg/api"
	"github.com/dukex/operion-studio/pkg/cmd"
	"github.com/dukex/operion-studio/pkg/config"
	"github.com/dukex/operion-studio/pkg/log"
	"github.com/dukex/operion-studio/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "operion-studio",
		Usage:                 "Build, run and inspect Operion workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				Sources: cli.EnvVars("OPERION_STUDIO_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the Operion backend",
				Sources: cli.EnvVars("OPERION_API_URL"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token sent with every request",
				Sources: cli.EnvVars("OPERION_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus for lifecycle events (gochannel, kafka)",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringSliceFlag{
				Name:    "kafka-brokers",
				Usage:   "Kafka broker addresses",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OPERION_TRACING"),
			},
		},
		Commands: []*cli.Command{
			catalogCommand(),
			workflowsCommand(),
			runCommand(),
			historyCommand(),
		},
	}
}

// environment holds what every subcommand needs.
type environment struct {
	cfg       config.Config
	logger    *slog.Logger
	client    *api.Client
	workflows *services.Workflow
	out       io.Writer
	in        io.Reader
	shutdown  func()
}

func (e *environment) Close() {
	e.shutdown()
}

// loadConfig applies the flags that were set on top of the configuration file.
func loadConfig(command *cli.Command) (config.Config, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if command.IsSet("api-url") {
		cfg.APIURL = command.String("api-url")
	}

	if command.IsSet("token") {
		cfg.Token = command.String("token")
	}

	if command.IsSet("log-level") {
		cfg.LogLevel = command.String("log-level")
	}

	if command.IsSet("log-format") {
		cfg.LogFormat = command.String("log-format")
	}

	if command.IsSet("event-bus") {
		cfg.EventBus = command.String("event-bus")
	}

	if command.IsSet("kafka-brokers") {
		cfg.KafkaBrokers = command.StringSlice("kafka-brokers")
	}

	if command.IsSet("tracing") {
		cfg.Tracing = command.Bool("tracing")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func setup(ctx context.Context, command *cli.Command) (*environment, error) {
	cfg, err := loadConfig(command)
	if err != nil {
		return nil, err
	}

	root := command.Root()

	errWriter := root.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}

	logger := log.New(errWriter, cfg.LogLevel, cfg.LogFormat).With("module", "studio")

	shutdown := cmd.SetupTracing(ctx, cfg.Tracing, "operion-studio", logger)
	client := cmd.NewClient(cfg, logger)

	out := root.Writer
	if out == nil {
		out = os.Stdout
	}

	in := root.Reader
	if in == nil {
		in = os.Stdin
	}

	return &environment{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		workflows: services.NewWorkflow(client, logger),
		out:       out,
		in:        in,
		shutdown:  shutdown,
	}, nil
}
