package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/operion-studio/pkg/execution"
	cli "github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show the recent executions of a workflow",
		ArgsUsage: "<workflow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort by started_at, duration or status",
				Value: string(execution.SortByStartedAt),
			},
			&cli.StringFlag{
				Name:  "order",
				Usage: "Sort order (asc, desc)",
				Value: string(execution.SortDesc),
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep refreshing until interrupted",
			},
		},
		Action: showHistory,
	}
}

func showHistory(ctx context.Context, command *cli.Command) error {
	id, err := parseID(command.Args().First())
	if err != nil {
		return err
	}

	field := execution.SortField(command.String("sort"))
	order := execution.SortOrder(command.String("order"))

	if _, err := execution.SortRows(nil, field, order); err != nil {
		return err
	}

	env, err := setup(ctx, command)
	if err != nil {
		return err
	}
	defer env.Close()

	history, err := execution.NewHistory(env.client,
		execution.WithLimit(env.cfg.HistoryLimit),
		execution.WithRefreshInterval(env.cfg.HistoryInterval),
		execution.WithHistoryLogger(env.logger),
	)
	if err != nil {
		return err
	}
	defer history.Close()

	rows, err := history.Expand(ctx, id)
	if err != nil {
		return err
	}

	if err := printRows(env, rows, field, order); err != nil {
		return err
	}

	if !command.Bool("watch") {
		return nil
	}

	ticker := time.NewTicker(env.cfg.HistoryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintln(env.out)

			if err := printRows(env, history.Rows(id), field, order); err != nil {
				return err
			}
		}
	}
}

func printRows(env *environment, rows []execution.Row, field execution.SortField, order execution.SortOrder) error {
	sorted, err := execution.SortRows(rows, field, order)
	if err != nil {
		return err
	}

	if len(sorted) == 0 {
		fmt.Fprintln(env.out, "No executions yet")

		return nil
	}

	return renderRows(env.out, sorted)
}
