package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukex/operion-studio/pkg/cmd"
	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/execution"
	"github.com/dukex/operion-studio/pkg/models"
	cli "github.com/urfave/cli/v3"
)

const finishedEventWait = 5 * time.Second

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Run a saved workflow and follow its logs",
		ArgsUsage: "<workflow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "Input data as a JSON object",
				Value: "{}",
			},
		},
		Action: runWorkflow,
	}
}

func runWorkflow(ctx context.Context, command *cli.Command) error {
	id, err := parseID(command.Args().First())
	if err != nil {
		return err
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(command.String("input")), &input); err != nil {
		return fmt.Errorf("invalid --input: %w", err)
	}

	env, err := setup(ctx, command)
	if err != nil {
		return err
	}
	defer env.Close()

	env.out = &lockedWriter{w: env.out}

	bus, err := cmd.NewEventBus(env.cfg.EventBus, env.cfg.KafkaBrokers, env.logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := bus.Close(); err != nil {
			env.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	finished := make(chan events.ExecutionFinished, 8)

	err = bus.Handle(events.ExecutionStatusChangedEvent, func(_ context.Context, event any) error {
		changed, ok := event.(*events.ExecutionStatusChanged)
		if ok && changed.WorkflowID == id {
			fmt.Fprintf(env.out, "Execution %d is %s\n", changed.ExecutionID, changed.Status)
		}

		return nil
	})
	if err != nil {
		return err
	}

	err = bus.Handle(events.ExecutionFinishedEvent, func(_ context.Context, event any) error {
		if done, ok := event.(*events.ExecutionFinished); ok && done.WorkflowID == id {
			select {
			case finished <- *done:
			default:
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if err := bus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to lifecycle events: %w", err)
	}

	if _, err := env.workflows.List(ctx); err != nil {
		return err
	}

	workflow, ok := env.workflows.FetchByID(id)
	if !ok {
		return fmt.Errorf("workflow %d not found", id)
	}

	orchestrator := execution.NewOrchestrator(env.client,
		execution.WithPollInterval(env.cfg.PollInterval),
		execution.WithLogger(env.logger),
		execution.WithPublisher(bus),
	)

	session := editor.NewSession(cmd.NewRegistry(env.logger, env.client), env.workflows, orchestrator,
		editor.WithCompactWidth(env.cfg.CompactWidth),
		editor.WithLogger(env.logger),
	)
	defer session.Close()

	session.Open(workflow)

	if err := session.Run(ctx, input); err != nil {
		return err
	}

	snap := session.Snapshot()
	fmt.Fprintf(env.out, "Started execution %d of %q\n", snap.ExecutionID, workflow.Name)

	select {
	case <-orchestrator.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	snap = session.Snapshot()

	return reportRun(env, snap, awaitFinished(finished, snap.ExecutionID))
}

// awaitFinished waits briefly for the finished event of executionID. Remote
// buses may deliver it after the orchestrator has settled.
func awaitFinished(finished <-chan events.ExecutionFinished, executionID int64) *events.ExecutionFinished {
	timeout := time.After(finishedEventWait)

	for {
		select {
		case event := <-finished:
			if event.ExecutionID == executionID {
				return &event
			}
		case <-timeout:
			return nil
		}
	}
}

func reportRun(env *environment, snap execution.Snapshot, event *events.ExecutionFinished) error {
	logs := snap.Logs
	if event != nil && len(event.Logs) > 0 {
		logs = event.Logs
	}

	for _, entry := range logs {
		renderLog(env.out, entry)
	}

	if snap.State == execution.StateCompleted {
		fmt.Fprintf(env.out, "Execution %d completed\n", snap.ExecutionID)

		return nil
	}

	status := snap.Status
	if status == "" {
		status = models.ExecutionStatusFailed
	}

	return fmt.Errorf("execution %d %s: %s", snap.ExecutionID, status, snap.Error)
}
