package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func workflowsCommand() *cli.Command {
	return &cli.Command{
		Name:    "workflows",
		Aliases: []string{"wf"},
		Usage:   "Manage saved workflows",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved workflows, or templates with --templates",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "templates", Usage: "List templates instead of workflows"},
				},
				Action: listWorkflows,
			},
			{
				Name:      "delete",
				Usage:     "Delete a workflow",
				ArgsUsage: "<workflow-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"},
				},
				Action: deleteWorkflow,
			},
			{
				Name:      "from-template",
				Usage:     "Save a new workflow copied from a template",
				ArgsUsage: "<template-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Name of the new workflow"},
				},
				Action: workflowFromTemplate,
			},
		},
	}
}

func listWorkflows(ctx context.Context, command *cli.Command) error {
	env, err := setup(ctx, command)
	if err != nil {
		return err
	}
	defer env.Close()

	var workflows []models.Workflow
	if command.Bool("templates") {
		workflows, err = env.workflows.ListTemplates(ctx)
	} else {
		workflows, err = env.workflows.List(ctx)
	}

	if err != nil {
		return err
	}

	return renderWorkflows(env.out, workflows)
}

func deleteWorkflow(ctx context.Context, command *cli.Command) error {
	id, err := parseID(command.Args().First())
	if err != nil {
		return err
	}

	env, err := setup(ctx, command)
	if err != nil {
		return err
	}
	defer env.Close()

	if _, err := env.workflows.List(ctx); err != nil {
		return err
	}

	confirmer := services.ConfirmFunc(func(_ context.Context, workflow models.Workflow) bool {
		if command.Bool("yes") {
			return true
		}

		return prompt(env.in, env.out, workflow)
	})

	if err := env.workflows.Delete(ctx, id, confirmer); err != nil {
		return err
	}

	fmt.Fprintf(env.out, "Deleted workflow %d\n", id)

	return nil
}

// prompt asks for a delete confirmation. Anything but y or yes declines.
func prompt(in io.Reader, out io.Writer, workflow models.Workflow) bool {
	name := workflow.Name
	if name == "" {
		name = fmt.Sprintf("#%d", workflow.ID)
	}

	fmt.Fprintf(out, "Delete workflow %q? This cannot be undone. [y/N] ", name)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func workflowFromTemplate(ctx context.Context, command *cli.Command) error {
	id, err := parseID(command.Args().First())
	if err != nil {
		return err
	}

	env, err := setup(ctx, command)
	if err != nil {
		return err
	}
	defer env.Close()

	templates, err := env.workflows.ListTemplates(ctx)
	if err != nil {
		return err
	}

	i := slices.IndexFunc(templates, func(t models.Workflow) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("template %d not found", id)
	}

	template := templates[i]

	draft := env.workflows.UseTemplate(template)
	if name := command.String("name"); name != "" {
		draft.Name = name
	}

	saved, err := env.workflows.Save(ctx, &draft)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.out, "Created workflow %d %q\n", saved.ID, saved.Name)

	return nil
}
