package main

import (
	"context"
	"errors"

	"github.com/dukex/operion-studio/pkg/cmd"
	cli "github.com/urfave/cli/v3"
)

var errInvalidID = errors.New("invalid id")

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List the node types available on the palette",
		Action: func(ctx context.Context, command *cli.Command) error {
			env, err := setup(ctx, command)
			if err != nil {
				return err
			}
			defer env.Close()

			catalog, err := cmd.NewRegistry(env.logger, env.client).Load(ctx)
			if err != nil {
				return err
			}

			return renderCatalog(env.out, catalog)
		},
	}
}
