package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

func alias(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "alias",
		Usage: "Manage collection aliases",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create an alias for a collection",
				ArgsUsage: "<collection> <alias>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "collection", "alias")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "alias create",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.CreateAlias(ctx, args[0], args[1]); err != nil {
								return nil, err
							}
							return output.Messagef("Alias '%s' created for collection '%s'", args[1], args[0]), nil
						},
					})
				},
			},
			{
				Name:      "alter",
				Usage:     "Point an existing alias at another collection",
				ArgsUsage: "<collection> <alias>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "collection", "alias")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "alias alter",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.AlterAlias(ctx, args[0], args[1]); err != nil {
								return nil, err
							}
							return output.Messagef("Alias '%s' now points to collection '%s'", args[1], args[0]), nil
						},
					})
				},
			},
			{
				Name:      "drop",
				Usage:     "Drop an alias",
				ArgsUsage: "<alias>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "alias")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "alias drop",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.DropAlias(ctx, args[0]); err != nil {
								return nil, err
							}
							return output.Messagef("Alias '%s' dropped", args[0]), nil
						},
					})
				},
			},
		},
	})
}
