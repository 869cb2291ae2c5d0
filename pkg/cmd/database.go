package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

func database(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "database",
		Usage: "Manage databases",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a database",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "name")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "database create",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.CreateDatabase(ctx, args[0]); err != nil {
								return nil, err
							}
							return output.Messagef("Database '%s' created", args[0]), nil
						},
					})
				},
			},
			{
				Name:  "list",
				Usage: "List databases",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if _, err := s.requireArgs(cmd); err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "database list",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							return backend.ListDatabases(ctx)
						},
					})
				},
			},
			{
				Name:      "drop",
				Usage:     "Drop a database",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "name")
					if err != nil {
						return err
					}
					name := args[0]

					return s.run(ctx, operation{
						name:    "database drop",
						confirm: fmt.Sprintf("Are you sure you want to drop database '%s'?", name),
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.DropDatabase(ctx, name); err != nil {
								return nil, err
							}
							return output.Messagef("Database '%s' dropped", name), nil
						},
					})
				},
			},
		},
	})
}
