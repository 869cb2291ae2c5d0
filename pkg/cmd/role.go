package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

func role(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "role",
		Usage: "Manage roles and role membership",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a role",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "name")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "role create",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.CreateRole(ctx, args[0]); err != nil {
								return nil, err
							}
							return output.Messagef("Role '%s' created", args[0]), nil
						},
					})
				},
			},
			{
				Name:  "list",
				Usage: "List roles",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if _, err := s.requireArgs(cmd); err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "role list",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							return backend.ListRoles(ctx)
						},
					})
				},
			},
			{
				Name:      "drop",
				Usage:     "Drop a role",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "name")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "role drop",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.DropRole(ctx, args[0]); err != nil {
								return nil, err
							}
							return output.Messagef("Role '%s' dropped", args[0]), nil
						},
					})
				},
			},
			{
				Name:      "grant",
				Usage:     "Grant a role to a user",
				ArgsUsage: "<role> <user>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "role", "user")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "role grant",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.GrantRole(ctx, args[1], args[0]); err != nil {
								return nil, err
							}
							return output.Messagef("Role '%s' granted to user '%s'", args[0], args[1]), nil
						},
					})
				},
			},
			{
				Name:      "revoke",
				Usage:     "Revoke a role from a user",
				ArgsUsage: "<role> <user>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "role", "user")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "role revoke",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.RevokeRole(ctx, args[1], args[0]); err != nil {
								return nil, err
							}
							return output.Messagef("Role '%s' revoked from user '%s'", args[0], args[1]), nil
						},
					})
				},
			},
		},
	})
}
