package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

func user(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "user",
		Usage: "Manage server users",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a user",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "password",
						Usage: "password for the new user",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "name")
					if err != nil {
						return err
					}
					if cmd.String("password") == "" {
						return s.usage(errcode.New(errcode.MissingArgument, "--password is required"))
					}

					return s.run(ctx, operation{
						name: "user create",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.CreateUser(ctx, args[0], cmd.String("password")); err != nil {
								return nil, err
							}
							return output.Messagef("User '%s' created", args[0]), nil
						},
					})
				},
			},
			{
				Name:  "list",
				Usage: "List users",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if _, err := s.requireArgs(cmd); err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "user list",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							return backend.ListUsers(ctx)
						},
					})
				},
			},
			{
				Name:      "drop",
				Usage:     "Drop a user",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "name")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "user drop",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.DropUser(ctx, args[0]); err != nil {
								return nil, err
							}
							return output.Messagef("User '%s' dropped", args[0]), nil
						},
					})
				},
			},
			{
				Name:      "passwd",
				Usage:     "Change a user's password",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "old",
						Usage: "current password",
					},
					&cli.StringFlag{
						Name:  "new",
						Usage: "new password",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "name")
					if err != nil {
						return err
					}
					if cmd.String("old") == "" || cmd.String("new") == "" {
						return s.usage(errcode.New(errcode.MissingArgument,
							"--old and --new are both required"))
					}

					return s.run(ctx, operation{
						name: "user passwd",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.UpdatePassword(ctx, args[0], cmd.String("old"), cmd.String("new")); err != nil {
								return nil, err
							}
							return output.Messagef("Password updated for user '%s'", args[0]), nil
						},
					})
				},
			},
		},
	})
}
