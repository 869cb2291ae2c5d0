package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

func partition(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "partition",
		Usage: "Manage partitions within a collection",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a partition",
				ArgsUsage: "<collection> <name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "collection", "name")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "partition create",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.CreatePartition(ctx, args[0], args[1]); err != nil {
								return nil, err
							}
							return output.Messagef("Partition '%s' created", args[1]), nil
						},
					})
				},
			},
			{
				Name:      "list",
				Usage:     "List a collection's partitions",
				ArgsUsage: "<collection>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "collection")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "partition list",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							return backend.ListPartitions(ctx, args[0])
						},
					})
				},
			},
			{
				Name:      "drop",
				Usage:     "Drop a partition and its data",
				ArgsUsage: "<collection> <name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "collection", "name")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name:    "partition drop",
						confirm: fmt.Sprintf("Are you sure you want to drop partition '%s'?", args[1]),
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.DropPartition(ctx, args[0], args[1]); err != nil {
								return nil, err
							}
							return output.Messagef("Partition '%s' dropped", args[1]), nil
						},
					})
				},
			},
			{
				Name:      "has",
				Usage:     "Check whether a partition exists",
				ArgsUsage: "<collection> <name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "collection", "name")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "partition has",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							exists, err := backend.HasPartition(ctx, args[0], args[1])
							if err != nil {
								return nil, err
							}
							return struct {
								Collection string `json:"collection"`
								Partition  string `json:"partition"`
								Exists     bool   `json:"exists"`
							}{args[0], args[1], exists}, nil
						},
					})
				},
			},
		},
	})
}
