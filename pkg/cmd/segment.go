package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/milvus"
)

func segment(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "segment",
		Usage: "Inspect a collection's segments",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List persisted segments",
				ArgsUsage: "<collection>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "loaded",
						Usage: "list segments on query nodes instead",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "collection")
					if err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "segment list",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if cmd.Bool("loaded") {
								return backend.QuerySegments(ctx, args[0])
							}
							return backend.PersistentSegments(ctx, args[0])
						},
					})
				},
			},
		},
	})
}
