package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

func flush(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "flush",
		Usage: "Seal in-memory segments to storage",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Flush a collection",
				ArgsUsage: "<collection>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "async",
						Usage: "return before flushing completes",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := s.requireArgs(cmd, "collection")
					if err != nil {
						return err
					}
					name := args[0]
					async := cmd.Bool("async")

					return s.run(ctx, operation{
						name: "flush run",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							if err := backend.Flush(ctx, name, async); err != nil {
								return nil, err
							}
							if async {
								return output.Messagef("Flush of '%s' started", name), nil
							}
							return output.Messagef("Collection '%s' flushed", name), nil
						},
					})
				},
			},
		},
	})
}
