package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/milvus"
)

func server(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "server",
		Usage: "Inspect the server",
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Show the server version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if _, err := s.requireArgs(cmd); err != nil {
						return err
					}

					return s.run(ctx, operation{
						name: "server version",
						run: func(ctx context.Context, backend milvus.Backend) (any, error) {
							version, err := backend.Version(ctx)
							if err != nil {
								return nil, err
							}
							return struct {
								Version string `json:"version"`
							}{version}, nil
						},
					})
				},
			},
		},
	})
}
