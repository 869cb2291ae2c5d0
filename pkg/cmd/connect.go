package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
)

// ConnectInfo reports a successful connectivity check.
type ConnectInfo struct {
	URI           string `json:"uri"`
	ServerVersion string `json:"server_version"`
}

// Note implements output.Noter for the human confirmation line.
func (c ConnectInfo) Note() string {
	return fmt.Sprintf("Connected to Milvus at %s", c.URI)
}

func connect(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Check connectivity and report the server version",
		ArgsUsage: "[uri]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 1 {
				return s.usage(errcode.Newf(errcode.ValidationError,
					"unexpected argument %q", cmd.Args().Get(1)))
			}

			// A positional uri outranks every other connection source.
			if uri := cmd.Args().First(); uri != "" {
				s.flags.URI = uri
			}

			return s.run(ctx, operation{
				name: "connect",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					version, err := backend.Version(ctx)
					if err != nil {
						return nil, err
					}
					return ConnectInfo{URI: s.conn.URI, ServerVersion: version}, nil
				},
			})
		},
	}
}
