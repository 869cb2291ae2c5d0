package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/docker"
	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
)

// Options wires the process boundary into the CLI. Zero values select
// the real environment; tests substitute buffers and a fake backend.
type Options struct {
	// Version is reported by --version.
	Version string

	// Getenv reads environment variables (default os.Getenv).
	Getenv func(string) string

	// Stdin answers confirmation prompts (default os.Stdin). Prompts
	// are only issued when it is a terminal.
	Stdin io.Reader

	// Stdout and Stderr receive rendered output (defaults os.Stdout and
	// os.Stderr).
	Stdout io.Writer
	Stderr io.Writer

	// Connect dials the backend (default milvus.Dial).
	Connect milvus.ConnectFunc

	// Docker overrides the container engine client used by the sandbox
	// commands (default: resolved from the environment).
	Docker docker.DockerClient
}

// Run creates and executes the yami CLI with the given options and
// command-line arguments, and returns the process exit code: 0 on
// success, 1 when a dispatched operation fails, 2 on usage errors.
//
// Example usage:
//
//	os.Exit(cmd.Run(ctx, cmd.Options{Version: "v1.0.0"}, os.Args))
func Run(ctx context.Context, opts Options, args []string) int {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintf(cmd.Writer, "yami version %s\n", cmd.Root().Version)
	}
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	s := newSession(opts)

	if err := root(s, opts.Version).Run(ctx, args); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}

		// Anything else surfaced from flag parsing or routing before an
		// action ran.
		_ = s.usage(err)
		return 2
	}

	return 0
}

func root(s *Session, version string) *cli.Command {
	return &cli.Command{
		Name:  "yami",
		Usage: "Yet Another Milvus Interface",
		Description: `yami is a command line client for the Milvus vector database, built
for humans and coding agents alike. Every operation is a single
command; agent mode wraps each result in a structured JSON envelope.`,
		Version:               version,
		Writer:                s.stdout,
		ErrWriter:             s.stderr,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "uri",
				Aliases: []string{"u"},
				Usage:   "Milvus server URI (e.g. http://localhost:19530)",
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				Usage:   "authentication token (user:password or API key)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "database to operate in",
			},
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "connection profile to use",
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "output mode: agent or human",
				DefaultText: "agent",
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output format: json, yaml, or table",
				DefaultText: "json (agent), table (human)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "skip confirmation prompts",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "suppress informational messages",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := s.setup(cmd); err != nil {
				return ctx, s.usage(err)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			connect(s),
			collection(s),
			database(s),
			partition(s),
			index(s),
			data(s),
			query(s),
			load(s),
			alias(s),
			user(s),
			role(s),
			server(s),
			profile(s),
			flush(s),
			compact(s),
			segment(s),
			sandbox(s),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if name := cmd.Args().First(); name != "" {
				return s.usage(errcode.Newf(errcode.MissingArgument,
					"unknown command %q (run 'yami --help')", name))
			}
			return cli.ShowAppHelp(cmd)
		},
	}
}
