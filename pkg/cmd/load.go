package cmd

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

func load(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "load",
		Usage: "Load collections into memory and track progress",
		Commands: []*cli.Command{
			loadCollection(s),
			loadRelease(s),
			loadState(s),
			loadProgress(s),
			loadWait(s),
		},
	})
}

func partitionsFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "partitions",
		Usage: "comma separated partitions (default: whole collection)",
	}
}

func loadCollection(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "collection",
		Usage:     "Load a collection (or some partitions) into memory",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			partitionsFlag(),
			&cli.BoolFlag{
				Name:  "async",
				Usage: "return before loading completes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			name := args[0]
			partitions := splitList(cmd.String("partitions"))
			async := cmd.Bool("async")

			return s.run(ctx, operation{
				name: "load collection",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					if len(partitions) > 0 {
						err = backend.LoadPartitions(ctx, name, partitions, async)
					} else {
						err = backend.LoadCollection(ctx, name, async)
					}
					if err != nil {
						return nil, err
					}

					if async {
						return output.Messagef("Load of '%s' started", name), nil
					}
					return output.Messagef("Collection '%s' loaded", name), nil
				},
			})
		},
	}
}

func loadRelease(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "release",
		Usage:     "Release a collection (or some partitions) from memory",
		ArgsUsage: "<name>",
		Flags:     []cli.Flag{partitionsFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			name := args[0]
			partitions := splitList(cmd.String("partitions"))

			return s.run(ctx, operation{
				name: "load release",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					if len(partitions) > 0 {
						err = backend.ReleasePartitions(ctx, name, partitions)
					} else {
						err = backend.ReleaseCollection(ctx, name)
					}
					if err != nil {
						return nil, err
					}
					return output.Messagef("Collection '%s' released", name), nil
				},
			})
		},
	}
}

func loadState(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "state",
		Usage:     "Show a collection's load state",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "load state",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					state, err := backend.LoadState(ctx, args[0])
					if err != nil {
						return nil, err
					}
					return struct {
						Collection string `json:"collection"`
						State      string `json:"state"`
					}{args[0], state}, nil
				},
			})
		},
	}
}

type loadProgressInfo struct {
	Collection string `json:"collection"`
	Progress   int64  `json:"progress"`
}

func loadProgress(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "progress",
		Usage:     "Show load progress as a percentage",
		ArgsUsage: "<name>",
		Flags:     []cli.Flag{partitionsFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "load progress",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					progress, err := backend.LoadProgress(ctx, args[0], splitList(cmd.String("partitions")))
					if err != nil {
						return nil, err
					}
					return loadProgressInfo{args[0], progress}, nil
				},
			})
		},
	}
}

func loadWait(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "wait",
		Usage:     "Block until a collection finishes loading",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			partitionsFlag(),
			&cli.IntFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "seconds between polls",
				Value:   2,
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "seconds to wait before giving up",
				Value: 300,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			name := args[0]
			partitions := splitList(cmd.String("partitions"))
			interval := time.Duration(cmd.Int("interval")) * time.Second
			timeout := time.Duration(cmd.Int("timeout")) * time.Second

			return s.run(ctx, operation{
				name: "load wait",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					poll := func(ctx context.Context) (bool, any, error) {
						progress, err := backend.LoadProgress(ctx, name, partitions)
						if err != nil {
							return false, nil, err
						}
						return progress >= 100, loadProgressInfo{name, progress}, nil
					}
					return waitUntil(ctx, poll, interval, timeout,
						"collection '%s' did not finish loading within %s", name, timeout)
				},
			})
		},
	}
}

// waitUntil polls until done, the context ends, or the timeout elapses.
// The last observed value is discarded on timeout; the formatted
// message becomes the error.
func waitUntil(ctx context.Context, poll func(context.Context) (bool, any, error),
	interval, timeout time.Duration, format string, args ...any) (any, error) {
	deadline := time.After(timeout)

	for {
		done, value, err := poll(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			return value, nil
		}

		select {
		case <-ctx.Done():
			return nil, errcode.Bare(errcode.ConnectionError, ctx.Err().Error())
		case <-deadline:
			return nil, errcode.Newf(errcode.ConnectionError, format, args...)
		case <-time.After(interval):
		}
	}
}
