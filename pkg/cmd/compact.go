package cmd

import (
	"context"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
)

func compact(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "compact",
		Usage: "Trigger and track segment compaction",
		Commands: []*cli.Command{
			compactRun(s),
			compactState(s),
			compactPlans(s),
			compactWait(s),
		},
	})
}

// jobIDArg parses the positional compaction job id.
func jobIDArg(s *Session, cmd *cli.Command) (int64, error) {
	args, err := s.requireArgs(cmd, "job-id")
	if err != nil {
		return 0, err
	}

	id, parseErr := strconv.ParseInt(args[0], 10, 64)
	if parseErr != nil {
		return 0, s.usage(errcode.Newf(errcode.ValidationError,
			"job id must be an integer, got %q", args[0]))
	}
	return id, nil
}

type compactionJob struct {
	JobID      int64  `json:"job_id"`
	Collection string `json:"collection"`
}

func compactRun(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Start compaction and report the job id",
		ArgsUsage: "<collection>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "compact run",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					jobID, err := backend.Compact(ctx, args[0])
					if err != nil {
						return nil, err
					}
					return compactionJob{jobID, args[0]}, nil
				},
			})
		},
	}
}

func compactState(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "state",
		Usage:     "Show a compaction job's state",
		ArgsUsage: "<job-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := jobIDArg(s, cmd)
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "compact state",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					state, err := backend.CompactionState(ctx, id)
					if err != nil {
						return nil, err
					}
					return struct {
						JobID int64  `json:"job_id"`
						State string `json:"state"`
					}{id, state}, nil
				},
			})
		},
	}
}

func compactPlans(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "plans",
		Usage:     "Show the segment merges of a compaction job",
		ArgsUsage: "<job-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := jobIDArg(s, cmd)
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "compact plans",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					return backend.CompactionPlans(ctx, id)
				},
			})
		},
	}
}

func compactWait(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "wait",
		Usage:     "Block until a compaction job completes",
		ArgsUsage: "<job-id>",
		Flags: []cli.Flag{
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
			id, err := jobIDArg(s, cmd)
			if err != nil {
				return err
			}
			interval := time.Duration(cmd.Int("interval")) * time.Second
			timeout := time.Duration(cmd.Int("timeout")) * time.Second

			return s.run(ctx, operation{
				name: "compact wait",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					poll := func(ctx context.Context) (bool, any, error) {
						state, err := backend.CompactionState(ctx, id)
						if err != nil {
							return false, nil, err
						}
						done := state == "Completed"
						return done, struct {
							JobID int64  `json:"job_id"`
							State string `json:"state"`
						}{id, state}, nil
					}
					return waitUntil(ctx, poll, interval, timeout,
						"compaction job %d did not complete within %s", id, timeout)
				},
			})
		},
	}
}
