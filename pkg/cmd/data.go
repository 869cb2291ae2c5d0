package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

func data(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "data",
		Usage: "Write and delete entities",
		Commands: []*cli.Command{
			dataInsert(s),
			dataUpsert(s),
			dataDelete(s),
		},
	})
}

func rowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "JSON file holding a row object or an array of rows",
		},
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "inline JSON row object or array of rows",
		},
		&cli.StringFlag{
			Name:  "partition",
			Usage: "target partition",
		},
	}
}

// rowSource validates the --file/--data pair without touching the
// contents; reading and decoding happen inside the dispatched operation
// so their failures carry operation semantics, not usage semantics.
func rowSource(s *Session, cmd *cli.Command) (file, inline string, err error) {
	file, inline = cmd.String("file"), cmd.String("data")

	switch {
	case file != "" && inline != "":
		return "", "", s.usage(errcode.New(errcode.ValidationError,
			"--file and --data are mutually exclusive"))
	case file == "" && inline == "":
		return "", "", s.usage(errcode.New(errcode.MissingArgument,
			"either --file or --data is required"))
	}

	return file, inline, nil
}

func dataInsert(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "insert",
		Usage:     "Insert rows into a collection",
		ArgsUsage: "<collection>",
		Flags:     rowFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection")
			if err != nil {
				return err
			}
			file, inline, err := rowSource(s, cmd)
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "data insert",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					rows, err := loadRows(file, inline)
					if err != nil {
						return nil, err
					}
					return backend.Insert(ctx, args[0], cmd.String("partition"), rows)
				},
			})
		},
	}
}

func dataUpsert(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "upsert",
		Usage:     "Insert rows, replacing entities with matching primary keys",
		ArgsUsage: "<collection>",
		Flags:     rowFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection")
			if err != nil {
				return err
			}
			file, inline, err := rowSource(s, cmd)
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "data upsert",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					rows, err := loadRows(file, inline)
					if err != nil {
						return nil, err
					}
					return backend.Upsert(ctx, args[0], cmd.String("partition"), rows)
				},
			})
		},
	}
}

func dataDelete(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete entities by primary key or filter expression",
		ArgsUsage: "<collection>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ids",
				Usage: "comma separated primary keys",
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "boolean filter expression",
			},
			&cli.StringFlag{
				Name:  "partition",
				Usage: "target partition",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection")
			if err != nil {
				return err
			}

			ids := splitList(cmd.String("ids"))
			filter := cmd.String("filter")

			switch {
			case len(ids) > 0 && filter != "":
				return s.usage(errcode.New(errcode.ValidationError,
					"--ids and --filter are mutually exclusive"))
			case len(ids) == 0 && filter == "":
				return s.usage(errcode.New(errcode.MissingArgument,
					"either --ids or --filter is required"))
			}

			question := fmt.Sprintf("Delete entities matching filter: %s?", filter)
			if len(ids) > 0 {
				question = fmt.Sprintf("Delete entities with IDs: %s?", cmd.String("ids"))
			}

			return s.run(ctx, operation{
				name:    "data delete",
				confirm: question,
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					partition := cmd.String("partition")

					if len(ids) > 0 {
						if err := backend.DeleteByIDs(ctx, args[0], partition, ids); err != nil {
							return nil, err
						}
					} else if err := backend.Delete(ctx, args[0], partition, filter); err != nil {
						return nil, err
					}

					return output.Messagef("Deleted entities from '%s'", args[0]), nil
				},
			})
		},
	}
}
