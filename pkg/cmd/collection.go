package cmd

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
	"github.com/yami-cli/yami/pkg/schema"
)

// collection creates the collection command group covering the full
// collection lifecycle: create, list, describe, drop, has, rename, and
// stats.
func collection(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "collection",
		Usage: "Manage collections",
		Commands: []*cli.Command{
			collectionCreate(s),
			collectionList(s),
			collectionDescribe(s),
			collectionDrop(s),
			collectionHas(s),
			collectionRename(s),
			collectionStats(s),
		},
	})
}

func collectionCreate(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a collection",
		ArgsUsage: "<name>",
		Description: `Create a collection either the quick way or from an explicit schema.

Quick mode (--dim) builds an int64 primary key, a float vector of the
given dimension, an AUTOINDEX, and loads the collection:

   yami collection create demo --dim 128

Schema mode declares each field as name:type[:param][:modifier...]:

   yami collection create docs \
     --field id:int64:pk:auto \
     --field text:varchar:512 \
     --field embedding:float_vector:768:L2`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "dim",
				Usage: "vector dimension for quick mode",
			},
			&cli.StringSliceFlag{
				Name:  "field",
				Usage: "field declaration, repeatable (name:type[:param][:modifier...])",
			},
			&cli.StringFlag{
				Name:  "metric",
				Usage: "similarity metric for vector fields",
				Value: "COSINE",
			},
			&cli.BoolFlag{
				Name:  "auto-id",
				Usage: "generate primary keys server-side (quick mode)",
			},
			&cli.StringFlag{
				Name:  "primary-field",
				Usage: "primary key field name (quick mode)",
				Value: "id",
			},
			&cli.StringFlag{
				Name:  "vector-field",
				Usage: "vector field name (quick mode)",
				Value: "vector",
			},
			&cli.IntFlag{
				Name:  "shards",
				Usage: "number of shards",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "collection description",
			},
			&cli.BoolFlag{
				Name:  "dynamic",
				Usage: "enable dynamic schema fields (always on in quick mode)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			name := args[0]

			dim := int(cmd.Int("dim"))
			specs := cmd.StringSlice("field")

			switch {
			case dim > 0 && len(specs) > 0:
				return s.usage(errcode.New(errcode.ValidationError,
					"--dim and --field are mutually exclusive"))
			case dim == 0 && len(specs) == 0:
				return s.usage(errcode.New(errcode.MissingArgument,
					"either --dim or --field is required"))
			}

			metric, err := schema.ParseMetric(cmd.String("metric"))
			if err != nil {
				return s.usage(err)
			}

			plan, err := createPlan(cmd, name, dim, specs, metric)
			if err != nil {
				return s.usage(err)
			}

			return s.run(ctx, operation{
				name: "collection create",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					if err := backend.CreateCollection(ctx, plan); err != nil {
						return nil, err
					}
					return output.Messagef("Collection '%s' created", name), nil
				},
			})
		},
	}
}

// createPlan assembles the create request for either mode. Quick mode
// loads the collection for immediate use; schema mode leaves loading to
// an explicit load command.
func createPlan(cmd *cli.Command, name string, dim int, specs []string, metric entity.MetricType) (milvus.CreatePlan, error) {
	if dim > 0 {
		pk := cmd.String("primary-field")
		vec := cmd.String("vector-field")
		fields := []*schema.Field{
			{Name: pk, Type: entity.FieldTypeInt64, PrimaryKey: true, AutoID: cmd.Bool("auto-id")},
			{Name: vec, Type: entity.FieldTypeFloatVector, Dim: dim},
		}

		return milvus.CreatePlan{
			Schema:   schema.Build(name, cmd.String("description"), fields, true),
			Metrics:  map[string]entity.MetricType{vec: metric},
			ShardNum: int32(cmd.Int("shards")),
			Load:     true,
		}, nil
	}

	fields, err := schema.ParseFields(specs)
	if err != nil {
		return milvus.CreatePlan{}, err
	}

	return milvus.CreatePlan{
		Schema:   schema.Build(name, cmd.String("description"), fields, cmd.Bool("dynamic")),
		Metrics:  vectorMetrics(fields, metric),
		ShardNum: int32(cmd.Int("shards")),
	}, nil
}

// vectorMetrics picks the index metric per vector field: an explicit
// per-field metric wins, sparse vectors default to IP, everything else
// takes the --metric flag.
func vectorMetrics(fields []*schema.Field, fallback entity.MetricType) map[string]entity.MetricType {
	metrics := make(map[string]entity.MetricType)
	for _, f := range fields {
		if !f.IsVector() {
			continue
		}

		m := f.Metric
		if m == "" {
			m = fallback
			if f.Type == entity.FieldTypeSparseVector {
				m = entity.IP
			}
		}
		metrics[f.Name] = m
	}
	return metrics
}

func collectionList(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List collections",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := s.requireArgs(cmd); err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "collection list",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					return backend.ListCollections(ctx)
				},
			})
		},
	}
}

func collectionDescribe(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Show a collection's schema and state",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "collection describe",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					return backend.DescribeCollection(ctx, args[0])
				},
			})
		},
	}
}

func collectionDrop(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "drop",
		Usage:     "Drop a collection and all its data",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			name := args[0]

			return s.run(ctx, operation{
				name:    "collection drop",
				confirm: fmt.Sprintf("Are you sure you want to drop collection '%s'?", name),
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					if err := backend.DropCollection(ctx, name); err != nil {
						return nil, err
					}
					return output.Messagef("Collection '%s' dropped", name), nil
				},
			})
		},
	}
}

func collectionHas(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "has",
		Usage:     "Check whether a collection exists",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			name := args[0]

			return s.run(ctx, operation{
				name: "collection has",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					exists, err := backend.HasCollection(ctx, name)
					if err != nil {
						return nil, err
					}
					return struct {
						Name   string `json:"name"`
						Exists bool   `json:"exists"`
					}{name, exists}, nil
				},
			})
		},
	}
}

func collectionRename(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a collection",
		ArgsUsage: "<old> <new>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "old", "new")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "collection rename",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					if err := backend.RenameCollection(ctx, args[0], args[1]); err != nil {
						return nil, err
					}
					return output.Messagef("Collection '%s' renamed to '%s'", args[0], args[1]), nil
				},
			})
		},
	}
}

func collectionStats(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show collection statistics",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "collection stats",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					return backend.CollectionStats(ctx, args[0])
				},
			})
		},
	}
}
