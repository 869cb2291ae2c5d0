package cmd

import (
	"context"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
	"github.com/yami-cli/yami/pkg/schema"
)

func index(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "index",
		Usage: "Manage vector indexes",
		Commands: []*cli.Command{
			indexCreate(s),
			indexList(s),
			indexDescribe(s),
			indexDrop(s),
		},
	})
}

func indexCreate(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Build an index on a vector field",
		ArgsUsage: "<collection> <field>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "index type: AUTOINDEX, FLAT, IVF_FLAT, IVF_SQ8, IVF_PQ, HNSW",
				Value: "AUTOINDEX",
			},
			&cli.StringFlag{
				Name:  "metric",
				Usage: "similarity metric",
				Value: "COSINE",
			},
			&cli.IntFlag{
				Name:  "nlist",
				Usage: "cluster count for IVF indexes",
				Value: 128,
			},
			&cli.IntFlag{
				Name:  "m",
				Usage: "graph degree (HNSW) or PQ segment count (IVF_PQ)",
				Value: 16,
			},
			&cli.IntFlag{
				Name:  "ef-construction",
				Usage: "HNSW build-time search width",
				Value: 200,
			},
			&cli.IntFlag{
				Name:  "nbits",
				Usage: "bits per PQ code (IVF_PQ)",
				Value: 8,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "index name (default: server-assigned)",
			},
			&cli.StringFlag{
				Name:  "params",
				Usage: "raw index params as a JSON object (builds a generic index)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection", "field")
			if err != nil {
				return err
			}

			metric, err := schema.ParseMetric(cmd.String("metric"))
			if err != nil {
				return s.usage(err)
			}

			idx, err := buildIndex(cmd, metric)
			if err != nil {
				return s.usage(err)
			}

			return s.run(ctx, operation{
				name: "index create",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					if err := backend.CreateIndex(ctx, args[0], args[1], idx, cmd.String("name")); err != nil {
						return nil, err
					}
					return output.Messagef("Index created on '%s.%s'", args[0], args[1]), nil
				},
			})
		},
	}
}

// buildIndex maps the flag surface onto the SDK's typed index
// constructors. --params sidesteps them entirely and sends the given
// parameters as-is, which is how server-side index types newer than the
// SDK stay reachable.
func buildIndex(cmd *cli.Command, metric entity.MetricType) (entity.Index, error) {
	indexType := strings.ToUpper(cmd.String("type"))

	if raw := cmd.String("params"); raw != "" {
		params, err := parseParams("--params", raw)
		if err != nil {
			return nil, err
		}
		if _, ok := params["metric_type"]; !ok {
			params["metric_type"] = string(metric)
		}
		return entity.NewGenericIndex(cmd.String("name"), entity.IndexType(indexType), params), nil
	}

	nlist := int(cmd.Int("nlist"))
	m := int(cmd.Int("m"))

	switch indexType {
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEX(metric)
	case "FLAT":
		return entity.NewIndexFlat(metric)
	case "IVF_FLAT":
		return entity.NewIndexIvfFlat(metric, nlist)
	case "IVF_SQ8":
		return entity.NewIndexIvfSQ8(metric, nlist)
	case "IVF_PQ":
		return entity.NewIndexIvfPQ(metric, nlist, m, int(cmd.Int("nbits")))
	case "HNSW":
		return entity.NewIndexHNSW(metric, m, int(cmd.Int("ef-construction")))
	default:
		return nil, errcode.Newf(errcode.ValidationError,
			"unknown index type %q (valid: AUTOINDEX, FLAT, IVF_FLAT, IVF_SQ8, IVF_PQ, HNSW; or pass --params)", cmd.String("type"))
	}
}

func indexList(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List a collection's indexes",
		ArgsUsage: "<collection>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "index list",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					return backend.ListIndexes(ctx, args[0])
				},
			})
		},
	}
}

func indexDescribe(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Describe the index on a field",
		ArgsUsage: "<collection> <field>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection", "field")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "index describe",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					return backend.DescribeIndex(ctx, args[0], args[1])
				},
			})
		},
	}
}

func indexDrop(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "drop",
		Usage:     "Drop the index on a field",
		ArgsUsage: "<collection> <field>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "index name, when the field carries a named index",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection", "field")
			if err != nil {
				return err
			}

			return s.run(ctx, operation{
				name: "index drop",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					if err := backend.DropIndex(ctx, args[0], args[1], cmd.String("name")); err != nil {
						return nil, err
					}
					return output.Messagef("Index dropped from '%s.%s'", args[0], args[1]), nil
				},
			})
		},
	}
}
