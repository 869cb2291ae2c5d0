package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/schema"
)

func query(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "query",
		Usage: "Search and retrieve entities",
		Commands: []*cli.Command{
			querySearch(s),
			queryQuery(s),
			queryGet(s),
			queryHybrid(s),
		},
	})
}

func querySearch(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Vector similarity search",
		ArgsUsage: "<collection>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "vector",
				Usage: "query vector as a JSON array",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "maximum results",
				Value:   10,
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "boolean expression narrowing the candidates",
			},
			&cli.StringFlag{
				Name:  "output-fields",
				Usage: "comma separated fields to return",
			},
			&cli.StringFlag{
				Name:  "anns-field",
				Usage: "vector field to search (default: the only one)",
			},
			&cli.StringFlag{
				Name:  "metric",
				Usage: "similarity metric (default: the index's)",
			},
			&cli.IntFlag{
				Name:  "nprobe",
				Usage: "IVF clusters to probe",
			},
			&cli.IntFlag{
				Name:  "ef",
				Usage: "HNSW search width",
			},
			&cli.StringFlag{
				Name:  "partition",
				Usage: "comma separated partitions to search",
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "results to skip for pagination",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection")
			if err != nil {
				return err
			}

			if cmd.String("vector") == "" {
				return s.usage(errcode.New(errcode.MissingArgument, "--vector is required"))
			}
			vector, err := parseVector("--vector", cmd.String("vector"))
			if err != nil {
				return s.usage(err)
			}

			metric, err := schema.ParseMetric(cmd.String("metric"))
			if err != nil {
				return s.usage(err)
			}

			nprobe, ef := int(cmd.Int("nprobe")), int(cmd.Int("ef"))
			if nprobe > 0 && ef > 0 {
				return s.usage(errcode.New(errcode.ValidationError,
					"--nprobe and --ef are mutually exclusive"))
			}

			req := milvus.SearchRequest{
				Collection:   args[0],
				Partitions:   splitList(cmd.String("partition")),
				Vector:       vector,
				VectorField:  cmd.String("anns-field"),
				Metric:       metric,
				Expr:         cmd.String("filter"),
				OutputFields: splitList(cmd.String("output-fields")),
				Limit:        int(cmd.Int("limit")),
				Offset:       int(cmd.Int("offset")),
				NProbe:       nprobe,
				Ef:           ef,
			}

			return s.run(ctx, operation{
				name: "query search",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					return backend.Search(ctx, req)
				},
			})
		},
	}
}

func queryQuery(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Retrieve entities by filter expression or primary key",
		ArgsUsage: "<collection>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "filter",
				Usage: "boolean filter expression",
			},
			&cli.StringFlag{
				Name:  "ids",
				Usage: "comma separated primary keys",
			},
			&cli.StringFlag{
				Name:  "output-fields",
				Usage: "comma separated fields to return",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "maximum rows",
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "rows to skip for pagination",
			},
			&cli.StringFlag{
				Name:  "partition",
				Usage: "comma separated partitions to query",
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
					"--filter and --ids are mutually exclusive"))
			case len(ids) == 0 && filter == "":
				return s.usage(errcode.New(errcode.MissingArgument,
					"either --filter or --ids is required"))
			}

			outputFields := splitList(cmd.String("output-fields"))
			partitions := splitList(cmd.String("partition"))

			return s.run(ctx, operation{
				name: "query query",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					if len(ids) > 0 {
						return backend.Get(ctx, args[0], ids, outputFields, partitions)
					}

					return backend.Query(ctx, milvus.QueryRequest{
						Collection:   args[0],
						Partitions:   partitions,
						Expr:         filter,
						OutputFields: outputFields,
						Limit:        int(cmd.Int("limit")),
						Offset:       int(cmd.Int("offset")),
					})
				},
			})
		},
	}
}

func queryGet(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch entities by primary key",
		ArgsUsage: "<collection> <ids>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output-fields",
				Usage: "comma separated fields to return",
			},
			&cli.StringFlag{
				Name:  "partition",
				Usage: "comma separated partitions to read",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection", "ids")
			if err != nil {
				return err
			}

			ids := splitList(args[1])
			if len(ids) == 0 {
				return s.usage(errcode.New(errcode.MissingArgument, "at least one id is required"))
			}

			return s.run(ctx, operation{
				name: "query get",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					return backend.Get(ctx, args[0], ids,
						splitList(cmd.String("output-fields")), splitList(cmd.String("partition")))
				},
			})
		},
	}
}

// subSearchSpec is the JSON shape of one --req blob (or one element of
// the --file array) for hybrid search.
type subSearchSpec struct {
	Field  string    `json:"field"`
	Vector []float32 `json:"vector"`
	Limit  int       `json:"limit"`
	Filter string    `json:"filter"`
	Metric string    `json:"metric"`
	NProbe int       `json:"nprobe"`
	Ef     int       `json:"ef"`
}

func (r subSearchSpec) toSubSearch() (milvus.SubSearch, error) {
	if r.Field == "" {
		return milvus.SubSearch{}, errcode.New(errcode.ValidationError,
			`search request is missing "field"`)
	}
	if len(r.Vector) == 0 {
		return milvus.SubSearch{}, errcode.Newf(errcode.ValidationError,
			"search request for field %q has no vector", r.Field)
	}
	if r.NProbe > 0 && r.Ef > 0 {
		return milvus.SubSearch{}, errcode.Newf(errcode.ValidationError,
			"search request for field %q sets both nprobe and ef", r.Field)
	}

	metric, err := schema.ParseMetric(r.Metric)
	if err != nil {
		return milvus.SubSearch{}, err
	}

	return milvus.SubSearch{
		Field:  r.Field,
		Vector: r.Vector,
		Expr:   r.Filter,
		Limit:  r.Limit,
		Metric: metric,
		NProbe: r.NProbe,
		Ef:     r.Ef,
	}, nil
}

func queryHybrid(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "hybrid-search",
		Usage:     "Multi-vector search with rank fusion",
		ArgsUsage: "<collection>",
		Description: `Run several vector searches in one round trip and fuse their
rankings. Each request is a JSON object:

   yami query hybrid-search docs \
     --req '{"field":"title_vec","vector":[...]}' \
     --req '{"field":"body_vec","vector":[...],"filter":"year > 2020"}' \
     --ranker weighted --weights 0.7,0.3`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "req",
				Usage: "search request JSON, repeatable",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "JSON file holding an array of search requests",
			},
			&cli.StringFlag{
				Name:  "ranker",
				Usage: "fusion strategy: rrf or weighted",
				Value: "rrf",
			},
			&cli.IntFlag{
				Name:  "rrf-k",
				Usage: "rank smoothing constant for rrf",
				Value: 60,
			},
			&cli.StringFlag{
				Name:  "weights",
				Usage: "comma separated weights for the weighted ranker",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "maximum fused results",
				Value:   10,
			},
			&cli.StringFlag{
				Name:  "output-fields",
				Usage: "comma separated fields to return",
			},
			&cli.StringFlag{
				Name:  "partition",
				Usage: "comma separated partitions to search",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "collection")
			if err != nil {
				return err
			}

			reqs := cmd.StringSlice("req")
			file := cmd.String("file")

			switch {
			case len(reqs) > 0 && file != "":
				return s.usage(errcode.New(errcode.ValidationError,
					"--req and --file are mutually exclusive"))
			case len(reqs) == 0 && file == "":
				return s.usage(errcode.New(errcode.MissingArgument,
					"at least one --req (or --file) is required"))
			}

			var inline []milvus.SubSearch
			for _, raw := range reqs {
				var spec subSearchSpec
				if err := json.Unmarshal([]byte(raw), &spec); err != nil {
					return s.usage(errcode.Newf(errcode.ValidationError,
						"--req must be a JSON object: %v", err))
				}
				sub, err := spec.toSubSearch()
				if err != nil {
					return s.usage(err)
				}
				inline = append(inline, sub)
			}

			rrfK, weights, err := hybridRanker(cmd)
			if err != nil {
				return s.usage(err)
			}

			return s.run(ctx, operation{
				name: "query hybrid-search",
				run: func(ctx context.Context, backend milvus.Backend) (any, error) {
					subs := inline
					if file != "" {
						loaded, err := loadSubSearches(file)
						if err != nil {
							return nil, err
						}
						subs = loaded
					}

					return backend.HybridSearch(ctx, milvus.HybridRequest{
						Collection:   args[0],
						Partitions:   splitList(cmd.String("partition")),
						Limit:        int(cmd.Int("limit")),
						OutputFields: splitList(cmd.String("output-fields")),
						Requests:     subs,
						RRFK:         rrfK,
						Weights:      weights,
					})
				},
			})
		},
	}
}

// hybridRanker maps the ranker flags onto the request: rrf carries its
// k, weighted carries its weights, and the unused knob stays zero.
func hybridRanker(cmd *cli.Command) (int, []float64, error) {
	switch cmd.String("ranker") {
	case "rrf":
		return int(cmd.Int("rrf-k")), nil, nil
	case "weighted":
		weights, err := parseWeights(cmd.String("weights"))
		if err != nil {
			return 0, nil, err
		}
		if len(weights) == 0 {
			return 0, nil, errcode.New(errcode.MissingArgument,
				"--weights is required with --ranker weighted")
		}
		return 0, weights, nil
	default:
		return 0, nil, errcode.Newf(errcode.ValidationError,
			"invalid ranker %q (valid: rrf, weighted)", cmd.String("ranker"))
	}
}

func loadSubSearches(path string) ([]milvus.SubSearch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errcode.Newf(errcode.FileNotFound, "File not found: %s", path)
		}
		return nil, errcode.Newf(errcode.FileNotFound, "cannot read %s: %v", path, err)
	}

	var specs []subSearchSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, errcode.Newf(errcode.InvalidFormat, "invalid JSON: %v", err)
	}

	subs := make([]milvus.SubSearch, 0, len(specs))
	for _, spec := range specs {
		sub, err := spec.toSubSearch()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
