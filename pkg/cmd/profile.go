package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/config"
	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/output"
)

// profileRow is a profile as displayed, with the token masked. The raw
// token never leaves the store through this command group.
type profileRow struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	Database string `json:"database,omitempty"`
	Token    string `json:"token,omitempty"`
	Default  bool   `json:"default"`
}

func profile(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "profile",
		Usage: "Manage connection profiles",
		Commands: []*cli.Command{
			profileAdd(s),
			profileUse(s),
			profileList(s),
			profileRemove(s),
			profileShow(s),
		},
	})
}

func profileAdd(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a connection profile",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:   "uri",
				Usage:  "Milvus server URI",
				Config: cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "authentication token to store",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "database name to store",
			},
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "replace the profile if it exists",
			},
			&cli.BoolFlag{
				Name:  "use",
				Usage: "make this profile the default",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			name := args[0]

			if cmd.String("uri") == "" {
				return s.usage(errcode.New(errcode.MissingArgument, "--uri is required"))
			}

			return s.runLocal("profile add", func() (any, error) {
				store, err := s.store()
				if err != nil {
					return nil, err
				}

				conn := config.Connection{
					URI:      cmd.String("uri"),
					Token:    cmd.String("token"),
					Database: cmd.String("db"),
				}
				if err := store.Add(name, conn, cmd.Bool("overwrite")); err != nil {
					return nil, err
				}
				if cmd.Bool("use") {
					if err := store.Use(name); err != nil {
						return nil, err
					}
				}

				return output.Messagef("Profile '%s' added", name), nil
			})
		},
	}
}

func profileUse(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "use",
		Usage:     "Set the default profile",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}

			return s.runLocal("profile use", func() (any, error) {
				store, err := s.store()
				if err != nil {
					return nil, err
				}
				if err := store.Use(args[0]); err != nil {
					return nil, err
				}
				return output.Messagef("Default profile set to '%s'", args[0]), nil
			})
		},
	}
}

func profileList(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List profiles",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := s.requireArgs(cmd); err != nil {
				return err
			}

			return s.runLocal("profile list", func() (any, error) {
				store, err := s.store()
				if err != nil {
					return nil, err
				}
				profiles, err := store.List()
				if err != nil {
					return nil, err
				}

				rows := make([]profileRow, 0, len(profiles))
				for _, p := range profiles {
					rows = append(rows, maskProfile(p))
				}
				return rows, nil
			})
		},
	}
}

func profileRemove(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove a profile",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := s.requireArgs(cmd, "name")
			if err != nil {
				return err
			}

			return s.runLocal("profile remove", func() (any, error) {
				store, err := s.store()
				if err != nil {
					return nil, err
				}
				if err := store.Remove(args[0]); err != nil {
					return nil, err
				}
				return output.Messagef("Profile '%s' removed", args[0]), nil
			})
		},
	}
}

func profileShow(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a profile (default: the default profile)",
		ArgsUsage: "[name]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 1 {
				return s.usage(errcode.Newf(errcode.ValidationError,
					"unexpected argument %q", cmd.Args().Get(1)))
			}
			name := cmd.Args().First()

			return s.runLocal("profile show", func() (any, error) {
				store, err := s.store()
				if err != nil {
					return nil, err
				}

				if name == "" {
					def, conn, ok, err := store.Default()
					if err != nil {
						return nil, err
					}
					if !ok {
						return nil, errcode.New(errcode.NotFound, "no default profile set")
					}
					return maskProfile(config.Profile{Name: def, Connection: conn, Default: true}), nil
				}

				conn, ok, err := store.Get(name)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, errcode.Newf(errcode.NotFound, "profile '%s' not found", name)
				}

				def, _, _, err := store.Default()
				if err != nil {
					return nil, err
				}
				return maskProfile(config.Profile{Name: name, Connection: conn, Default: def == name}), nil
			})
		},
	}
}

func maskProfile(p config.Profile) profileRow {
	return profileRow{
		Name:     p.Name,
		URI:      p.URI,
		Database: p.Database,
		Token:    config.MaskToken(p.Token),
		Default:  p.Default,
	}
}
