package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/config"
	"github.com/yami-cli/yami/pkg/docker"
	"github.com/yami-cli/yami/pkg/output"
)

// sandboxInfo reports a sandbox brought up (or found already up).
type sandboxInfo struct {
	URI     string `json:"uri"`
	Image   string `json:"image"`
	Profile string `json:"profile,omitempty"`
}

func (i sandboxInfo) Note() string {
	return fmt.Sprintf("Milvus sandbox ready at %s", i.URI)
}

// sandboxStatus is the status payload.
type sandboxStatus struct {
	Running bool   `json:"running"`
	Image   string `json:"image,omitempty"`
	State   string `json:"state,omitempty"`
	URI     string `json:"uri,omitempty"`
}

// sandbox manages a local single-node Milvus container for experiments,
// addressed by a fixed name so up, down, and status work across CLI
// invocations.
func sandbox(s *Session) *cli.Command {
	return s.group(&cli.Command{
		Name:  "sandbox",
		Usage: "Run a local Milvus in Docker",
		Commands: []*cli.Command{
			sandboxUp(s),
			sandboxDown(s),
			sandboxStatusCmd(s),
		},
	})
}

func sandboxUp(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "up",
		Usage: "Start the sandbox container",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "image",
				Usage: "Milvus image to run",
				Value: docker.DefaultImage,
			},
			&cli.StringFlag{
				Name:  "save-profile",
				Usage: "save (or overwrite) a profile pointing at the sandbox and make it the default",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := s.requireArgs(cmd); err != nil {
				return err
			}

			return s.runLocal("sandbox up", func() (any, error) {
				eng, err := s.dockerEngine()
				if err != nil {
					return nil, err
				}

				// A sandbox from an earlier invocation is reused, not
				// restarted.
				existing, err := eng.Find(ctx, docker.SandboxName)
				if err != nil {
					return nil, err
				}
				if existing != nil && existing.State == "running" {
					return s.saveSandboxProfile(cmd, sandboxInfo{URI: existing.URI, Image: existing.Image})
				}

				box := docker.NewSandbox(docker.SandboxOptions{Image: cmd.String("image")})
				if err := box.Start(ctx); err != nil {
					return nil, err
				}
				uri, err := box.URI(ctx)
				if err != nil {
					return nil, err
				}

				return s.saveSandboxProfile(cmd, sandboxInfo{URI: uri, Image: cmd.String("image")})
			})
		},
	}
}

// saveSandboxProfile persists the sandbox address under --save-profile,
// overwriting and making it the default so the next command hits the
// sandbox without flags.
func (s *Session) saveSandboxProfile(cmd *cli.Command, info sandboxInfo) (any, error) {
	name := cmd.String("save-profile")
	if name == "" {
		return info, nil
	}

	store, err := s.store()
	if err != nil {
		return nil, err
	}
	if err := store.Add(name, config.Connection{URI: info.URI}, true); err != nil {
		return nil, err
	}
	if err := store.Use(name); err != nil {
		return nil, err
	}

	info.Profile = name
	return info, nil
}

func sandboxDown(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "down",
		Usage: "Stop and remove the sandbox container",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := s.requireArgs(cmd); err != nil {
				return err
			}

			return s.runLocal("sandbox down", func() (any, error) {
				eng, err := s.dockerEngine()
				if err != nil {
					return nil, err
				}

				existing, err := eng.Find(ctx, docker.SandboxName)
				if err != nil {
					return nil, err
				}
				if existing == nil {
					return output.Messagef("Sandbox is not running"), nil
				}

				if err := eng.Stop(ctx, docker.SandboxName); err != nil {
					return nil, err
				}
				return output.Messagef("Sandbox stopped"), nil
			})
		},
	}
}

func sandboxStatusCmd(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Report whether the sandbox is running",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := s.requireArgs(cmd); err != nil {
				return err
			}

			return s.runLocal("sandbox status", func() (any, error) {
				eng, err := s.dockerEngine()
				if err != nil {
					return nil, err
				}

				existing, err := eng.Find(ctx, docker.SandboxName)
				if err != nil {
					return nil, err
				}
				if existing == nil {
					return sandboxStatus{Running: false}, nil
				}

				return sandboxStatus{
					Running: existing.State == "running",
					Image:   existing.Image,
					State:   existing.State,
					URI:     existing.URI,
				}, nil
			})
		},
	}
}
