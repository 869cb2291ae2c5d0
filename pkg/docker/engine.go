package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/pkg/errors"
)

type (
	// DockerClient defines the interface for Docker operations used by the
	// Engine. It is satisfied by *client.Client and allows for easy mocking
	// in tests.
	DockerClient interface {
		ContainerList(context.Context, container.ListOptions) ([]container.Summary, error)
		ContainerStop(context.Context, string, container.StopOptions) error
		ContainerRemove(context.Context, string, container.RemoveOptions) error
	}

	// Engine addresses sandbox containers by name so down and status work
	// from a fresh CLI process, not just the one that started them.
	Engine struct {
		client DockerClient
	}

	// Container is the subset of container state the CLI reports.
	Container struct {
		Name   string `json:"name"`
		Image  string `json:"image"`
		State  string `json:"state"`
		Status string `json:"status"`
		URI    string `json:"uri,omitempty"`
	}
)

// NewEngine creates an Engine on top of an initialized Docker client.
//
// Example:
//
//	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cli.Close()
//
//	engine := docker.NewEngine(cli)
func NewEngine(cl DockerClient) *Engine {
	return &Engine{
		client: cl,
	}
}

// NewEnvEngine creates an Engine connected to the daemon the environment
// points at, the same way the docker CLI resolves it.
func NewEnvEngine() (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker client")
	}
	return NewEngine(cli), nil
}

// Find looks up a container by exact name, running or not. It returns
// nil without error when no container matches.
func (e *Engine) Find(ctx context.Context, name string) (*Container, error) {
	// The daemon's name filter matches substrings, so results are
	// re-checked for an exact match.
	list, err := e.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list containers")
	}

	for _, c := range list {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") != name {
				continue
			}
			return &Container{
				Name:   name,
				Image:  c.Image,
				State:  c.State,
				Status: c.Status,
				URI:    grpcURI(c.Ports),
			}, nil
		}
	}
	return nil, nil
}

// Stop stops and removes a container by name.
func (e *Engine) Stop(ctx context.Context, name string) error {
	timeout := 30
	if err := e.client.ContainerStop(ctx, name, container.StopOptions{
		Timeout: &timeout,
	}); err != nil {
		return errors.Wrapf(err, "failed to stop container: %s", name)
	}

	if err := e.client.ContainerRemove(ctx, name, container.RemoveOptions{
		Force: true,
	}); err != nil {
		return errors.Wrapf(err, "failed to remove container: %s", name)
	}

	return nil
}

// grpcURI extracts the host mapping of the Milvus gRPC port.
func grpcURI(ports []container.Port) string {
	for _, p := range ports {
		if fmt.Sprintf("%d/%s", p.PrivatePort, p.Type) == GRPCPort && p.PublicPort > 0 {
			return fmt.Sprintf("localhost:%d", p.PublicPort)
		}
	}
	return ""
}
