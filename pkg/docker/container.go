package docker

import (
	"context"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/milvus"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// SandboxName is the fixed container name, so that up, down, and
	// status address the same instance across CLI invocations.
	SandboxName = "yami-sandbox"

	// DefaultImage is the server version the CLI is developed against.
	DefaultImage = "milvusdb/milvus:v2.4.4"

	// GRPCPort is the Milvus gRPC listener inside the container.
	GRPCPort = "19530/tcp"
)

type (
	// SandboxOptions represents options for running a local Milvus in Docker.
	SandboxOptions struct {
		// Image is the Milvus image to run (default: DefaultImage).
		Image string
	}

	// Sandbox manages a throwaway single-node Milvus container for local
	// experiments and smoke tests.
	Sandbox struct {
		options   SandboxOptions
		container *milvus.MilvusContainer
	}
)

// NewSandbox creates a sandbox with the given options.
//
// Example:
//
//	sandbox := docker.NewSandbox(docker.SandboxOptions{})
//
//	if err := sandbox.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	uri, _ := sandbox.URI(ctx)
func NewSandbox(opts SandboxOptions) *Sandbox {
	return &Sandbox{options: opts}
}

// Start launches the sandbox container and waits until the server
// answers its health probe. Starting twice reuses the running
// container, keyed by SandboxName.
func (s *Sandbox) Start(ctx context.Context) error {
	if s.container != nil {
		return errors.New("sandbox is already running")
	}

	img := s.options.Image
	if img == "" {
		img = DefaultImage
	}

	// The CLI process exits right after up; with the reaper enabled the
	// sandbox would be collected seconds later. Teardown belongs to
	// sandbox down instead.
	if err := os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true"); err != nil {
		return errors.Wrap(err, "failed to disable container reaper")
	}

	container, err := milvus.Run(ctx, img,
		testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{Name: SandboxName},
			Reuse:            true,
		}),
		testcontainers.WithWaitStrategyAndDeadline(
			5*time.Minute,
			wait.ForListeningPort(nat.Port(GRPCPort)),
		),
	)
	if err != nil {
		return errors.Wrap(err, "failed to start Milvus container")
	}

	s.container = container
	return nil
}

// Stop terminates the sandbox started by this process. Containers from
// earlier invocations are stopped through the Engine instead.
func (s *Sandbox) Stop(ctx context.Context) error {
	if s.container == nil {
		return nil
	}

	err := s.container.Terminate(ctx)
	s.container = nil

	if err != nil {
		return errors.Wrap(err, "failed to stop Milvus container")
	}
	return nil
}

// URI returns the host:port of the mapped gRPC listener, suitable for
// the --uri flag or a saved profile.
func (s *Sandbox) URI(ctx context.Context) (string, error) {
	if s.container == nil {
		return "", errors.New("sandbox is not running")
	}

	uri, err := s.container.ConnectionString(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get connection string")
	}
	return uri, nil
}

// Running returns true if this process started the sandbox.
func (s *Sandbox) Running() bool {
	return s.container != nil
}
