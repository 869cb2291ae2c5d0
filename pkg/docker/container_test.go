package docker_test

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yami-cli/yami/pkg/docker"
)

// skipIfNoDocker skips the test if Docker is not available
func skipIfNoDocker(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	// Check if Docker daemon is running
	cmd := exec.Command("docker", "ps")
	if err := cmd.Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

func TestSandbox_StartStop(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}
	skipIfNoDocker(t)

	sandbox := docker.NewSandbox(docker.SandboxOptions{})
	require.False(t, sandbox.Running())

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Minute)
	defer cancel()

	defer func() {
		_ = sandbox.Stop(ctx)
	}()

	err := sandbox.Start(ctx)
	require.NoError(t, err, "Failed to start Milvus container")
	require.True(t, sandbox.Running())

	uri, err := sandbox.URI(ctx)
	require.NoError(t, err)
	require.Contains(t, uri, ":", "URI should contain host:port")

	// The fixed name makes the sandbox addressable from other processes
	engine, err := docker.NewEnvEngine()
	require.NoError(t, err)

	found, err := engine.Find(ctx, docker.SandboxName)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "running", found.State)

	err = sandbox.Stop(ctx)
	require.NoError(t, err, "Failed to stop Milvus container")
	require.False(t, sandbox.Running())
}

func TestSandbox_URIBeforeStart(t *testing.T) {
	sandbox := docker.NewSandbox(docker.SandboxOptions{})

	_, err := sandbox.URI(context.Background())
	require.ErrorContains(t, err, "sandbox is not running")
}

func TestSandbox_StopNonExistent(t *testing.T) {
	sandbox := docker.NewSandbox(docker.SandboxOptions{Image: "milvusdb/milvus:v2.4.0"})

	// Stop should not error if the sandbox was never started
	require.NoError(t, sandbox.Stop(context.Background()))
}
