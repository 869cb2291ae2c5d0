package docker_test

import (
	"context"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/yami-cli/yami/pkg/docker"
)

type fakeDockerClient struct {
	containers []container.Summary
	listErr    error

	stopped []string
	removed []string
	stopErr error
}

func (f *fakeDockerClient) ContainerList(_ context.Context, _ container.ListOptions) ([]container.Summary, error) {
	return f.containers, f.listErr
}

func (f *fakeDockerClient) ContainerStop(_ context.Context, name string, _ container.StopOptions) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stopped = append(f.stopped, name)
	return nil
}

func (f *fakeDockerClient) ContainerRemove(_ context.Context, name string, _ container.RemoveOptions) error {
	f.removed = append(f.removed, name)
	return nil
}

func TestEngineFind(t *testing.T) {
	cli := &fakeDockerClient{
		containers: []container.Summary{
			{
				Names:  []string{"/yami-sandbox-old"},
				Image:  "milvusdb/milvus:v2.3.0",
				State:  "exited",
				Status: "Exited (0) 2 days ago",
			},
			{
				Names:  []string{"/yami-sandbox"},
				Image:  "milvusdb/milvus:v2.4.4",
				State:  "running",
				Status: "Up 5 minutes",
				Ports: []container.Port{
					{PrivatePort: 9091, PublicPort: 32801, Type: "tcp"},
					{PrivatePort: 19530, PublicPort: 32800, Type: "tcp"},
				},
			},
		},
	}

	found, err := docker.NewEngine(cli).Find(context.Background(), docker.SandboxName)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, &docker.Container{
		Name:   "yami-sandbox",
		Image:  "milvusdb/milvus:v2.4.4",
		State:  "running",
		Status: "Up 5 minutes",
		URI:    "localhost:32800",
	}, found)
}

func TestEngineFindMissing(t *testing.T) {
	cli := &fakeDockerClient{}

	found, err := docker.NewEngine(cli).Find(context.Background(), docker.SandboxName)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestEngineFindListError(t *testing.T) {
	cli := &fakeDockerClient{listErr: errors.New("daemon unreachable")}

	_, err := docker.NewEngine(cli).Find(context.Background(), docker.SandboxName)
	require.ErrorContains(t, err, "failed to list containers")
}

func TestEngineFindSkipsUnmappedPorts(t *testing.T) {
	cli := &fakeDockerClient{
		containers: []container.Summary{
			{
				Names: []string{"/yami-sandbox"},
				State: "created",
				Ports: []container.Port{{PrivatePort: 19530, Type: "tcp"}},
			},
		},
	}

	found, err := docker.NewEngine(cli).Find(context.Background(), docker.SandboxName)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Empty(t, found.URI)
}

func TestEngineStop(t *testing.T) {
	cli := &fakeDockerClient{}

	require.NoError(t, docker.NewEngine(cli).Stop(context.Background(), docker.SandboxName))
	require.Equal(t, []string{"yami-sandbox"}, cli.stopped)
	require.Equal(t, []string{"yami-sandbox"}, cli.removed)
}

func TestEngineStopError(t *testing.T) {
	cli := &fakeDockerClient{stopErr: errors.New("no such container")}

	err := docker.NewEngine(cli).Stop(context.Background(), docker.SandboxName)
	require.ErrorContains(t, err, "failed to stop container: yami-sandbox")
	require.Empty(t, cli.removed)
}
