// Package docker runs a local single-node Milvus sandbox for
// experiments and smoke tests.
//
// The Sandbox starts the container through testcontainers with a fixed
// name and a wait on the gRPC listener, so a follow-up CLI invocation
// can still address it. The Engine talks to the Docker daemon directly
// for the operations that outlive the starting process: finding the
// sandbox and tearing it down.
//
// # Usage Example
//
//	import (
//		"context"
//		"github.com/yami-cli/yami/pkg/docker"
//	)
//
//	sandbox := docker.NewSandbox(docker.SandboxOptions{})
//
//	ctx := context.Background()
//	if err := sandbox.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	// Connection address for --uri or a saved profile
//	uri, _ := sandbox.URI(ctx)
//
//	// Later, possibly from another process
//	engine, _ := docker.NewEnvEngine()
//	info, _ := engine.Find(ctx, docker.SandboxName)
//	_ = engine.Stop(ctx, docker.SandboxName)
package docker
