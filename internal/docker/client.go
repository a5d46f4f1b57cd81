package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

// SuiteMount is where the suite directory appears inside the container.
const SuiteMount = "/suite"

// APIClient defines the subset of Docker API methods we use.
// This allows for mocking in tests.
type APIClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerExecCreate(ctx context.Context, container string, config container.ExecOptions) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config container.ExecStartOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}

// Client wraps the official Docker client with the calls needed to run
// workloads inside a long-lived container.
type Client struct {
	api APIClient
}

// NewClient creates a client configured from the environment (DOCKER_HOST etc).
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Client{api: cli}, nil
}

// Close closes the underlying docker client connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// CheckDaemon verifies that the Docker daemon is running and reachable.
func (c *Client) CheckDaemon(ctx context.Context) error {
	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon is not reachable: %w", err)
	}
	return nil
}

// RunContainer starts an idle container from imageRef with suiteDir mounted
// read-only at SuiteMount and returns its ID.
func (c *Client) RunContainer(ctx context.Context, imageRef string, suiteDir string) (string, error) {
	// Best effort: a locally built image is not pullable.
	if reader, err := c.api.ImagePull(ctx, imageRef, image.PullOptions{}); err == nil {
		io.Copy(io.Discard, reader)
		reader.Close()
	}

	resp, err := c.api.ContainerCreate(ctx,
		&container.Config{
			Image:      imageRef,
			Tty:        true,
			OpenStdin:  true,
			WorkingDir: SuiteMount,
			Entrypoint: []string{"/bin/sh"},
		},
		&container.HostConfig{
			Binds: []string{fmt.Sprintf("%s:%s:ro", suiteDir, SuiteMount)},
		}, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := c.api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		c.api.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("failed to start container: %w", err)
	}
	return resp.ID, nil
}

// Exec runs cmd in the container and waits for it. It returns the combined
// output and an error if the command exits non-zero. When ctx is done first,
// Exec returns ctx.Err() without waiting for the command.
func (c *Client) Exec(ctx context.Context, containerID string, cmd []string) (string, error) {
	respID, err := c.api.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create exec: %w", err)
	}

	resp, err := c.api.ContainerExecAttach(ctx, respID.ID, container.ExecStartOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to attach exec: %w", err)
	}
	defer resp.Close()

	// The copy only returns once the stream ends, so a done context closes
	// the connection under it. The exec'd process itself keeps running until
	// the container is removed.
	stop := context.AfterFunc(ctx, resp.Close)
	defer stop()

	// Tty is off for the exec, so the stream is multiplexed.
	var outBuf, errBuf bytes.Buffer
	_, copyErr := stdcopy.StdCopy(&outBuf, &errBuf, resp.Reader)
	output := outBuf.String() + errBuf.String()
	if err := ctx.Err(); err != nil {
		return output, err
	}
	if copyErr != nil {
		return "", fmt.Errorf("failed to copy exec output: %w", copyErr)
	}

	inspect, err := c.api.ContainerExecInspect(ctx, respID.ID)
	if err != nil {
		return output, fmt.Errorf("failed to inspect exec: %w", err)
	}
	if inspect.ExitCode != 0 {
		return output, fmt.Errorf("command exited with code %d", inspect.ExitCode)
	}
	return output, nil
}

// StopContainer stops and removes the container.
func (c *Client) StopContainer(ctx context.Context, containerID string) error {
	// Removal below is forced, so a failed stop is not fatal.
	_ = c.api.ContainerStop(ctx, containerID, container.StopOptions{})
	if err := c.api.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", containerID, err)
	}
	return nil
}
