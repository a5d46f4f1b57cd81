package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"sunbench/internal/benchmark"
	"sunbench/internal/docker"

	"github.com/kballard/go-shellquote"
)

// ContainerClient is the part of docker.Client the container engine uses.
type ContainerClient interface {
	CheckDaemon(ctx context.Context) error
	RunContainer(ctx context.Context, imageRef string, suiteDir string) (string, error)
	Exec(ctx context.Context, containerID string, cmd []string) (string, error)
	StopContainer(ctx context.Context, containerID string) error
}

// Container executes workloads inside one long-lived container so the
// engine version is pinned by the image rather than the host.
type Container struct {
	Client    ContainerClient
	Image     string
	Command   []string
	SuiteDir  string
	Extension string
	Timeout   time.Duration

	containerID string
}

// NewContainer parses the engine command line and returns an unstarted
// Container engine.
func NewContainer(client ContainerClient, image, engine, suiteDir, ext string, timeout time.Duration) (*Container, error) {
	args, err := shellquote.Split(engine)
	if err != nil {
		return nil, fmt.Errorf("invalid engine command %q: %w", engine, err)
	}
	if len(args) == 0 {
		return nil, errors.New("engine command is empty")
	}
	abs, err := filepath.Abs(suiteDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve suite dir: %w", err)
	}
	return &Container{
		Client:    client,
		Image:     image,
		Command:   args,
		SuiteDir:  abs,
		Extension: ext,
		Timeout:   timeout,
	}, nil
}

// Start creates the container the workloads run in.
func (c *Container) Start(ctx context.Context) error {
	if err := c.Client.CheckDaemon(ctx); err != nil {
		return err
	}
	id, err := c.Client.RunContainer(ctx, c.Image, c.SuiteDir)
	if err != nil {
		return err
	}
	c.containerID = id
	return nil
}

// Close removes the container. It is safe to call on an unstarted engine.
func (c *Container) Close(ctx context.Context) error {
	if c.containerID == "" {
		return nil
	}
	id := c.containerID
	c.containerID = ""
	return c.Client.StopContainer(ctx, id)
}

// Resolve checks that the script exists in the mounted suite directory.
func (c *Container) Resolve(id benchmark.ID) (benchmark.Workload, error) {
	if c.containerID == "" {
		return nil, errors.New("container engine not started")
	}
	name := id.Script(c.Extension)
	if _, err := os.Stat(filepath.Join(c.SuiteDir, name)); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", benchmark.ErrWorkloadNotFound, name)
		}
		return nil, err
	}
	return benchmark.WorkloadFunc(func(ctx context.Context) error {
		return c.exec(ctx, path.Join(docker.SuiteMount, name))
	}), nil
}

func (c *Container) exec(ctx context.Context, script string) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	cmd := append(append([]string(nil), c.Command...), script)
	output, err := c.Client.Exec(ctx, c.containerID, cmd)
	if err != nil {
		if c.Timeout > 0 && ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out after %s", script, c.Timeout)
		}
		return fmt.Errorf("%s: %w%s", script, err, outputTail(output))
	}
	return nil
}
