package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"ledgerkit/pkg/runtime"
)

// DockerRuntime implements the ContainerRuntime interface using Docker client.
type DockerRuntime struct {
	client *client.Client
}

// NewDockerRuntime creates a new DockerRuntime instance using client.FromEnv.
func NewDockerRuntime() (*DockerRuntime, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	// Check if Docker daemon is accessible
	ctx := context.Background()
	_, err = dockerClient.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Docker daemon: %w", err)
	}

	return &DockerRuntime{
		client: dockerClient,
	}, nil
}

// RunContainer creates and starts a container, returning its id. A start
// failure removes the half-created container before the error is returned.
func (d *DockerRuntime) RunContainer(ctx context.Context, opts runtime.RunOptions) (string, error) {
	slog.Info("Running container", "image", opts.Image, "name", opts.Name)

	containerConfig := &container.Config{
		Image: opts.Image,
		Env:   opts.Env,
		User:  opts.User,
	}

	hostConfig := &container.HostConfig{
		Privileged:      opts.Privileged,
		PublishAllPorts: opts.PublishAllPorts,
	}

	resp, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, opts.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	containerID := resp.ID

	if err := d.client.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		if removeErr := d.client.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); removeErr != nil {
			slog.Error("Failed to remove container after start failure", "containerID", containerID, "error", removeErr)
		}
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	return containerID, nil
}

// FindContainer looks up a container by id, including stopped ones. Docker
// reports networks as a map, so attachments are sorted by network name to
// give callers a stable enumeration order.
func (d *DockerRuntime) FindContainer(ctx context.Context, id string) (*runtime.ContainerInfo, error) {
	listFilters := filters.NewArgs(filters.Arg("id", id))
	containers, err := d.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: listFilters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return nil, nil
	}

	summary := containers[0]
	info := &runtime.ContainerInfo{
		ID:     summary.ID,
		Status: summary.Status,
		State:  summary.State,
	}

	if summary.NetworkSettings != nil {
		names := make([]string, 0, len(summary.NetworkSettings.Networks))
		for name := range summary.NetworkSettings.Networks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			info.Networks = append(info.Networks, runtime.NetworkAttachment{
				Name:      name,
				IPAddress: summary.NetworkSettings.Networks[name].IPAddress,
			})
		}
	}

	return info, nil
}

// StreamLogs returns the container's combined output as a follow stream.
func (d *DockerRuntime) StreamLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	logs, err := d.client.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get container logs: %w", err)
	}
	return logs, nil
}

// StopContainer stops the container with the daemon's default grace period.
func (d *DockerRuntime) StopContainer(ctx context.Context, id string) error {
	if err := d.client.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", id, err)
	}
	return nil
}

// RemoveContainer removes the container, forcing removal if still running.
func (d *DockerRuntime) RemoveContainer(ctx context.Context, id string) error {
	if err := d.client.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", id, err)
	}
	return nil
}
