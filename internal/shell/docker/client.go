package docker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/go-connections/nat"
)

// =============================================================================
// Docker Client Implementation
// =============================================================================

// DockerClient implements the Client interface using the Docker SDK.
type DockerClient struct {
	cli *client.Client
}

// NewDockerClient creates a new Docker client and verifies the engine is
// reachable. If host is empty, the default Docker host from the environment
// is used.
func NewDockerClient(host string) (*DockerClient, error) {
	var opts []client.Opt
	opts = append(opts, client.FromEnv)
	opts = append(opts, client.WithAPIVersionNegotiation())

	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewEngineError("NewDockerClient", "", "", "failed to create client", ErrEngineUnreachable)
	}

	ctx := context.Background()
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, NewEngineError("NewDockerClient", "", "", err.Error(), ErrEngineUnreachable)
	}

	return &DockerClient{cli: cli}, nil
}

// Close closes the Docker client connection.
func (d *DockerClient) Close() error {
	return d.cli.Close()
}

// =============================================================================
// Image Operations
// =============================================================================

// BuildImage builds an image from a directory build context, forwarding the
// engine's build log to opts.Output. An engine-reported build error aborts
// with the engine's explanation text.
func (d *DockerClient) BuildImage(opts BuildOptions) error {
	ctx := context.Background()

	buildCtx, err := tarBuildContext(opts.ContextDir)
	if err != nil {
		return NewEngineError("BuildImage", "image", opts.Tag, err.Error(), ErrBuildFailed)
	}

	resp, err := d.cli.ImageBuild(ctx, buildCtx, build.ImageBuildOptions{
		Tags:   []string{opts.Tag},
		Remove: true,
	})
	if err != nil {
		return NewEngineError("BuildImage", "image", opts.Tag, err.Error(), ErrBuildFailed)
	}
	defer resp.Body.Close()

	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	// The build endpoint streams JSON messages; error messages terminate the
	// stream, everything else is forwarded as build log output.
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, out, 0, false, nil); err != nil {
		if jerr, ok := err.(*jsonmessage.JSONError); ok {
			return NewEngineError("BuildImage", "image", opts.Tag, jerr.Message, ErrBuildFailed)
		}
		return NewEngineError("BuildImage", "image", opts.Tag, err.Error(), ErrBuildFailed)
	}

	return nil
}

// ImageTags returns the repository names of every image in the engine,
// without their version part.
func (d *DockerClient) ImageTags() ([]string, error) {
	ctx := context.Background()

	images, err := d.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, NewEngineError("ImageTags", "image", "", err.Error(), err)
	}

	var tags []string
	for _, img := range images {
		for _, repoTag := range img.RepoTags {
			tags = append(tags, strings.SplitN(repoTag, ":", 2)[0])
		}
	}
	return tags, nil
}

// =============================================================================
// Container Operations
// =============================================================================

// CreateContainer creates a new container from the given spec.
func (d *DockerClient) CreateContainer(spec ContainerSpec) (string, error) {
	ctx := context.Background()

	config := &container.Config{
		Image:  spec.Image,
		Cmd:    spec.Command,
		Labels: spec.Labels,
	}
	for k, v := range spec.Env {
		config.Env = append(config.Env, fmt.Sprintf("%s=%s", k, v))
	}

	hostConfig := &container.HostConfig{
		AutoRemove: spec.AutoRemove,
	}
	if spec.HostNetwork {
		hostConfig.NetworkMode = "host"
	}

	if len(spec.Ports) > 0 {
		portBindings := nat.PortMap{}
		exposedPorts := nat.PortSet{}

		for internal, external := range spec.Ports {
			containerPort := nat.Port(fmt.Sprintf("%d/tcp", internal))
			exposedPorts[containerPort] = struct{}{}
			portBindings[containerPort] = []nat.PortBinding{
				{HostPort: fmt.Sprintf("%d", external)},
			}
		}

		config.ExposedPorts = exposedPorts
		hostConfig.PortBindings = portBindings
	}

	resp, err := d.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return "", NewEngineError("CreateContainer", "container", spec.Image, err.Error(), err)
	}

	return resp.ID, nil
}

// StartContainer starts a created container.
func (d *DockerClient) StartContainer(containerID string) error {
	ctx := context.Background()
	if err := d.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return NewEngineError("StartContainer", "container", containerID, err.Error(), err)
	}
	return nil
}

// WaitContainer blocks until the container stops and returns its exit code.
func (d *DockerClient) WaitContainer(containerID string) (int64, error) {
	ctx := context.Background()

	statusCh, errCh := d.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return 0, NewEngineError("WaitContainer", "container", containerID, err.Error(), err)
	case status := <-statusCh:
		if status.Error != nil {
			return 0, NewEngineError("WaitContainer", "container", containerID, status.Error.Message, nil)
		}
		return status.StatusCode, nil
	}
}

// ContainerLogs returns the multiplexed log stream of a container.
func (d *DockerClient) ContainerLogs(containerID string) (io.ReadCloser, error) {
	ctx := context.Background()

	reader, err := d.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return nil, NewEngineError("ContainerLogs", "container", containerID, err.Error(), err)
	}
	return reader, nil
}

// =============================================================================
// Network Operations
// =============================================================================

// ListNetworks returns the names of all networks in the engine.
func (d *DockerClient) ListNetworks() ([]string, error) {
	ctx := context.Background()

	networks, err := d.cli.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return nil, NewEngineError("ListNetworks", "network", "", err.Error(), err)
	}

	names := make([]string, 0, len(networks))
	for _, n := range networks {
		names = append(names, n.Name)
	}
	return names, nil
}

// CreateNetwork creates a new bridge network.
func (d *DockerClient) CreateNetwork(name string) (string, error) {
	ctx := context.Background()

	resp, err := d.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
	})
	if err != nil {
		return "", NewEngineError("CreateNetwork", "network", name, err.Error(), err)
	}
	return resp.ID, nil
}

// ConnectNetwork connects a container to a network.
func (d *DockerClient) ConnectNetwork(networkName, containerID string) error {
	ctx := context.Background()

	if err := d.cli.NetworkConnect(ctx, networkName, containerID, nil); err != nil {
		return NewEngineError("ConnectNetwork", "network", networkName, err.Error(), err)
	}
	return nil
}

// =============================================================================
// Volume Operations
// =============================================================================

// ListVolumes returns the names of all volumes in the engine.
func (d *DockerClient) ListVolumes() ([]string, error) {
	ctx := context.Background()

	resp, err := d.cli.VolumeList(ctx, volume.ListOptions{})
	if err != nil {
		return nil, NewEngineError("ListVolumes", "volume", "", err.Error(), err)
	}

	names := make([]string, 0, len(resp.Volumes))
	for _, v := range resp.Volumes {
		names = append(names, v.Name)
	}
	return names, nil
}

// CreateVolume creates a new volume with the default driver.
func (d *DockerClient) CreateVolume(name string) (string, error) {
	ctx := context.Background()

	vol, err := d.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name})
	if err != nil {
		return "", NewEngineError("CreateVolume", "volume", name, err.Error(), err)
	}
	return vol.Name, nil
}
