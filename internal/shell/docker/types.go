// Package docker provides the container engine client and the deployment
// orchestrator built on top of it.
package docker

import (
	"io"
)

// =============================================================================
// Container Types
// =============================================================================

// ContainerSpec defines the specification for creating a container.
type ContainerSpec struct {
	Image   string
	Command []string
	Env     map[string]string
	Labels  map[string]string
	// Ports maps internal container ports to host ports.
	Ports map[int]int
	// AutoRemove removes the container from the engine when it stops.
	AutoRemove bool
	// HostNetwork attaches the container to the host network namespace so it
	// can reach ports bound on the host directly.
	HostNetwork bool
}

// BuildOptions defines the specification for building an image from a
// directory build context.
type BuildOptions struct {
	// ContextDir is the build context directory.
	ContextDir string
	// Tag is the name the built image is tagged with.
	Tag string
	// Output receives the engine's build log stream.
	Output io.Writer
}

// =============================================================================
// Client Interface
// =============================================================================

// Client is the capability surface the orchestrator needs from the container
// engine. DockerClient implements it against the Docker SDK; tests implement
// it with a fake.
type Client interface {
	// Image operations
	BuildImage(opts BuildOptions) error
	ImageTags() ([]string, error)

	// Container operations
	CreateContainer(spec ContainerSpec) (containerID string, err error)
	StartContainer(containerID string) error
	WaitContainer(containerID string) (exitCode int64, err error)
	ContainerLogs(containerID string) (io.ReadCloser, error)

	// Network operations
	ListNetworks() ([]string, error)
	CreateNetwork(name string) (networkID string, err error)
	ConnectNetwork(networkName, containerID string) error

	// Volume operations
	ListVolumes() ([]string, error)
	CreateVolume(name string) (volumeName string, err error)

	// Close releases the engine connection.
	Close() error
}

// ConnectFunc dials the engine. The orchestrator calls it lazily so that
// invocations with nothing to do never touch the engine.
type ConnectFunc func() (Client, error)

// =============================================================================
// Label Constants
// =============================================================================

const (
	LabelManaged   = "com.challrun.managed"
	LabelRun       = "com.challrun.run"
	LabelChallenge = "com.challrun.challenge"
)

// TestEnvMarker is set in every container started by the orchestrator so
// challenge code can tell an ephemeral test run from production hosting.
const TestEnvMarker = "TEST"
