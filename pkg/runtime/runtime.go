package runtime

import (
	"context"
	"io"
)

// RunOptions defines the parameters for launching a ledger container.
type RunOptions struct {
	Image           string
	Name            string
	Env             []string
	User            string
	Privileged      bool
	PublishAllPorts bool
}

// NetworkAttachment is one network a container is attached to, with the
// address the runtime assigned on it.
type NetworkAttachment struct {
	Name      string
	IPAddress string
}

// ContainerInfo is the runtime's current view of a single container.
// Networks preserves the adapter's enumeration order.
type ContainerInfo struct {
	ID       string
	Status   string
	State    string
	Networks []NetworkAttachment
}

// ContainerRuntime defines the contract for container operations.
type ContainerRuntime interface {
	// RunContainer creates and starts a container, returning its id once the
	// runtime confirms the start. The request itself failing is terminal;
	// callers do not retry it.
	RunContainer(ctx context.Context, opts RunOptions) (string, error)

	// FindContainer looks up a container by id. A nil ContainerInfo with a
	// nil error means the runtime no longer knows the id.
	FindContainer(ctx context.Context, id string) (*ContainerInfo, error)

	// StreamLogs returns the container's combined stdout/stderr as a
	// follow stream. The caller owns the returned reader.
	StreamLogs(ctx context.Context, id string) (io.ReadCloser, error)

	// StopContainer stops the container using the runtime's default stop
	// semantics (signal, grace period, kill).
	StopContainer(ctx context.Context, id string) error

	// RemoveContainer removes the container, forcing removal if it is
	// still running.
	RemoveContainer(ctx context.Context, id string) error
}
