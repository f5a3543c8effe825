package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	lkerrors "ledgerkit/internal/errors"
	"ledgerkit/pkg/runtime"
)

// healthySuffix is the literal suffix Docker appends to the status string
// of a container whose embedded health check passes.
const healthySuffix = "(healthy)"

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// State identifies where a Ledger is in its container lifecycle.
type State int

const (
	StateUnstarted State = iota
	StateStarting
	StateReady
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Ledger owns the lifecycle of exactly one containerized ledger node:
// start, health-gated readiness, accessors, stop and destroy. A Ledger is
// meant for single-threaded sequential use, one handle per test.
type Ledger struct {
	cfg         Config
	rt          runtime.ContainerRuntime
	state       State
	containerID string
}

// New builds a Ledger handle from the given runtime and options. The
// configuration is validated once here and immutable afterwards.
func New(rt runtime.ContainerRuntime, opts ...Option) (*Ledger, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: container runtime is required", lkerrors.ErrConfigInvalid)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", lkerrors.ErrConfigInvalid, err)
	}

	return &Ledger{
		cfg: cfg,
		rt:  rt,
	}, nil
}

// Adopt rebuilds a handle around a container id recorded by a previous run.
// The container is assumed started; the handle begins in the ready state so
// accessors and teardown work without another Start.
func Adopt(rt runtime.ContainerRuntime, containerID string, opts ...Option) (*Ledger, error) {
	if containerID == "" {
		return nil, fmt.Errorf("%w: cannot adopt a blank container id", lkerrors.ErrConfigInvalid)
	}

	l, err := New(rt, opts...)
	if err != nil {
		return nil, err
	}

	l.containerID = containerID
	l.state = StateReady
	return l, nil
}

// Start launches the ledger container and blocks until the runtime reports
// it healthy, returning the container id. A container still owned by this
// handle from an earlier Start is stopped and removed first, so repeated
// starts cannot leak instances.
func (l *Ledger) Start(ctx context.Context) (string, error) {
	if l.containerID != "" {
		if err := l.replaceExisting(ctx); err != nil {
			return "", err
		}
	}

	opts := runtime.RunOptions{
		Image:           l.ImageRef(),
		Name:            fmt.Sprintf("ledgerkit-%s", uuid.New().String()),
		Env:             l.cfg.Env,
		User:            "root",
		Privileged:      true,
		PublishAllPorts: true,
	}

	l.state = StateStarting
	containerID, err := l.rt.RunContainer(ctx, opts)
	if err != nil {
		l.state = StateUnstarted
		return "", fmt.Errorf("%w: %w", lkerrors.ErrRunRequestFailed, err)
	}

	l.containerID = containerID
	l.cfg.Logger.Info("Ledger container started", "image", opts.Image, "containerId", containerID)

	if l.cfg.EmitLogs {
		l.streamLogs(ctx, containerID)
	}

	if err := l.waitUntilHealthy(ctx, containerID); err != nil {
		return "", err
	}

	l.state = StateReady
	l.cfg.Logger.Info("Ledger container healthy", "containerId", containerID)
	return containerID, nil
}

// replaceExisting awaits stop and removal of the previous container before
// a re-Start issues a new run request. A stop failure is tolerated because
// the forced removal covers it; a removal failure is not.
func (l *Ledger) replaceExisting(ctx context.Context) error {
	containerID := l.containerID
	l.cfg.Logger.Info("Replacing existing ledger container", "containerId", containerID)

	if err := l.rt.StopContainer(ctx, containerID); err != nil {
		l.cfg.Logger.Warn("Failed to stop previous container", "containerId", containerID, "error", err)
	}

	if err := l.rt.RemoveContainer(ctx, containerID); err != nil {
		return fmt.Errorf("failed to remove previous container %s: %w", containerID, err)
	}

	l.containerID = ""
	l.state = StateUnstarted
	return nil
}

// streamLogs forwards the container's combined output to the logger, tagged
// with the image reference. A failure to attach is reported as a warning and
// never blocks readiness detection.
func (l *Ledger) streamLogs(ctx context.Context, containerID string) {
	logs, err := l.rt.StreamLogs(ctx, containerID)
	if err != nil {
		l.cfg.Logger.Warn("Failed to attach to container logs", "containerId", containerID, "error", err)
		return
	}

	imageRef := l.ImageRef()
	logger := l.cfg.Logger

	go func() {
		defer logs.Close()

		scanner := bufio.NewScanner(logs)
		for scanner.Scan() {
			if line := cleanLogLine(scanner.Text()); line != "" {
				logger.Info("Container output", "image", imageRef, "line", line)
			}
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Container log stream ended with error", "containerId", containerID, "error", err)
		}
	}()
}

// waitUntilHealthy polls the runtime at the configured interval until the
// container's status string carries the healthy suffix. "Not yet healthy"
// retries indefinitely unless a start timeout is set; a failing status query
// is surfaced immediately instead of being retried.
func (l *Ledger) waitUntilHealthy(ctx context.Context, containerID string) error {
	if l.cfg.StartTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.StartTimeout)
		defer cancel()
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(l.cfg.PollInterval), ctx)

	check := func() error {
		info, err := l.rt.FindContainer(ctx, containerID)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %w", lkerrors.ErrHealthCheckFailed, err))
		}
		if info == nil {
			return backoff.Permanent(fmt.Errorf("%w: container %s is no longer known to the runtime", lkerrors.ErrHealthCheckFailed, containerID))
		}
		if !strings.HasSuffix(info.Status, healthySuffix) {
			l.cfg.Logger.Debug("Ledger container not healthy yet", "containerId", containerID, "status", info.Status, "state", info.State)
			return fmt.Errorf("container %s not healthy yet: %s", containerID, info.Status)
		}
		return nil
	}

	if err := backoff.Retry(check, policy); err != nil {
		if l.cfg.StartTimeout > 0 && ctx.Err() != nil {
			return fmt.Errorf("%w: container %s did not report healthy within %s", lkerrors.ErrHealthCheckFailed, containerID, l.cfg.StartTimeout)
		}
		return err
	}
	return nil
}

// Stop asks the runtime to stop the container with its default stop
// semantics. The handle keeps the container id so Destroy can still remove
// the stopped instance.
func (l *Ledger) Stop(ctx context.Context) error {
	if l.containerID == "" {
		return fmt.Errorf("%w: nothing to stop", lkerrors.ErrNoContainer)
	}

	if err := l.rt.StopContainer(ctx, l.containerID); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", l.containerID, err)
	}

	l.state = StateStopped
	l.cfg.Logger.Info("Ledger container stopped", "containerId", l.containerID)
	return nil
}

// Destroy removes the container and clears the recorded id. Calling it on a
// handle that was never started is a caller lifecycle bug and fails loudly.
func (l *Ledger) Destroy(ctx context.Context) error {
	if l.containerID == "" {
		return fmt.Errorf("%w: ledger was never started", lkerrors.ErrNoContainer)
	}

	containerID := l.containerID
	if err := l.rt.RemoveContainer(ctx, containerID); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", containerID, err)
	}

	l.containerID = ""
	l.state = StateUnstarted
	l.cfg.Logger.Info("Ledger container removed", "containerId", containerID)
	return nil
}

// ContainerID returns the id recorded when the container started.
func (l *Ledger) ContainerID() (string, error) {
	if l.containerID == "" {
		return "", fmt.Errorf("%w: call Start first", lkerrors.ErrNotStarted)
	}
	return l.containerID, nil
}

// ContainerIPAddress resolves the container's IP address. Without a
// configured network name the first network the runtime enumerates wins;
// with one, only that network is considered.
func (l *Ledger) ContainerIPAddress(ctx context.Context) (string, error) {
	containerID, err := l.ContainerID()
	if err != nil {
		return "", err
	}

	info, err := l.rt.FindContainer(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}
	if info == nil {
		return "", fmt.Errorf("%w: container %s is no longer known to the runtime", lkerrors.ErrNoContainer, containerID)
	}

	if len(info.Networks) == 0 {
		return "", fmt.Errorf("%w: container %s", lkerrors.ErrNoNetwork, containerID)
	}

	if l.cfg.NetworkName != "" {
		for _, network := range info.Networks {
			if network.Name == l.cfg.NetworkName {
				return network.IPAddress, nil
			}
		}
		return "", fmt.Errorf("%w: container %s is not attached to network %q", lkerrors.ErrNoNetwork, containerID, l.cfg.NetworkName)
	}

	return info.Networks[0].IPAddress, nil
}

// ImageRef returns the fully-qualified image reference.
func (l *Ledger) ImageRef() string {
	return fmt.Sprintf("%s:%s", l.cfg.ImageName, l.cfg.ImageTag)
}

// State reports the handle's current lifecycle state.
func (l *Ledger) State() State {
	return l.state
}
