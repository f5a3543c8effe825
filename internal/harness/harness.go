// Package harness wires the manifest, the ledger handle and the state file
// into the CLI commands: bring one test ledger up, inspect it, tear it down.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"ledgerkit/internal/connector"
	lkerrors "ledgerkit/internal/errors"
	"ledgerkit/internal/ledger"
	"ledgerkit/internal/parser"
	"ledgerkit/internal/ui"
	"ledgerkit/pkg/manifest"
	"ledgerkit/pkg/runtime"
)

// Up parses the manifest, starts the ledger container, waits until it is
// healthy and records the run in the state file. Exactly one ledger can be
// up per working directory.
func Up(ctx context.Context, rt runtime.ContainerRuntime, manifestPath string) error {
	existing, err := loadState()
	if err != nil {
		return lkerrors.NewStateError(
			"Failed to load run state",
			err.Error(),
			fmt.Sprintf("Remove or repair %s and retry", StateFileName),
			err,
		)
	}
	if existing != nil {
		return lkerrors.NewStateError(
			"A test ledger is already up",
			fmt.Sprintf("State file %s records container %s", StateFileName, existing.ContainerID),
			"Run 'ledgerkit down' before starting another ledger",
			lkerrors.ErrStateInvalid,
		)
	}

	m, err := parser.Parse(manifestPath)
	if err != nil {
		return lkerrors.NewParseError(
			"Failed to load manifest",
			err.Error(),
			"Check the manifest path and its YAML structure",
			err,
		)
	}
	slog.Info("Manifest parsed successfully", "name", m.Metadata.Name, "kind", m.Kind)

	opts, err := LedgerOptions(&m.Spec.Ledger)
	if err != nil {
		return lkerrors.NewConfigError(
			"Invalid ledger configuration",
			err.Error(),
			"Fix the spec.ledger section of the manifest",
			err,
		)
	}

	handle, err := ledger.New(rt, opts...)
	if err != nil {
		return fmt.Errorf("failed to build ledger handle: %w", err)
	}

	runID := uuid.New().String()
	slog.Info("Starting test ledger", "runId", runID, "image", handle.ImageRef())

	containerID, err := handle.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start test ledger: %w", err)
	}

	if err := saveState(newState(runID, containerID, handle.ImageRef(), manifestPath)); err != nil {
		return fmt.Errorf("ledger is up but state could not be saved: %w", err)
	}

	console := ui.NewConsole()
	console.PrintSuccess(fmt.Sprintf("Test ledger is up: %s (%s)", containerID, handle.ImageRef()))

	if conn, err := connector.FromLedger(ctx, handle, m.Spec.Connector.RPCHTTPPort, m.Spec.Connector.RPCWSPort); err != nil {
		console.PrintWarning(fmt.Sprintf("Could not derive connector endpoints: %s", err))
	} else {
		cfg := conn.Config()
		console.PrintInfo(fmt.Sprintf("RPC endpoints: %s %s", cfg.RPCHTTPEndpoint, cfg.RPCWSEndpoint))
	}

	return nil
}

// Down stops and removes the recorded container and deletes the state file.
func Down(ctx context.Context, rt runtime.ContainerRuntime) error {
	handle, state, err := adoptFromState(rt)
	if err != nil {
		return err
	}

	if err := handle.Stop(ctx); err != nil {
		// The container may already be stopped; removal below still applies.
		slog.Warn("Failed to stop ledger container", "containerId", state.ContainerID, "error", err)
	}

	if err := handle.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy test ledger: %w", err)
	}

	if err := removeStateFile(); err != nil {
		return err
	}

	ui.NewConsole().PrintSuccess(fmt.Sprintf("Test ledger torn down: %s", state.ContainerID))
	return nil
}

// Status reports the runtime's current view of the recorded container.
func Status(ctx context.Context, rt runtime.ContainerRuntime) (*runtime.ContainerInfo, error) {
	state, err := requireState()
	if err != nil {
		return nil, err
	}

	info, err := rt.FindContainer(ctx, state.ContainerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lkerrors.ErrRuntimeFailed, err)
	}
	if info == nil {
		return nil, lkerrors.NewNoContainerError(
			"Recorded container is gone",
			fmt.Sprintf("The runtime no longer knows container %s", state.ContainerID),
			"Run 'ledgerkit down' to clear the stale state file",
			lkerrors.ErrNoContainer,
		)
	}

	return info, nil
}

// IPAddress resolves the recorded container's address via the ledger handle.
func IPAddress(ctx context.Context, rt runtime.ContainerRuntime) (string, error) {
	handle, _, err := adoptFromState(rt)
	if err != nil {
		return "", err
	}
	return handle.ContainerIPAddress(ctx)
}

func requireState() (*RunState, error) {
	state, err := loadState()
	if err != nil {
		return nil, lkerrors.NewStateError(
			"Failed to load run state",
			err.Error(),
			fmt.Sprintf("Remove or repair %s and retry", StateFileName),
			err,
		)
	}
	if state == nil {
		return nil, lkerrors.NewStateError(
			"No test ledger is up",
			fmt.Sprintf("No %s file found in the current directory", StateFileName),
			"Run 'ledgerkit up -f <manifest>' first",
			lkerrors.ErrStateInvalid,
		)
	}
	return state, nil
}

func adoptFromState(rt runtime.ContainerRuntime) (*ledger.Ledger, *RunState, error) {
	state, err := requireState()
	if err != nil {
		return nil, nil, err
	}

	handle, err := ledger.Adopt(rt, state.ContainerID, ledger.WithEmitLogs(false))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to adopt recorded container: %w", err)
	}
	return handle, state, nil
}

// LedgerOptions translates the manifest's ledger spec into handle options.
// Empty fields keep the built-in defaults.
func LedgerOptions(spec *manifest.LedgerSpec) ([]ledger.Option, error) {
	var opts []ledger.Option

	if spec.Image != "" {
		opts = append(opts, ledger.WithImageName(spec.Image))
	}
	if spec.Tag != "" {
		opts = append(opts, ledger.WithImageTag(spec.Tag))
	}
	if len(spec.Env) > 0 {
		opts = append(opts, ledger.WithEnv(spec.Env))
	}
	if spec.EmitLogs != nil {
		opts = append(opts, ledger.WithEmitLogs(*spec.EmitLogs))
	}
	if spec.NetworkName != "" {
		opts = append(opts, ledger.WithNetworkName(spec.NetworkName))
	}

	if spec.StartTimeout != "" {
		timeout, err := time.ParseDuration(spec.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid startTimeout %q: %w", spec.StartTimeout, err)
		}
		opts = append(opts, ledger.WithStartTimeout(timeout))
	}

	if spec.LogLevel != "" {
		level, err := parseLogLevel(spec.LogLevel)
		if err != nil {
			return nil, err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		opts = append(opts, ledger.WithLogger(logger))
	}

	return opts, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
