package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RunState records the container a previous `up` left running so later
// commands can find and tear it down.
type RunState struct {
	SchemaVersion string    `json:"schema_version"`
	RunID         string    `json:"run_id"`
	ContainerID   string    `json:"container_id"`
	ImageRef      string    `json:"image_ref"`
	ManifestPath  string    `json:"manifest_path"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

const (
	StateFileName      = ".ledgerkit.state.json"
	StateSchemaVersion = "1.0"
)

// loadState attempts to load the run state from the state file.
// Returns nil if the file doesn't exist (no ledger is up).
func loadState() (*RunState, error) {
	if _, err := os.Stat(StateFileName); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(StateFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	return &state, nil
}

// saveState persists the run state to the state file.
func saveState(state *RunState) error {
	state.LastUpdatedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	if err := os.WriteFile(StateFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// newState creates a run state for a freshly started container.
func newState(runID, containerID, imageRef, manifestPath string) *RunState {
	now := time.Now()
	return &RunState{
		SchemaVersion: StateSchemaVersion,
		RunID:         runID,
		ContainerID:   containerID,
		ImageRef:      imageRef,
		ManifestPath:  manifestPath,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// removeStateFile removes the state file after teardown.
func removeStateFile() error {
	if _, err := os.Stat(StateFileName); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(StateFileName); err != nil {
		return fmt.Errorf("failed to remove state file: %w", err)
	}

	return nil
}
