package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"apigw-resource/pkg/config"
)

// StateManager keeps the last applied properties and physical id of each
// resource so later runs can send Update and Delete events.
type StateManager struct {
	StateDir string
}

type ResourceState struct {
	Name               string                 `json:"name"`
	Properties         map[string]interface{} `json:"properties"`
	PhysicalResourceID string                 `json:"physicalResourceId"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

func NewStateManager(stateDir string) *StateManager {
	if stateDir == "" {
		stateDir = config.DefaultStateDir()
	}
	return &StateManager{StateDir: stateDir}
}

func (s *StateManager) GetStatePath(name string) string {
	return filepath.Join(s.StateDir, name+".json")
}

func (s *StateManager) SaveState(state *ResourceState) error {
	if err := os.MkdirAll(s.StateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	state.UpdatedAt = time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := os.WriteFile(s.GetStatePath(state.Name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// LoadState returns nil without error when name has no state.
func (s *StateManager) LoadState(name string) (*ResourceState, error) {
	data, err := os.ReadFile(s.GetStatePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state ResourceState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &state, nil
}

func (s *StateManager) DeleteState(name string) error {
	if err := os.Remove(s.GetStatePath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// ListStates returns every stored state ordered by name.
func (s *StateManager) ListStates() ([]*ResourceState, error) {
	entries, err := os.ReadDir(s.StateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	var states []*ResourceState
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		state, err := s.LoadState(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		if state != nil {
			states = append(states, state)
		}
	}

	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states, nil
}

// PrintStates writes a table of stored resources.
func PrintStates(w io.Writer, s *StateManager) error {
	states, err := s.ListStates()
	if err != nil {
		return err
	}
	if len(states) == 0 {
		fmt.Fprintln(w, "No resources in state")
		return nil
	}

	fmt.Fprintf(w, "%-30s %-20s %s\n", "NAME", "PHYSICAL ID", "UPDATED")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, st := range states {
		fmt.Fprintf(w, "%-30s %-20s %s\n", st.Name, st.PhysicalResourceID, st.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}
