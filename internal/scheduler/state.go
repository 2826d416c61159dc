package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// AlertState remembers the latest alerted candle per symbol across restarts.
type AlertState struct {
	Alerted   map[string]time.Time `json:"alerted"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// LoadAlertState reads the state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadAlertState(filePath string) (*AlertState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &AlertState{Alerted: make(map[string]time.Time)}, nil
		}
		return nil, err
	}
	var state AlertState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Alerted == nil {
		state.Alerted = make(map[string]time.Time)
	}
	return &state, nil
}

// SaveAlertState writes the state to a JSON file.
func SaveAlertState(filePath string, state *AlertState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}
