package risk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"NewsSentinel/internal/model"
)

// LoadState reads the risk state from a JSON file. Returns a fresh state
// for the given date if the file doesn't exist.
func LoadState(filePath, date string) (*model.RiskState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return newState(date), nil
		}
		return nil, err
	}
	var state model.RiskState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	// Stale state from a previous trading day starts over.
	if state.Date != date {
		return newState(date), nil
	}
	if state.ExposureRatio == nil {
		state.ExposureRatio = make(map[string]float64)
	}
	return &state, nil
}

// SaveState writes the risk state to a JSON file.
func SaveState(filePath string, state *model.RiskState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}

func newState(date string) *model.RiskState {
	return &model.RiskState{
		Date:          date,
		ExposureRatio: make(map[string]float64),
	}
}
