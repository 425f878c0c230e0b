package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jkor2/lifeof/internal/model"
)

// State is what the front end keeps between runs.
type State struct {
	LastPeriod     string `json:"last_period"`
	CurrentEntryID string `json:"current_entry_id"`

	path string
}

// StatePath is state.json under the user config dir.
func StatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lifeof", "state.json"), nil
}

// LoadState reads path. A missing or unreadable file gives a fresh state
// that will be written back to path.
func LoadState(path string) (*State, error) {
	s := &State{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, s); err != nil {
		return &State{path: path}, err
	}
	return s, nil
}

// Period is the remembered period, am when none was saved.
func (s *State) Period() string {
	if s.LastPeriod == model.PeriodPM {
		return model.PeriodPM
	}
	return model.PeriodAM
}

func (s *State) Save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
