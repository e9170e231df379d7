// Package state persists small bits of user state between runs: the last
// used location, a list of saved locations and today's completed prayers.
// State is stored as TOML in $XDG_STATE_HOME/salah-times/state.toml.
package state

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/smokyabdulrahman/salah-times/internal/geo"
	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

const (
	stateDirName  = "salah-times"
	stateFileName = "state.toml"
)

// State is the persisted user state.
type State struct {
	LastLocation   *geo.Location  `toml:"last_location,omitempty"`
	SavedLocations []geo.Location `toml:"saved_locations,omitempty"`
	Completed      Completed      `toml:"completed"`
}

// Completed records which prayers were marked done on Date.
type Completed struct {
	Date    string   `toml:"date"`
	Prayers []string `toml:"prayers"`
}

// DefaultPath returns the state file location, honouring $XDG_STATE_HOME.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "cannot determine home directory")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, stateDirName, stateFileName), nil
}

// Load reads state from path. A missing or unreadable file yields empty state.
func Load(path string) State {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}
	}

	var s State
	if err := toml.Unmarshal(data, &s); err != nil {
		return State{}
	}
	return s
}

// Save writes state to path, creating directories as needed.
func Save(path string, s State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create state dir")
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshal state")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write state")
	}
	return nil
}

// Remember records loc as the last used location.
func (s *State) Remember(loc geo.Location) {
	s.LastLocation = &loc
}

// AddSaved saves loc, replacing any saved location with the same city name.
// It reports whether an existing entry was replaced.
func (s *State) AddSaved(loc geo.Location) bool {
	for i, l := range s.SavedLocations {
		if strings.EqualFold(l.City, loc.City) {
			s.SavedLocations[i] = loc
			return true
		}
	}
	s.SavedLocations = append(s.SavedLocations, loc)
	return false
}

// RemoveSaved deletes the saved location named city.
func (s *State) RemoveSaved(city string) bool {
	for i, l := range s.SavedLocations {
		if strings.EqualFold(l.City, city) {
			s.SavedLocations = slices.Delete(s.SavedLocations, i, i+1)
			return true
		}
	}
	return false
}

// Find looks up a saved location by city name, ignoring case.
func (s *State) Find(city string) (geo.Location, bool) {
	city = strings.TrimSpace(city)
	for _, l := range s.SavedLocations {
		if strings.EqualFold(l.City, city) {
			return l, true
		}
	}
	return geo.Location{}, false
}

// ToggleCompleted flips the completed mark of a prayer on date and reports
// whether it is now completed. A different date starts a fresh list.
func (s *State) ToggleCompleted(date, name string) (bool, error) {
	canonical, ok := prayer.CanonicalName(name)
	if !ok {
		return false, errors.Errorf("unknown prayer %q; valid: %s", name, strings.Join(prayer.Names, ", "))
	}

	if s.Completed.Date != date {
		s.Completed = Completed{Date: date}
	}

	if i := slices.Index(s.Completed.Prayers, canonical); i >= 0 {
		s.Completed.Prayers = slices.Delete(s.Completed.Prayers, i, i+1)
		return false, nil
	}
	s.Completed.Prayers = append(s.Completed.Prayers, canonical)
	return true, nil
}

// CompletedOn returns the prayers marked done on date.
func (s *State) CompletedOn(date string) []string {
	if s.Completed.Date != date {
		return nil
	}
	return s.Completed.Prayers
}

// IsCompleted reports whether name was marked done on date.
func (s *State) IsCompleted(date, name string) bool {
	return slices.Contains(s.CompletedOn(date), name)
}
