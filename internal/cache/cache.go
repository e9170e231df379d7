// Package cache stores fetched prayer times for the current day.
//
// Every location and date shares one JSON file in the OS temp directory, so
// each read loads the full history and each write rewrites it.
package cache

import (
	"math"

	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

const (
	// DefaultFileName is kept stable so caches written by earlier builds are reused.
	DefaultFileName = "st_prayer_cache_v2.json"

	// DateLayout is the local calendar date format used for Entry.Date.
	DateLayout = "2006-01-02"

	// Tolerance is the coordinate window, in degrees, within which two
	// points are treated as the same location.
	Tolerance = 0.1
)

// Entry is one location's prayer times for one local calendar day.
type Entry struct {
	Date    string       `json:"date" yaml:"date"`
	Lat     float64      `json:"lat" yaml:"lat"`
	Lon     float64      `json:"lon" yaml:"lon"`
	Timings prayer.Times `json:"timings" yaml:"timings"`
}

// Snapshot is the full contents of the cache file.
type Snapshot struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Store loads and saves snapshots. Implementations never fail the caller:
// Load returns an empty snapshot when nothing usable is stored and Save
// drops write errors.
type Store interface {
	Load() Snapshot
	Save(Snapshot)
}

// SameLocation reports whether two coordinate pairs are within Tolerance
// of each other on both axes.
func SameLocation(lat1, lon1, lat2, lon2 float64) bool {
	return math.Abs(lat1-lat2) < Tolerance && math.Abs(lon1-lon2) < Tolerance
}

// Lookup returns the first entry for date near (lat, lon).
func (s Snapshot) Lookup(date string, lat, lon float64) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Date == date && SameLocation(e.Lat, e.Lon, lat, lon) {
			return e, true
		}
	}
	return Entry{}, false
}

// Replace drops entries with the same date and location as e, then appends e.
// Entries for other dates or other locations are kept.
func (s Snapshot) Replace(e Entry) Snapshot {
	kept := make([]Entry, 0, len(s.Entries)+1)
	for _, old := range s.Entries {
		if old.Date == e.Date && SameLocation(old.Lat, old.Lon, e.Lat, e.Lon) {
			continue
		}
		kept = append(kept, old)
	}
	kept = append(kept, e)
	return Snapshot{Entries: kept}
}

// PruneBefore drops entries dated before date and reports how many were removed.
func (s Snapshot) PruneBefore(date string) (Snapshot, int) {
	kept := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Date < date {
			continue
		}
		kept = append(kept, e)
	}
	return Snapshot{Entries: kept}, len(s.Entries) - len(kept)
}

func (s Snapshot) clone() Snapshot {
	if len(s.Entries) == 0 {
		return Snapshot{}
	}
	dup := make([]Entry, len(s.Entries))
	copy(dup, s.Entries)
	return Snapshot{Entries: dup}
}
