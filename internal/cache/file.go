package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FileStore keeps the snapshot in a single JSON file.
// There is no locking: concurrent writers race and the last one wins.
type FileStore struct {
	log  zerolog.Logger
	path string
}

var _ Store = (*FileStore)(nil)

// DefaultPath returns the cache file location inside the OS temp directory.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), DefaultFileName)
}

// NewFileStore creates a FileStore at path, or DefaultPath when path is empty.
func NewFileStore(log zerolog.Logger, path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{
		log:  log.With().Str("module", "cache").Logger(),
		path: path,
	}
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the cache file. A missing, unreadable or malformed file yields
// an empty snapshot.
func (s *FileStore) Load() Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Debug().Err(err).Str("path", s.path).Msg("cache unreadable, starting empty")
		}
		return Snapshot{}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Debug().Err(err).Str("path", s.path).Msg("cache malformed, starting empty")
		return Snapshot{}
	}
	return snap
}

// Save overwrites the cache file. Failures are logged and dropped.
func (s *FileStore) Save(snap Snapshot) {
	if err := s.write(snap); err != nil {
		s.log.Debug().Err(err).Str("path", s.path).Msg("cache write skipped")
	}
}

// Clear deletes the cache file. A missing file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "failed to delete cache file")
	}
	return nil
}

func (s *FileStore) write(snap Snapshot) error {
	if snap.Entries == nil {
		snap.Entries = []Entry{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "failed to marshal cache")
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write cache file")
	}
	return nil
}
