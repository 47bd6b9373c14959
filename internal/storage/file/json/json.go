package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Suad0/trading4j-sub002/internal/storage"
)

// Store is a json file implementation of storage.Persistence.
// Every key maps to one json file under the store root.
type Store struct {
	dir string
}

var _ storage.Persistence = &Store{}

// NewStore creates a json file store rooted at the given directory.
// The directory is created on the first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(k storage.Key) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.json", k.Path()))
}

// Store writes the value as json under the given key.
func (s *Store) Store(k storage.Key, value interface{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("could not create store dir '%s': %w", s.dir, err)
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal key '%s': %w", k.Path(), err)
	}
	if err := os.WriteFile(s.path(k), b, 0o644); err != nil {
		return fmt.Errorf("could not write key '%s': %w", k.Path(), err)
	}
	return nil
}

// Load reads the value stored under the given key.
func (s *Store) Load(k storage.Key, value interface{}) error {
	b, err := os.ReadFile(s.path(k))
	if err != nil {
		return fmt.Errorf("could not read key '%s': %s: %w", k.Path(), err.Error(), storage.NotFoundErr)
	}
	if err := json.Unmarshal(b, value); err != nil {
		return fmt.Errorf("could not unmarshal key '%s': %s: %w", k.Path(), err.Error(), storage.CouldNotLoadErr)
	}
	return nil
}
