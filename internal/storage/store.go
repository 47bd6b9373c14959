package storage

import (
	"errors"
	"fmt"
)

const (
	ModelsDir  = "models"
	HistoryDir = "history"
)

var (
	// DefaultDir is the root of the file based storage.
	DefaultDir = "file-storage"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key for a general implementation
type Key struct {
	Pair  string `json:"pair"`
	Label string `json:"label"`
}

func (k Key) Path() string {
	return fmt.Sprintf("%s_%s", k.Pair, k.Label)
}

// Persistence stores and retrieves values for the given key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}
