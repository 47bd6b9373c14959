package json

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Suad0/trading4j-sub002/internal/storage"
	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested"))
	key := storage.Key{Pair: "BTC", Label: "snapshot"}

	in := payload{Name: "stox", Value: 0.42}
	assert.NoError(t, store.Store(key, in))

	var out payload
	assert.NoError(t, store.Load(key, &out))
	assert.Equal(t, in, out)
}

func TestStore_KeysAreIsolated(t *testing.T) {
	store := NewStore(t.TempDir())

	assert.NoError(t, store.Store(storage.Key{Pair: "BTC", Label: "a"}, payload{Value: 1}))
	assert.NoError(t, store.Store(storage.Key{Pair: "BTC", Label: "b"}, payload{Value: 2}))

	var out payload
	assert.NoError(t, store.Load(storage.Key{Pair: "BTC", Label: "a"}, &out))
	assert.Equal(t, 1.0, out.Value)
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore(t.TempDir())

	var out payload
	err := store.Load(storage.Key{Pair: "ETH", Label: "missing"}, &out)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}

func TestStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	key := storage.Key{Pair: "BTC", Label: "snapshot"}

	assert.NoError(t, os.WriteFile(filepath.Join(dir, "BTC_snapshot.json"), []byte("not-json"), 0o644))

	var out payload
	err := store.Load(key, &out)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.CouldNotLoadErr))
}
