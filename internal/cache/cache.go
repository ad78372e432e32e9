package cache

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is the injectable cache abstraction: an exact-match key/value store
// for derived, immutable results.
type Store[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T) error
}

// Key hashes the identifying parameters of a computation into a
// content-addressed cache key.
func Key(params ...interface{}) string {
	var keyData string
	for _, param := range params {
		keyData += fmt.Sprintf("%v_", param)
	}
	h := sha1.New()
	h.Write([]byte(keyData))
	return hex.EncodeToString(h.Sum(nil))
}

type entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

// FileCache persists entries as JSON files under a directory, with a checksum
// guarding against partial writes. Entries never expire; results are assumed
// durable for the lifetime of the data directory.
type FileCache[T any] struct {
	cacheDir string
}

func NewFileCache[T any](cacheDir string) *FileCache[T] {
	return &FileCache[T]{cacheDir: cacheDir}
}

func (fc *FileCache[T]) Get(key string) (T, bool) {
	var zero T
	cacheFile := filepath.Join(fc.cacheDir, key+".json")

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return zero, false
	}

	var e entry[T]
	if err := json.Unmarshal(data, &e); err != nil {
		return zero, false
	}

	if e.Checksum != checksum(e.Data) {
		return zero, false
	}
	return e.Data, true
}

func (fc *FileCache[T]) Set(key string, data T) error {
	if err := os.MkdirAll(fc.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %v", err)
	}

	e := entry[T]{
		Data:      data,
		CreatedAt: time.Now(),
		Checksum:  checksum(data),
	}

	jsonData, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %v", err)
	}

	cacheFile := filepath.Join(fc.cacheDir, key+".json")
	tmpFile := cacheFile + ".tmp"

	if err := os.WriteFile(tmpFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %v", err)
	}
	if err := os.Rename(tmpFile, cacheFile); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp cache file: %v", err)
	}
	return nil
}

func checksum[T any](data T) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return hex.EncodeToString(hash[:])
}

// Memory is an in-process Store for tests and short-lived callers.
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{entries: make(map[string]T)}
}

func (m *Memory[T]) Get(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[key]
	return data, ok
}

func (m *Memory[T]) Set(key string, data T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

// Memoizer wraps a Store with get-or-compute semantics and single-flight
// dedup, so concurrent requests for the same key trigger one computation
// instead of redundant fetches.
type Memoizer[T any] struct {
	store  Store[T]
	flight singleflight.Group
}

func NewMemoizer[T any](store Store[T]) *Memoizer[T] {
	return &Memoizer[T]{store: store}
}

func (m *Memoizer[T]) GetOrCompute(key string, compute func() (T, error)) (T, error) {
	if data, ok := m.store.Get(key); ok {
		return data, nil
	}

	result, err, _ := m.flight.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have stored the
		// result between the miss and the Do.
		if data, ok := m.store.Get(key); ok {
			return data, nil
		}
		data, err := compute()
		if err != nil {
			return data, err
		}
		if err := m.store.Set(key, data); err != nil {
			return data, fmt.Errorf("failed to store cache entry: %v", err)
		}
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
