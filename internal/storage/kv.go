package storage

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
)

// KV is the keyed storage primitive the tracker persists through.
// Implemented by *Store and *Memory.
type KV interface {
	Get(key string) (string, error)
	Put(key, value string) error
}

// Read decodes the JSON value under key into a T. It never fails: when kv is
// nil, the key is missing or empty, the backend errors, or the stored JSON is
// malformed, def is returned and a warning is logged.
func Read[T any](kv KV, key string, def T) T {
	if kv == nil {
		slog.Warn("storage unavailable, using default", "key", key)
		return def
	}

	raw, err := kv.Get(key)
	if errors.Is(err, ErrNotFound) || (err == nil && raw == "") {
		slog.Debug("no stored value, using default", "key", key)
		return def
	}
	if err != nil {
		slog.Warn("reading stored value failed, using default", "error", &StorageError{Op: "read", Key: key, Err: err})
		return def
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.Warn("stored value is malformed, using default", "error", &StorageError{Op: "read", Key: key, Err: err})
		return def
	}
	return v
}

// Write replaces the value under key with the JSON encoding of v.
// Failures are logged and swallowed; it reports whether the write landed.
func Write(kv KV, key string, v any) bool {
	if kv == nil {
		slog.Warn("storage unavailable, value not persisted", "key", key)
		return false
	}

	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("encoding value failed", "error", &StorageError{Op: "write", Key: key, Err: err})
		return false
	}
	if err := kv.Put(key, string(data)); err != nil {
		slog.Warn("persisting value failed", "error", &StorageError{Op: "write", Key: key, Err: err})
		return false
	}
	return true
}

// Memory is an in-process KV. The zero value is ready to use.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}
