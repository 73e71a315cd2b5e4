package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by a Storage when the key holds no record
var ErrNotFound = errors.New("record not found")

// Storage is a string key/value store for persisted auth records.
// It plays the role browser local storage plays for a web client.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps records in process memory
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

// FileStorage keeps all records in a single JSON document on disk.
// The file is re-read on every operation so that other processes sharing it
// are observed; there is no cross-process locking and the last writer wins.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a FileStorage backed by the file at path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file location
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := records[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStorage) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return err
	}
	records[key] = value
	return f.write(records)
}

func (f *FileStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := records[key]; !ok {
		return nil
	}
	delete(records, key)
	return f.write(records)
}

func (f *FileStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	records := make(map[string]string)
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode storage file %s: %w", f.path, err)
	}
	return records, nil
}

func (f *FileStorage) write(records map[string]string) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close storage file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to chmod storage file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
