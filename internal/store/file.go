package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps every key in a single JSON object on disk. Writes go
// through a temp file and a rename so a crash never leaves a half file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, domainErrors.ErrStorage.WithError(err).WithContext("path", path)
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return domainErrors.ErrStorage.WithContext("detail", "value is not valid JSON").WithContext("key", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(append([]byte(nil), value...))
	return f.write(doc)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.write(doc)
}

func (f *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, domainErrors.ErrStorage.WithError(err).WithContext("path", f.path)
	}
	if len(data) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domainErrors.ErrStorage.WithError(err).WithContext("path", f.path)
	}
	return doc, nil
}

func (f *FileStore) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domainErrors.ErrStorage.WithError(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*.json")
	if err != nil {
		return domainErrors.ErrStorage.WithError(err).WithContext("path", f.path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return domainErrors.ErrStorage.WithError(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domainErrors.ErrStorage.WithError(err)
	}
	if err := tmp.Close(); err != nil {
		return domainErrors.ErrStorage.WithError(err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return domainErrors.ErrStorage.WithError(err).WithContext("path", f.path)
	}
	return nil
}
