package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

type fileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore returns a Store keeping each document as <name>.json in dir.
// The directory is created on first use.
func NewFileStore(dir string) Store {
	return &fileStore{dir: dir}
}

func (f *fileStore) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *fileStore) Load(ctx context.Context, name string, v any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bs, err := os.ReadFile(f.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to read document: %s", name)
	}
	if err := json.Unmarshal(bs, v); err != nil {
		// A corrupted file is treated as absent, the next Save replaces it.
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "corrupted_document",
			"name", name,
			"err", err.Error(),
		)
		return false, nil
	}
	return true, nil
}

func (f *fileStore) Save(ctx context.Context, name string, v any) error {
	bs, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal document: %s", name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}
	if err := os.WriteFile(f.path(name), bs, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write document: %s", name)
	}
	return nil
}

func (f *fileStore) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete document: %s", name)
	}
	return nil
}

func (f *fileStore) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list documents")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
