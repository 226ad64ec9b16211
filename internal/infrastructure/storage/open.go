package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/pkg/filesystem"
	"github.com/doeshing/kgq/internal/ports"
)

// Backend names accepted in history.backend.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Store is a KeyValueStore that can list keys and report where it lives.
type Store interface {
	ports.KeyValueStore
	Keys() ([]string, error)
}

// DefaultPath returns the default location for a backend.
func DefaultPath(backend string) string {
	switch backend {
	case BackendFile:
		return filesystem.AppDir("history", "store.json")
	default:
		return filesystem.AppDir("history", "history.db")
	}
}

// Open builds the configured backend. A SQLite database that cannot be
// opened falls back to the JSON file store next to it.
func Open(cfg domain.HistorySettings, logger ports.Logger) (Store, string, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendSQLite
	}
	path := filesystem.ExpandPath(cfg.Path)
	if path == "" {
		path = DefaultPath(backend)
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), "memory", nil
	case BackendFile:
		return NewFileStore(path), path, nil
	case BackendSQLite:
		store, err := OpenSQLite(path)
		if err == nil {
			return store, path, nil
		}
		fallback := filepath.Join(filepath.Dir(path), "store.json")
		if logger != nil {
			logger.Warn("sqlite unavailable, using file store", map[string]interface{}{
				"path":     path,
				"fallback": fallback,
				"error":    err.Error(),
			})
		}
		return NewFileStore(fallback), fallback, nil
	}
	return nil, "", fmt.Errorf("unknown history backend %q (want sqlite, file or memory)", cfg.Backend)
}
