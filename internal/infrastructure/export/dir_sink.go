// Package export provides ports.ExportSink implementations.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// DirSink writes artifacts into a directory and keeps at most maxArtifacts
// of them, removing the oldest by modification time.
type DirSink struct {
	dir          string
	maxArtifacts int
	mu           sync.Mutex
}

// NewDirSink returns a sink rooted at dir. maxArtifacts <= 0 disables eviction.
func NewDirSink(dir string, maxArtifacts int) *DirSink {
	return &DirSink{dir: dir, maxArtifacts: maxArtifacts}
}

// Save implements ports.ExportSink and returns the written path.
func (s *DirSink) Save(filename, _ string, content []byte) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid artifact name %q", filename)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, domain.DirectoryPermissions); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, domain.ArtifactFilePermissions); err != nil {
		return "", err
	}
	return path, s.evictIfNeeded()
}

// Dir exposes the export directory path.
func (s *DirSink) Dir() string {
	return s.dir
}

// Artifacts lists exported files, newest first.
func (s *DirSink) Artifacts() ([]string, error) {
	infos, err := s.artifacts()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for i := len(infos) - 1; i >= 0; i-- {
		names = append(names, infos[i].name)
	}
	return names, nil
}

type artifactInfo struct {
	name string
	mod  time.Time
}

// artifacts returns export files sorted oldest first.
func (s *DirSink) artifacts() ([]artifactInfo, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var infos []artifactInfo
	for _, f := range files {
		if f.IsDir() || !isArtifact(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		infos = append(infos, artifactInfo{name: f.Name(), mod: info.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].mod.Equal(infos[j].mod) {
			return infos[i].name < infos[j].name
		}
		return infos[i].mod.Before(infos[j].mod)
	})
	return infos, nil
}

func isArtifact(name string) bool {
	if !strings.Contains(name, "-results-") {
		return false
	}
	ext := filepath.Ext(name)
	return ext == ".csv" || ext == ".json"
}

func (s *DirSink) evictIfNeeded() error {
	if s.maxArtifacts <= 0 {
		return nil
	}
	infos, err := s.artifacts()
	if err != nil {
		return err
	}
	for len(infos) > s.maxArtifacts {
		_ = os.Remove(filepath.Join(s.dir, infos[0].name))
		infos = infos[1:]
	}
	return nil
}

// WriterSink copies artifacts to a writer, e.g. stdout.
type WriterSink struct {
	W    io.Writer
	Name string
}

// Save implements ports.ExportSink.
func (s WriterSink) Save(_, _ string, content []byte) (string, error) {
	if _, err := s.W.Write(content); err != nil {
		return "", err
	}
	if s.Name == "" {
		return "stdout", nil
	}
	return s.Name, nil
}

var (
	_ ports.ExportSink = (*DirSink)(nil)
	_ ports.ExportSink = WriterSink{}
)
