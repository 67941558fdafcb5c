// Package snapshot implements the source snapshot cache.
//
// After a successful run the flattened source catalog of every file is
// stored in the cache directory. The next run diffs the current source
// against that snapshot: only new or changed keys are re-translated.
//
// Layout inside the cache directory:
//
//	snapshots/<sourceLang>/<file>.yaml
//
// Each snapshot is replaced as a whole (temp file + rename); it is never
// partially updated. A single process is assumed to own the cache
// directory for the duration of a run.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/locsync/catalog"
)

// Version is the snapshot file format version.
const Version = 1

// DirName is the snapshot subdirectory of the cache directory.
const DirName = "snapshots"

// ErrCorrupt is returned (wrapped) by Load when a snapshot exists but
// cannot be used. Callers treat it as a cache miss.
var ErrCorrupt = errors.New("snapshot: corrupt")

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// document is the on-disk structure.
type document struct {
	Version  int               `yaml:"version"`
	File     string            `yaml:"file"`
	Language string            `yaml:"language"`
	Entries  map[string]string `yaml:"entries"`
}

// Store is a handle on the snapshot area of one cache directory. It is
// opened once per run and passed to whoever needs it.
type Store struct {
	dir string
	mu  sync.Mutex
}

// ---------------------------------------------------------------------------
// Opening
// ---------------------------------------------------------------------------

// Open returns a store rooted at cacheDir, creating the snapshot
// directory if needed.
func Open(cacheDir string) (*Store, error) {
	dir := filepath.Join(cacheDir, DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(lang, file string) string {
	return filepath.Join(s.dir, lang, file+".yaml")
}

// ---------------------------------------------------------------------------
// Load / Write
// ---------------------------------------------------------------------------

// Load returns the snapshot of file for the source language lang.
// It returns (nil, nil) when no snapshot exists, and an error wrapping
// ErrCorrupt when the snapshot is unreadable or of an unknown version.
func (s *Store) Load(lang, file string) (catalog.Catalog, error) {
	path := s.path(lang, file)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorrupt, path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrCorrupt, path, err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %s has version %d, want %d", ErrCorrupt, path, doc.Version, Version)
	}

	content := make(catalog.Catalog, len(doc.Entries))
	for k, v := range doc.Entries {
		content[k] = v
	}
	return content, nil
}

// Write atomically replaces the snapshot of file with content.
func (s *Store) Write(lang, file string, content catalog.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(lang, file)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := yaml.Marshal(&document{
		Version:  Version,
		File:     file,
		Language: lang,
		Entries:  content,
	})
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Remove deletes the snapshot of file. A missing snapshot is not an error.
func (s *Store) Remove(lang, file string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(lang, file)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot %s: %w", file, err)
	}
	return nil
}

// Files returns the file identities with a snapshot for lang, sorted.
func (s *Store) Files(lang string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, lang))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		files = append(files, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(files)
	return files, nil
}

// ---------------------------------------------------------------------------
// Diff
// ---------------------------------------------------------------------------

// Diff returns the keys of current that are absent from prev or carry a
// different value, sorted. Keys deleted since prev are not reported.
// Without a previous snapshot (prev == nil) nothing is reported.
func Diff(prev, current catalog.Catalog) []string {
	if prev == nil {
		return nil
	}
	var changed []string
	for k, v := range current {
		if old, ok := prev[k]; !ok || old != v {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
