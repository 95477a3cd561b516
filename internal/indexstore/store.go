// Package indexstore persists one flat index plus its chunk metadata per volume.
package indexstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bookrag/internal/domain"
	"bookrag/internal/vectorindex"
)

const (
	IndexFile = "index.flat"
	MetaFile  = "meta.json"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeName turns a volume name into a directory name: lowercase, smart
// apostrophes removed, non-alphanumeric runs collapsed to "_", trimmed.
func SanitizeName(volume string) string {
	s := strings.ToLower(volume)
	s = strings.ReplaceAll(s, "’", "")
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Volume is a loaded per-volume index. Index position i belongs to Chunks[i].
type Volume struct {
	Dir    string
	Index  *vectorindex.FlatL2
	Chunks []domain.Chunk
}

// Store reads and writes volume directories under a base directory.
type Store struct {
	dir string
}

func New(dir string) *Store { return &Store{dir: dir} }

func (s *Store) Dir() string { return s.dir }

// Save writes the index and metadata for volume, replacing any previous
// contents of its directory.
func (s *Store) Save(volume string, index *vectorindex.FlatL2, chunks []domain.Chunk) error {
	if index.Len() != len(chunks) {
		return fmt.Errorf("volume %q: %d vectors but %d chunks", volume, index.Len(), len(chunks))
	}
	name := SanitizeName(volume)
	if name == "" {
		return fmt.Errorf("volume %q has no usable directory name", volume)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.MkdirTemp(s.dir, ".tmp-"+name+"-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	if err := index.WriteFile(filepath.Join(tmp, IndexFile)); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	meta, err := json.Marshal(chunks)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(tmp, MetaFile), meta, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	target := filepath.Join(s.dir, name)
	if err := os.RemoveAll(target); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// Volumes lists volume directory names in directory-listing order.
func (s *Store) Volumes() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Load reads one volume directory. A directory without an index file, with an
// unreadable file, or whose index and metadata lengths differ is an error.
func (s *Store) Load(dir string) (*Volume, error) {
	path := filepath.Join(s.dir, dir)
	index, err := vectorindex.ReadFile(filepath.Join(path, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", dir, err)
	}
	data, err := os.ReadFile(filepath.Join(path, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", dir, err)
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", dir, err)
	}
	if index.Len() != len(chunks) {
		return nil, fmt.Errorf("%w: %s has %d vectors but %d chunks", vectorindex.ErrCorrupt, dir, index.Len(), len(chunks))
	}
	return &Volume{Dir: dir, Index: index, Chunks: chunks}, nil
}
