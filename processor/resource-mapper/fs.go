package resourcemapper

import (
	"errors"
	"os"
	"path/filepath"
)

// Entry is one directory entry as seen by the mapper.
type Entry struct {
	Name   string
	IsFile bool
	IsDir  bool
}

// FS is the filesystem view the mapper needs. Paths are slash-separated.
type FS interface {
	ListDirectory(path string) ([]Entry, error)
	Exists(path string) bool
}

// OSFS reads the real filesystem below Root.
type OSFS struct {
	Root string
}

// ListDirectory returns the entries of path in name order.
func (f OSFS) ListDirectory(path string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(f.abs(path))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, Entry{
			Name:   de.Name(),
			IsFile: de.Type().IsRegular(),
			IsDir:  de.IsDir(),
		})
	}
	return entries, nil
}

// Exists reports whether path exists.
func (f OSFS) Exists(path string) bool {
	_, err := os.Stat(f.abs(path))
	return !errors.Is(err, os.ErrNotExist)
}

func (f OSFS) abs(path string) string {
	return filepath.Join(f.Root, filepath.FromSlash(path))
}
