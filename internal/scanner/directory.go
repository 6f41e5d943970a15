package scanner

import (
	"fmt"
	"os"
	"sort"
	"time"
)

// FileInfo is the subset of file metadata the scanner needs.
type FileInfo struct {
	IsFile     bool
	IsReadable bool
	ModTime    time.Time
	Size       int64
}

// Directory abstracts the filesystem so scans can be observed and faked.
type Directory interface {
	// ListEntries returns the names of the entries in path.
	ListEntries(path string) ([]string, error)
	// Stat describes one path.
	Stat(path string) (FileInfo, error)
	// Read returns the full contents of path.
	Read(path string) ([]byte, error)
}

// OSDirectory implements Directory on the local filesystem.
type OSDirectory struct{}

// ListEntries returns sorted entry names.
func (OSDirectory) ListEntries(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Stat reports metadata for path. Symlinks are followed; readability is
// checked by opening the file.
func (OSDirectory) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("getting file info for %s: %w", path, err)
	}

	fi := FileInfo{
		IsFile:  info.Mode().IsRegular(),
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
	if fi.IsFile {
		if f, err := os.Open(path); err == nil {
			fi.IsReadable = true
			_ = f.Close()
		}
	}
	return fi, nil
}

// Read returns the contents of path.
func (OSDirectory) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

var _ Directory = OSDirectory{}
