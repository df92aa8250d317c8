// Package monitor watches a log directory by polling modification times and
// reports files that become active.
package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Monitor remembers the last seen mtime of every matching file. It is not
// safe for concurrent use.
type Monitor struct {
	dir     string
	pattern string
	known   map[string]time.Time
}

// File is a matching directory entry.
type File struct {
	Path    string
	ModTime time.Time
}

// New builds a Monitor for regular files in dir whose name contains pattern.
func New(dir, pattern string) *Monitor {
	return &Monitor{dir: dir, pattern: pattern, known: make(map[string]time.Time)}
}

// Dir returns the watched directory.
func (m *Monitor) Dir() string { return m.dir }

// List returns matching files sorted newest first.
func (m *Monitor) List() ([]File, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("read log dir: %w", err)
	}
	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.Contains(entry.Name(), m.pattern) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, File{Path: filepath.Join(m.dir, entry.Name()), ModTime: info.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Newest returns the most recently modified matching file.
func (m *Monitor) Newest() (string, bool, error) {
	files, err := m.List()
	if err != nil {
		return "", false, err
	}
	if len(files) == 0 {
		return "", false, nil
	}
	return files[0].Path, true, nil
}

// Remember records the current mtime of every matching file without
// reporting anything, so only later activity counts.
func (m *Monitor) Remember() error {
	files, err := m.List()
	if err != nil {
		return err
	}
	for _, f := range files {
		m.known[f.Path] = f.ModTime
	}
	return nil
}

// Scan returns files whose mtime increased since they were last seen and for
// which isOpen reports false. Files seen for the first time are recorded but
// not reported. Every file's mtime is refreshed.
func (m *Monitor) Scan(isOpen func(path string) bool) ([]string, error) {
	files, err := m.List()
	if err != nil {
		return nil, err
	}
	var active []string
	for _, f := range files {
		prev, seen := m.known[f.Path]
		if seen && f.ModTime.After(prev) && (isOpen == nil || !isOpen(f.Path)) {
			active = append(active, f.Path)
		}
		m.known[f.Path] = f.ModTime
	}
	return active, nil
}
