package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive keeps timestamped copies of generated export downloads on disk so
// administrators can retrieve past reports without regenerating them. Copies
// older than the configured TTL are pruned on the next Cleanup call.
type Archive struct {
	baseDir string
	ttl     time.Duration
}

// NewArchive ensures the base directory exists and returns a handle. A zero
// ttl disables pruning.
func NewArchive(baseDir string, ttl time.Duration) (*Archive, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{baseDir: baseDir, ttl: ttl}, nil
}

// Save writes export bytes under a timestamped name derived from the original
// filename and returns the stored name.
func (a *Archive) Save(filename string, data []byte) (string, error) {
	stamped := time.Now().UTC().Format("20060102T150405Z") + "_" + filepath.Base(filename)
	path := filepath.Join(a.baseDir, stamped)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archived export: %w", err)
	}
	return stamped, nil
}

// Cleanup prunes archived exports older than the configured TTL. It is a
// no-op when the TTL is zero.
func (a *Archive) Cleanup() ([]string, error) {
	if a.ttl <= 0 {
		return nil, nil
	}
	return a.CleanupOlderThan(a.ttl)
}

// CleanupOlderThan removes archived exports older than the TTL and returns the
// deleted names.
func (a *Archive) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	var deleted []string
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("scan archive: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat archived export: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(a.baseDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("delete archived export: %w", err)
		}
		deleted = append(deleted, entry.Name())
	}
	return deleted, nil
}

// Path returns the absolute location of a stored name.
func (a *Archive) Path(name string) string {
	return filepath.Join(a.baseDir, name)
}
