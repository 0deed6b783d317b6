package storage

import (
	"fmt"
	"os"
)

// Storage is rooted at the folder the processed images are written under.
type Storage struct {
	BaseDir string
}

// New creates a new Storage instance with the provided base directory.
func New(baseDir string) *Storage {
	return &Storage{BaseDir: baseDir}
}

// EnsureOutputDir creates the per-target output directory if it does not
// exist yet and returns its path. Calling it again is a no-op.
func (s *Storage) EnsureOutputDir(target int) (string, error) {
	dir := OutputDir(s.BaseDir, target)
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("output path %s exists and is not a directory", dir)
		}
		return dir, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat output dir: %w", err)
	}
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// Output returns the output descriptor for source under this storage.
func (s *Storage) Output(source string, target int) Output {
	return NewOutput(s.BaseDir, source, target)
}
