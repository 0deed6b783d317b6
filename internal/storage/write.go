package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempPrefix marks in-progress writes inside an output directory.
const TempPrefix = ".tmp-"

// EnsureDir creates directory structure with proper permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// AtomicWrite streams the output of write into a temp file next to path and
// renames it into place once write and the flush succeed. On any failure
// the temp file is removed and path is left untouched.
func AtomicWrite(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	// ensure cleanup of tmp on error; after the rename Remove is a no-op
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp to final: %w", err)
	}

	return nil
}
