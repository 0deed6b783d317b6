package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ImageExtensions are the source extensions picked up by ListImages,
// compared case-insensitively.
var ImageExtensions = []string{"jpg", "jpeg", "png"}

// IsImageName reports whether name carries one of ImageExtensions.
func IsImageName(name string) bool {
	ext := strings.ToLower(Extension(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListImages returns the image files directly inside dir (no recursion),
// ordered by file name. Symlinks are followed; ones that do not resolve to
// a regular file are skipped.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}

	var images []string
	for _, e := range entries {
		if !IsImageName(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		images = append(images, path)
	}
	return images, nil
}
