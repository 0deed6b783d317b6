package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestStorage creates a temporary root holding an "in" folder for
// fixtures and an "out" folder for results. The cleanup function removes
// the root and should be deferred.
func SetupTestStorage(t *testing.T) (inDir, outDir string, cleanup func()) {
	t.Helper()

	root, err := os.MkdirTemp("", "squarefit-test-*")
	if err != nil {
		t.Fatalf("failed to create test storage directory: %v", err)
	}
	cleanup = func() {
		os.RemoveAll(root)
	}

	inDir = filepath.Join(root, "in")
	outDir = filepath.Join(root, "out")
	for _, d := range []string{inDir, outDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			cleanup()
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}

	return inDir, outDir, cleanup
}
