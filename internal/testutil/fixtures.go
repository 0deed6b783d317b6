package testutil

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// EncodeJPEG encodes img as a JPEG at quality 90.
func EncodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// EncodePNG encodes img as a PNG.
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// WriteJPEG writes img as a JPEG fixture named name into dir.
func WriteJPEG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	return WriteFile(t, dir, name, EncodeJPEG(t, img))
}

// WritePNG writes img as a PNG fixture named name into dir.
func WritePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	return WriteFile(t, dir, name, EncodePNG(t, img))
}
