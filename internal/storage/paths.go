package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputDirPrefix names the per-target output subfolder.
const OutputDirPrefix = "processedImages"

// Output describes where a processed source is written.
type Output struct {
	Dir  string
	Stem string
	Ext  string
	Path string
}

// OutputDir returns {outputFolder}/processedImages_{T}X{T}.
func OutputDir(outputFolder string, target int) string {
	return filepath.Join(outputFolder, fmt.Sprintf("%s_%dX%d", OutputDirPrefix, target, target))
}

// Extension returns the part of the file name after the last dot, case
// preserved, or "" when the name has no dot.
func Extension(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return ""
	}
	return base[i+1:]
}

// Stem returns the file name without its last extension.
func Stem(name string) string {
	base := filepath.Base(name)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// OutputName returns {stem}_{T}x{T}.{ext}. A source without extension gets
// no trailing dot.
func OutputName(source string, target int) string {
	name := fmt.Sprintf("%s_%dx%d", Stem(source), target, target)
	if ext := Extension(source); ext != "" {
		name += "." + ext
	}
	return name
}

// NewOutput builds the output descriptor for source:
// {outputFolder}/processedImages_{T}X{T}/{stem}_{T}x{T}.{ext}
func NewOutput(outputFolder, source string, target int) Output {
	dir := OutputDir(outputFolder, target)
	return Output{
		Dir:  dir,
		Stem: Stem(source),
		Ext:  Extension(source),
		Path: filepath.Join(dir, OutputName(source, target)),
	}
}
