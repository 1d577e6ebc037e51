// Package validation checks user supplied paths before the weathermap reads
// configs and icons or writes images.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigExtensions are the map config formats the loader understands.
var ConfigExtensions = []string{".yaml", ".yml", ".hcl", ".ini"}

// ValidateOutputPath rejects empty paths, relative traversal and parent
// directories that are missing or not writable.
func ValidateOutputPath(outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	cleanPath := filepath.Clean(outputPath)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal detected in output path: %s", outputPath)
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	dir := filepath.Dir(absPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}
	if !dirInfo.IsDir() {
		return fmt.Errorf("output path parent is not a directory: %s", dir)
	}

	// write a throwaway file; permission bits alone lie for root
	scratch, err := os.CreateTemp(dir, ".weathermap_write_test")
	if err != nil {
		return fmt.Errorf("output directory is not writable: %s: %w", dir, err)
	}
	scratch.Close()
	os.Remove(scratch.Name())

	return nil
}

// ValidateImagePath validates a PNG output path.
func ValidateImagePath(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); path != "" && ext != ".png" {
		return fmt.Errorf("image path must end in .png: %s", path)
	}
	return ValidateOutputPath(path)
}

// ValidateInputPath checks that inputPath exists and is a directory when
// mustBeDir is set, or a regular file otherwise.
func ValidateInputPath(inputPath string, mustBeDir bool) error {
	if inputPath == "" {
		return fmt.Errorf("input path cannot be empty")
	}

	cleanPath := filepath.Clean(inputPath)
	if strings.Contains(cleanPath, "..") && !filepath.IsAbs(inputPath) {
		return fmt.Errorf("potentially unsafe path detected: %s", inputPath)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input path does not exist: %s", cleanPath)
		}
		return fmt.Errorf("failed to access input path: %w", err)
	}

	if mustBeDir && !info.IsDir() {
		return fmt.Errorf("input path must be a directory: %s", cleanPath)
	}
	if !mustBeDir && info.IsDir() {
		return fmt.Errorf("input path must be a file: %s", cleanPath)
	}
	return nil
}

// ValidateConfigPath checks that path is an existing YAML, HCL or INI file.
func ValidateConfigPath(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	known := false
	for _, e := range ConfigExtensions {
		if ext == e {
			known = true
			break
		}
	}
	if path != "" && !known {
		return fmt.Errorf("unsupported config format %q: want one of %s", ext, strings.Join(ConfigExtensions, ", "))
	}
	return ValidateInputPath(path, false)
}

// Paths exposes the package checks as methods.
type Paths struct{}

func (Paths) ValidateConfigPath(path string) error { return ValidateConfigPath(path) }

func (Paths) ValidateImagePath(path string) error { return ValidateImagePath(path) }

func (Paths) ValidateInputPath(path string, mustBeDir bool) error {
	return ValidateInputPath(path, mustBeDir)
}
