// =============================================================================
// RSP Dashboard - File Manager Utility
// =============================================================================
//
// This module provides the file handling shared by the CLI and the server:
//   - Reading dataset sources
//   - Output directory management
//   - Output file naming
//   - Atomic output writes
//
// Nothing in here knows about records or charts; callers pass bytes and
// writer callbacks.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrSourceUnavailable wraps every failure to read a dataset source.
var ErrSourceUnavailable = errors.New("dataset source unavailable")

// =============================================================================
// SOURCES
// =============================================================================

// ReadSource reads the whole dataset file at path.
//
// RETURNS:
//   - The raw bytes.
//   - An error wrapping both ErrSourceUnavailable and the os error.
func ReadSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	return data, nil
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name from a format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {product}, {city}, {year}, {mode} - from params
//   - params: A map of placeholder values. Values are made file-name safe.
//   - ext: The required extension, e.g. ".xlsx". It is appended when the
//          result does not already end with it.
//
// EXAMPLE:
//   format: "{product}_{city}_{year}_{uuid}.xlsx"
//   params: {"product": "Petrol", "city": "New Delhi", "year": "2024-2025"}
//   output: "Petrol_New-Delhi_2024-2025_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xlsx"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = SanitizeFileComponent(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// SanitizeFileComponent replaces characters that are unsafe in file names.
// An empty value becomes "all".
func SanitizeFileComponent(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "all"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '-'
		}
		return r
	}, value)
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteOutputFile writes a file in dir through write. The content goes to a
// temporary file that is renamed into place only after write succeeds, so a
// failed write never leaves a partial file behind.
//
// RETURNS:
//   - The final path.
//   - An error if the directory, the write or the rename fails.
func WriteOutputFile(dir, name string, write func(io.Writer) error) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".rspdash-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("failed to move output into place: %w", err)
	}
	return path, nil
}

