// Package discovery provides video file discovery for batch conversion.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"recode/internal/errors"
	"recode/internal/util"
)

// Logger defines the interface for discovery logging.
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// Result contains the results of file discovery with metadata.
type Result struct {
	Files        []string
	SkippedCount int
}

// FindVideoFiles finds video files under the given directory,
// descending into subdirectories. Hidden files and directories are
// skipped. Returns paths sorted alphabetically, case-insensitively.
func FindVideoFiles(inputDir string) ([]string, error) {
	result, err := Discover(inputDir, nil)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// Discover walks the directory tree, collecting video files and
// logging progress when a logger is provided.
func Discover(inputDir string, logger Logger) (*Result, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", inputDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", inputDir)
	}

	result := &Result{}
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") && path != inputDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if util.HasVideoExtension(path) {
			result.Files = append(result.Files, path)
		} else {
			result.SkippedCount++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", inputDir, err)
	}

	if len(result.Files) == 0 {
		return nil, errors.NewNoFilesFoundError(inputDir)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return strings.ToLower(result.Files[i]) < strings.ToLower(result.Files[j])
	})

	if logger != nil {
		logDiscoveredFiles(result, logger)
	}

	return result, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(result *Result, logger Logger) {
	logger.Info("Found %d video file(s), skipped %d other file(s)", len(result.Files), result.SkippedCount)

	maxToLog := min(5, len(result.Files))
	for i := 0; i < maxToLog; i++ {
		logger.Debug("  %s", filepath.Base(result.Files[i]))
	}
	if len(result.Files) > 5 {
		logger.Debug("  ... and %d more", len(result.Files)-5)
	}
}
