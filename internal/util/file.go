package util

import (
	"os"
	"path/filepath"
	"strings"

	"recode/internal/registry"
)

// VideoExtensions is the list of supported video file extensions.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// HasVideoExtension checks the extension alone, without touching the
// filesystem.
func HasVideoExtension(path string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(path))]
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateOutputPath determines the output path for a converted file.
// The filename is the input stem suffixed with the target codec, always
// in a Matroska container. When outputDir is empty the output lands
// next to the input.
func GenerateOutputPath(inputPath, outputDir string, codec registry.Codec) string {
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	stem := GetFileStem(inputPath)
	return filepath.Join(outputDir, stem+"_"+string(codec)+".mkv")
}

// RemovePartialOutput deletes a partially written output file, ignoring
// the case where it was never created.
func RemovePartialOutput(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
