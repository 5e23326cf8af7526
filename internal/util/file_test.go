package util

import (
	"os"
	"path/filepath"
	"testing"

	"recode/internal/registry"
)

func TestHasVideoExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"movie.mkv", true},
		{"movie.MP4", true},
		{"clip.webm", true},
		{"notes.txt", false},
		{"archive.mkv.bak", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := HasVideoExtension(tt.path); got != tt.want {
			t.Errorf("HasVideoExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFileExistsRequiresRegularFile(t *testing.T) {
	dir := t.TempDir()

	video := filepath.Join(dir, "clip.mkv")
	if err := os.WriteFile(video, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(video) {
		t.Errorf("FileExists(%q) = false, want true", video)
	}

	// A directory is not a file.
	namedDir := filepath.Join(dir, "season.mkv")
	if err := os.Mkdir(namedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if FileExists(namedDir) {
		t.Errorf("FileExists(%q) = true for directory", namedDir)
	}

	if FileExists(filepath.Join(dir, "missing.mkv")) {
		t.Error("FileExists returned true for missing file")
	}
}

func TestGenerateOutputPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		outputDir string
		codec     registry.Codec
		want      string
	}{
		{
			name:      "explicit output dir",
			input:     "/media/in/movie.mp4",
			outputDir: "/media/out",
			codec:     registry.CodecHEVC,
			want:      filepath.Join("/media/out", "movie_hevc.mkv"),
		},
		{
			name:  "defaults next to input",
			input: "/media/in/movie.webm",
			codec: registry.CodecAV1,
			want:  filepath.Join("/media/in", "movie_av1.mkv"),
		},
		{
			name:      "stem with dots",
			input:     "/media/show.s01e02.mkv",
			outputDir: "/out",
			codec:     registry.CodecH264,
			want:      filepath.Join("/out", "show.s01e02_h264.mkv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateOutputPath(tt.input, tt.outputDir, tt.codec)
			if got != tt.want {
				t.Errorf("GenerateOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemovePartialOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.mkv")
	if err := os.WriteFile(path, []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := RemovePartialOutput(path); err != nil {
		t.Fatalf("RemovePartialOutput failed: %v", err)
	}
	if FileExists(path) {
		t.Error("file should be removed")
	}

	// Removing a file that never existed is not an error.
	if err := RemovePartialOutput(path); err != nil {
		t.Errorf("RemovePartialOutput on missing file: %v", err)
	}
}
