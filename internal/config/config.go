package config

import (
	"fmt"

	"recode/internal/registry"
)

// Default constants
const (
	// MinQuality is the lowest accepted quality value (best fidelity).
	MinQuality = 1

	// MaxQuality is the highest accepted quality value (smallest output).
	MaxQuality = 51

	// DefaultOutputContainer is the container extension for converted files.
	DefaultOutputContainer = ".mkv"
)

// Config holds all configuration for video conversion.
type Config struct {
	// Input/output paths
	InputPath string
	OutputDir string
	LogDir    string

	// Target codec for conversion.
	TargetCodec registry.Codec

	// Quality overrides the encoder's default quality when non-nil.
	// Lower values mean better quality and larger files.
	Quality *int

	// PreserveHDR carries HDR color metadata through the conversion
	// when the target codec supports it.
	PreserveHDR bool

	// PreferHardware enables hardware encoder selection when a GPU
	// backend is confirmed available.
	PreferHardware bool

	// Overwrite replaces existing output files instead of skipping.
	Overwrite bool

	// DryRun builds and reports the conversion plan without running
	// the encoding engine.
	DryRun bool
}

// NewConfig creates a new Config with default values.
func NewConfig(inputPath, outputDir string) *Config {
	return &Config{
		InputPath:      inputPath,
		OutputDir:      outputDir,
		TargetCodec:    registry.CodecHEVC,
		PreserveHDR:    true,
		PreferHardware: true,
	}
}

// Validate checks the conversion settings for errors. The input path
// is checked separately with RequireInput since library callers supply
// it per call.
func (c *Config) Validate() error {
	if _, err := registry.ParseCodec(string(c.TargetCodec)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCodec, c.TargetCodec)
	}

	if c.Quality != nil {
		if *c.Quality < MinQuality || *c.Quality > MaxQuality {
			return fmt.Errorf("%w: must be %d-%d, got %d", ErrInvalidQuality, MinQuality, MaxQuality, *c.Quality)
		}
	}

	return nil
}

// RequireInput checks that an input path was provided.
func (c *Config) RequireInput() error {
	if c.InputPath == "" {
		return ErrMissingInput
	}
	return nil
}

// EffectiveQuality returns the configured quality or the registry default.
func (c *Config) EffectiveQuality() int {
	if c.Quality != nil {
		return *c.Quality
	}
	return registry.DefaultQuality
}
