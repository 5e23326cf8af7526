// Package config provides configuration types and defaults for recode.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidQuality indicates a quality value outside the valid 1-51 range.
	ErrInvalidQuality = errors.New("quality value out of range")

	// ErrInvalidCodec indicates an unknown target codec name was provided.
	ErrInvalidCodec = errors.New("invalid target codec")

	// ErrMissingInput indicates no input path was provided.
	ErrMissingInput = errors.New("input path required")
)
