// Package validation provides post-conversion output checks.
package validation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"recode/internal/ffprobe"
	"recode/internal/registry"
)

// durationToleranceSecs is the maximum allowed difference in duration
// between input and output.
const durationToleranceSecs = 1.0

// Analyzer abstracts media inspection so tests run without the
// external probing tool.
type Analyzer interface {
	Inspect(ctx context.Context, path string) (*ffprobe.MediaInfo, error)
}

// Step represents a single validation check.
type Step struct {
	Name    string
	Passed  bool
	Details string
}

// Result contains the overall validation result for one output file.
type Result struct {
	CodecCorrect    bool
	DurationCorrect bool
	HDRCorrect      bool

	CodecName       string
	CodecMessage    string
	DurationMessage string
	HDRMessage      string
}

// IsValid returns true if all validation checks passed.
func (r *Result) IsValid() bool {
	return r.CodecCorrect && r.DurationCorrect && r.HDRCorrect
}

// Steps returns all validation steps with results.
func (r *Result) Steps() []Step {
	return []Step{
		{Name: "Video codec", Passed: r.CodecCorrect, Details: r.CodecMessage},
		{Name: "Duration", Passed: r.DurationCorrect, Details: r.DurationMessage},
		{Name: "HDR status", Passed: r.HDRCorrect, Details: r.HDRMessage},
	}
}

// Failures returns descriptions of failed validation checks.
func (r *Result) Failures() []string {
	var failures []string
	for _, step := range r.Steps() {
		if !step.Passed {
			failures = append(failures, step.Name+": "+step.Details)
		}
	}
	return failures
}

// VerifyOutput inspects the converted file and checks it against the
// source. expectHDR is whether HDR metadata was supposed to survive
// the conversion.
func VerifyOutput(ctx context.Context, analyzer Analyzer, outputPath string, target registry.Codec, input *ffprobe.MediaInfo, expectHDR bool) (*Result, error) {
	output, err := analyzer.Inspect(ctx, outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect output: %w", err)
	}

	result := &Result{CodecName: output.VideoCodec}

	result.CodecCorrect, result.CodecMessage = checkCodec(output.VideoCodec, target)
	result.DurationCorrect, result.DurationMessage = checkDuration(output.DurationSecs, input.DurationSecs)
	result.HDRCorrect, result.HDRMessage = checkHDR(output.HasHDR, expectHDR)

	return result, nil
}

func checkCodec(actual string, target registry.Codec) (bool, string) {
	if strings.EqualFold(actual, string(target)) {
		return true, fmt.Sprintf("%s (%s)", target, actual)
	}
	if actual == "" {
		return false, fmt.Sprintf("expected %s, no video stream found", target)
	}
	return false, fmt.Sprintf("expected %s, got %s", target, actual)
}

func checkDuration(actual, expected float64) (bool, string) {
	if expected == 0 {
		return true, "input duration unknown, check skipped"
	}
	diff := math.Abs(actual - expected)
	if diff <= durationToleranceSecs {
		return true, fmt.Sprintf("duration matches input (%.1fs)", actual)
	}
	return false, fmt.Sprintf("duration mismatch: got %.1fs, expected %.1fs (diff: %.1fs)",
		actual, expected, diff)
}

func checkHDR(actual, expected bool) (bool, string) {
	switch {
	case expected && actual:
		return true, "HDR metadata preserved"
	case expected && !actual:
		return false, "HDR metadata lost in conversion"
	case !expected && actual:
		// Extra HDR signaling is harmless.
		return true, "output carries HDR metadata"
	default:
		return true, "SDR"
	}
}
