// Package util provides utility functions for formatting and common operations.
package util

import (
	"fmt"
)

const (
	KiB = 1024
	MiB = KiB * 1024
	GiB = MiB * 1024
)

// FormatBytes formats bytes with appropriate binary units (B, KiB, MiB, GiB).
func FormatBytes(bytes uint64) string {
	bf := float64(bytes)
	switch {
	case bf >= GiB:
		return fmt.Sprintf("%.2f GiB", bf/GiB)
	case bf >= MiB:
		return fmt.Sprintf("%.2f MiB", bf/MiB)
	case bf >= KiB:
		return fmt.Sprintf("%.2f KiB", bf/KiB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatDuration formats seconds as HH:MM:SS.
func FormatDuration(seconds float64) string {
	if seconds < 0 || seconds != seconds { // NaN check
		return "??:??:??"
	}

	totalSecs := int64(seconds)
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// CalculateSizeReduction calculates the percentage size reduction.
// Returns positive values for size reduction, negative for size increase.
func CalculateSizeReduction(inputSize, outputSize uint64) float64 {
	if inputSize == 0 {
		return 0
	}
	return (float64(inputSize) - float64(outputSize)) / float64(inputSize) * 100
}

// Rough conversion throughput in minutes of wall-clock time per GiB of
// input. Hardware encoding typically runs 3-5x faster than CPU.
const (
	hardwareMinutesPerGiB = 2.0
	softwareMinutesPerGiB = 8.0
)

// EstimateConversionTime gives a rough pre-conversion time estimate from
// the input size and whether a hardware encoder was selected. It is an
// order-of-magnitude hint shown before the first progress line arrives;
// EstimateRemaining takes over once the encoder reports its real speed.
func EstimateConversionTime(inputSize uint64, hardware bool) string {
	minutesPerGiB := softwareMinutesPerGiB
	if hardware {
		minutesPerGiB = hardwareMinutesPerGiB
	}
	minutes := float64(inputSize) / GiB * minutesPerGiB

	switch {
	case minutes < 1:
		return "< 1 minute"
	case minutes < 60:
		return fmt.Sprintf("~%d minutes", int(minutes))
	default:
		return fmt.Sprintf("~%dh %dm", int(minutes)/60, int(minutes)%60)
	}
}

// EstimateRemaining estimates the remaining wall-clock seconds of a
// conversion given the elapsed media time, the total media duration,
// and the current encoding speed multiplier. Returns 0 when any input
// is unknown.
func EstimateRemaining(elapsedMediaSecs, totalDurationSecs float64, speed float32) float64 {
	if totalDurationSecs <= 0 || speed <= 0 || elapsedMediaSecs >= totalDurationSecs {
		return 0
	}
	return (totalDurationSecs - elapsedMediaSecs) / float64(speed)
}
