// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// DetectionSummary describes the hardware detection result.
type DetectionSummary struct {
	Hostname string
	Backend  string
	Hardware bool
	// Degraded is set when detection failed and software encoding was
	// assumed.
	Degraded bool
}

// InitializationSummary describes the current file before conversion.
type InitializationSummary struct {
	InputFile    string
	OutputFile   string
	Duration     string
	SourceCodec  string
	DynamicRange string
	InputSize    string
	// EstimatedTime is the rough size-based pre-conversion estimate.
	EstimatedTime string
}

// EncodingConfigSummary contains the selected encoder configuration.
type EncodingConfigSummary struct {
	Encoder     string
	Backend     string
	TargetCodec string
	Quality     string
	PreserveHDR bool
}

// ProgressSnapshot contains conversion progress information.
type ProgressSnapshot struct {
	Percent float32
	Speed   float32
	FPS     float32
	Frame   uint64
	ETA     time.Duration
	Bitrate string
	Clock   string
}

// ConversionSummary contains final conversion results for one file.
type ConversionSummary struct {
	InputFile    string
	OutputFile   string
	OriginalSize uint64
	EncodedSize  uint64
	TotalTime    time.Duration
	AverageSpeed float32
	OutputPath   string
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
	Filename    string
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	TotalFiles        int
	SuccessfulCount   int
	FailedCount       int
	SkippedCount      int
	TotalOriginalSize uint64
	TotalEncodedSize  uint64
	TotalDuration     time.Duration
	FileResults       []FileResult
}

// FileResult contains per-file conversion result.
type FileResult struct {
	Filename  string
	Status    string
	Reduction float64
}
