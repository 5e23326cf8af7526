// Package recode provides a Go library for converting video files
// between codecs by driving FFmpeg.
//
// Recode probes each input, selects a hardware encoder when one is
// available, preserves HDR color metadata where the target codec can
// carry it, and supervises the FFmpeg subprocess with hang detection.
//
// Basic usage:
//
//	conv, err := recode.New(
//	    recode.WithTargetCodec(recode.CodecHEVC),
//	    recode.WithQuality(23),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, "input.mp4", "output/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Converted: %s, reduction: %.1f%%\n",
//	    result.OutputFile, result.SizeReductionPercent)
package recode

import (
	"context"
	"fmt"

	"recode/internal/config"
	"recode/internal/convert"
	"recode/internal/discovery"
	"recode/internal/ffmpeg"
	"recode/internal/ffprobe"
	"recode/internal/logging"
	"recode/internal/registry"
	"recode/internal/reporter"
	"recode/internal/util"
)

// Re-export codec types
type Codec = registry.Codec

const (
	CodecHEVC = registry.CodecHEVC
	CodecH264 = registry.CodecH264
	CodecAV1  = registry.CodecAV1
)

// ParseCodec converts a codec string to a Codec value. Valid values
// are "hevc" (also "h265"), "h264" (also "avc"), and "av1",
// case-insensitive.
func ParseCodec(s string) (Codec, error) {
	return registry.ParseCodec(s)
}

// Converter is the main entry point for video conversion.
type Converter struct {
	config *config.Config
	rep    reporter.Reporter
	log    *logging.Logger
}

// Result contains the result of a single file conversion.
type Result struct {
	OutputFile           string
	Status               string
	SkipReason           string
	Encoder              string
	Backend              string
	HDRFallback          bool
	ValidationPassed     bool
	OriginalSize         uint64
	EncodedSize          uint64
	SizeReductionPercent float64
	ConversionSpeed      float32
}

// BatchResult contains the result of a batch conversion.
type BatchResult struct {
	Results         []Result
	TotalFiles      int
	SuccessfulCount int
	FailedCount     int
	SkippedCount    int
	Cancelled       bool
}

// Plan describes what a conversion would do without running it.
type Plan struct {
	OutputFile string
	Encoder    string
	Backend    string
	Arguments  []string
	Warnings   []string
}

// Option configures the converter.
type Option func(*Converter)

// New creates a new Converter with the given options.
func New(opts ...Option) (*Converter, error) {
	c := &Converter{
		config: config.NewConfig("", ""),
		rep:    reporter.NullReporter{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// WithTargetCodec sets the codec to convert to. Default is HEVC.
func WithTargetCodec(codec Codec) Option {
	return func(c *Converter) {
		c.config.TargetCodec = codec
	}
}

// WithQuality overrides the encoder's default quality value (1-51,
// lower is better quality).
func WithQuality(quality int) Option {
	return func(c *Converter) {
		c.config.Quality = &quality
	}
}

// WithPreserveHDR controls HDR metadata preservation. Default on.
func WithPreserveHDR(enable bool) Option {
	return func(c *Converter) {
		c.config.PreserveHDR = enable
	}
}

// WithPreferHardware controls hardware encoder selection. Default on.
func WithPreferHardware(enable bool) Option {
	return func(c *Converter) {
		c.config.PreferHardware = enable
	}
}

// WithOverwrite replaces existing output files instead of skipping.
func WithOverwrite(enable bool) Option {
	return func(c *Converter) {
		c.config.Overwrite = enable
	}
}

// WithReporter directs progress events to a custom reporter.
func WithReporter(rep reporter.Reporter) Option {
	return func(c *Converter) {
		if rep != nil {
			c.rep = rep
		}
	}
}

// WithLogger directs diagnostic logging to a file logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Converter) {
		c.log = log
	}
}

// request builds a conversion request from the configured settings.
func (c *Converter) request(input, outputDir string) *convert.Request {
	return &convert.Request{
		InputPath:      input,
		OutputDir:      outputDir,
		TargetCodec:    c.config.TargetCodec,
		Quality:        c.config.Quality,
		PreserveHDR:    c.config.PreserveHDR,
		PreferHardware: c.config.PreferHardware,
		Overwrite:      c.config.Overwrite,
	}
}

// Convert converts a single video file into outputDir. Hardware
// capabilities are detected per call.
func (c *Converter) Convert(ctx context.Context, input, outputDir string) (*Result, error) {
	if outputDir != "" {
		if err := util.EnsureDirectory(outputDir); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	inner := convert.New(ctx, c.rep, c.log)
	outcome := inner.ConvertOne(ctx, c.request(input, outputDir))
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	return fromOutcome(outcome), nil
}

// ConvertBatch converts every video file found under inputDir.
func (c *Converter) ConvertBatch(ctx context.Context, inputDir, outputDir string) (*BatchResult, error) {
	if outputDir != "" {
		if err := util.EnsureDirectory(outputDir); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	inner := convert.New(ctx, c.rep, c.log)
	result, err := inner.ConvertBatch(ctx, inputDir, c.request("", outputDir))
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		TotalFiles:      result.Total,
		SuccessfulCount: result.Successful,
		FailedCount:     result.Failed,
		SkippedCount:    result.Skipped,
		Cancelled:       result.Cancelled,
	}
	for i := range result.Files {
		batch.Results = append(batch.Results, *fromOutcome(&result.Files[i]))
	}
	return batch, nil
}

// DryRun resolves the encoder selection and command for input without
// running the engine.
func (c *Converter) DryRun(ctx context.Context, input, outputDir string) (*Plan, error) {
	prober := &ffprobe.Prober{}
	info, err := prober.Inspect(ctx, input)
	if err != nil {
		return nil, err
	}

	inner := convert.New(ctx, c.rep, c.log)
	sel, err := inner.Selector().Select(c.config.TargetCodec, c.config.PreferHardware)
	if err != nil {
		return nil, err
	}

	outputPath := util.GenerateOutputPath(input, outputDir, c.config.TargetCodec)
	args, warnings := ffmpeg.BuildCommand(&ffmpeg.EncodeParams{
		InputPath:   input,
		OutputPath:  outputPath,
		Codec:       c.config.TargetCodec,
		Quality:     c.config.Quality,
		PreserveHDR: c.config.PreserveHDR && info.HasHDR,
		HDRCapable:  inner.Selector().Registry().HDRCapable(c.config.TargetCodec),
		Selection:   sel,
		SourceColor: info.Color,
		Duration:    info.DurationSecs,
	})

	return &Plan{
		OutputFile: outputPath,
		Encoder:    sel.Encoder(),
		Backend:    sel.Backend.String(),
		Arguments:  args,
		Warnings:   warnings,
	}, nil
}

// FindVideos finds video files under a directory.
func FindVideos(dir string) ([]string, error) {
	return discovery.FindVideoFiles(dir)
}

func fromOutcome(o *convert.Outcome) *Result {
	return &Result{
		OutputFile:           o.OutputPath,
		Status:               string(o.Status),
		SkipReason:           o.SkipReason,
		Encoder:              o.Encoder,
		Backend:              o.Backend.String(),
		HDRFallback:          o.HDRFallback,
		ValidationPassed:     o.ValidationPassed,
		OriginalSize:         o.OriginalSize,
		EncodedSize:          o.EncodedSize,
		SizeReductionPercent: util.CalculateSizeReduction(o.OriginalSize, o.EncodedSize),
		ConversionSpeed:      o.AverageSpeed,
	}
}
