// Package convert orchestrates single-file and batch video conversion.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"recode/internal/errors"
	"recode/internal/ffmpeg"
	"recode/internal/ffprobe"
	"recode/internal/logging"
	"recode/internal/registry"
	"recode/internal/reporter"
	"recode/internal/selection"
	"recode/internal/util"
	"recode/internal/validation"
)

// Status describes how one file's conversion ended.
type Status string

const (
	StatusSuccess Status = "success"
	// StatusFailed means the engine ran and did not produce the output.
	StatusFailed Status = "failed"
	StatusSkipped Status = "skipped"
	// StatusError means the conversion never reached the engine: missing
	// input, probe failure, unsupported codec, or an IO problem.
	StatusError Status = "error"
)

// Skip reasons recorded on skipped outcomes.
const (
	SkipAlreadyTarget = "already encoded with target codec"
	SkipOutputExists  = "output file already exists"
)

// Request describes one file conversion.
type Request struct {
	InputPath string
	// OutputPath overrides the generated output location when set.
	OutputPath string
	// OutputDir is where generated output paths land; empty means next
	// to the input.
	OutputDir      string
	TargetCodec    registry.Codec
	Quality        *int
	PreserveHDR    bool
	PreferHardware bool
	Overwrite      bool
}

// Outcome is the result of one file conversion.
type Outcome struct {
	InputPath  string
	OutputPath string
	Status     Status
	SkipReason string
	Backend    registry.Backend
	Encoder    string
	// HDRFallback is set when the first attempt failed on encoder
	// parameters and the conversion succeeded after dropping HDR args.
	HDRFallback bool
	// ValidationPassed reports whether the output passed post-conversion
	// checks. Always false for non-success outcomes.
	ValidationPassed bool
	OriginalSize uint64
	EncodedSize  uint64
	Elapsed      time.Duration
	AverageSpeed float32
	Err          error
}

// BatchResult aggregates per-file outcomes of a directory conversion.
type BatchResult struct {
	Total      int
	Successful int
	Failed     int
	Skipped    int
	Cancelled  bool
	Files      []Outcome
}

// Prober abstracts media inspection for testability.
type Prober interface {
	Inspect(ctx context.Context, inputPath string) (*ffprobe.MediaInfo, error)
}

// Runner abstracts supervised engine execution for testability.
type Runner interface {
	Run(ctx context.Context, args []string, totalDuration float64, onProgress ffmpeg.ProgressCallback) (*ffmpeg.RunOutcome, error)
}

// Converter drives conversions using a fixed encoder selector.
type Converter struct {
	selector *selection.Selector
	prober   Prober
	runner   Runner
	reporter reporter.Reporter
	log      *logging.Logger
}

// New builds a converter with production dependencies, detecting
// hardware capabilities once.
func New(ctx context.Context, rep reporter.Reporter, log *logging.Logger) *Converter {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	sel := selection.New(ctx, registry.NewDefault())

	caps := sel.Capabilities()
	rep.Detection(reporter.DetectionSummary{
		Hostname: util.GetSystemInfo().Hostname,
		Backend:  caps.Backend.String(),
		Hardware: caps.Backend.IsHardware(),
		Degraded: caps.Degraded,
	})
	if caps.Degraded {
		log.Warn("Encoder probe failed, assuming software-only capabilities")
	}
	log.Info("Hardware detection: backend %s", caps.Backend)

	return &Converter{
		selector: sel,
		prober:   &ffprobe.Prober{},
		runner:   ffmpeg.NewSupervisor(""),
		reporter: rep,
		log:      log,
	}
}

// NewWithDeps builds a converter with injected dependencies.
func NewWithDeps(sel *selection.Selector, prober Prober, runner Runner, rep reporter.Reporter, log *logging.Logger) *Converter {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	return &Converter{
		selector: sel,
		prober:   prober,
		runner:   runner,
		reporter: rep,
		log:      log,
	}
}

// Selector exposes the encoder selector for plan reporting.
func (c *Converter) Selector() *selection.Selector { return c.selector }

// ConvertOne converts a single file. A source already encoded with the
// target codec gets a warning but is converted anyway; use ConvertBatch
// for skip semantics.
func (c *Converter) ConvertOne(ctx context.Context, req *Request) *Outcome {
	if !util.FileExists(req.InputPath) {
		return errored(req, errors.NewPathError(fmt.Sprintf("input file not found: %s", req.InputPath)))
	}

	info, err := c.prober.Inspect(ctx, req.InputPath)
	if err != nil {
		return errored(req, err)
	}

	if info.VideoCodec == string(req.TargetCodec) {
		c.reporter.Warning(fmt.Sprintf("%s is already encoded with %s, converting anyway",
			filepath.Base(req.InputPath), req.TargetCodec))
	}

	return c.convertProbed(ctx, req, info)
}

// convertProbed runs the conversion for an already-inspected input.
func (c *Converter) convertProbed(ctx context.Context, req *Request, info *ffprobe.MediaInfo) *Outcome {
	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = util.GenerateOutputPath(req.InputPath, req.OutputDir, req.TargetCodec)
	}

	if util.FileExists(outputPath) && !req.Overwrite {
		c.log.Info("Skipping %s: output exists at %s", req.InputPath, outputPath)
		return &Outcome{
			InputPath:  req.InputPath,
			OutputPath: outputPath,
			Status:     StatusSkipped,
			SkipReason: SkipOutputExists,
		}
	}

	sel, err := c.selector.Select(req.TargetCodec, req.PreferHardware)
	if err != nil {
		return errored(req, err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := util.EnsureDirectory(dir); err != nil {
			return errored(req, errors.NewIOError("create output directory", err))
		}
	}

	originalSize, _ := util.GetFileSize(req.InputPath)
	hdrCapable := c.selector.Registry().HDRCapable(req.TargetCodec)
	preserveHDR := req.PreserveHDR && info.HasHDR

	c.reportStart(req, info, sel, outputPath, originalSize, preserveHDR && hdrCapable)

	params := &ffmpeg.EncodeParams{
		InputPath:   req.InputPath,
		OutputPath:  outputPath,
		Codec:       req.TargetCodec,
		Quality:     req.Quality,
		PreserveHDR: preserveHDR,
		HDRCapable:  hdrCapable,
		Selection:   sel,
		SourceColor: info.Color,
		Duration:    info.DurationSecs,
	}

	outcome := &Outcome{
		InputPath:    req.InputPath,
		OutputPath:   outputPath,
		Backend:      sel.Backend,
		Encoder:      sel.Encoder(),
		OriginalSize: originalSize,
	}

	started := time.Now()
	run, runErr := c.attempt(ctx, params, info.DurationSecs)

	// Hardware encoders reject or mishandle HDR parameters in ways the
	// capability probe cannot rule out, so any hardware failure with HDR
	// args gets one retry without them. Software failures are real
	// failures and are never retried.
	if runErr == nil && !run.Success && sel.Backend.IsHardware() && params.PreserveHDR && !run.Cancelled {
		c.reporter.Warning("conversion failed with HDR parameters, retrying without HDR preservation")
		c.log.Warn("Hardware failure with HDR parameters for %s, retrying without", req.InputPath)
		_ = util.RemovePartialOutput(outputPath)

		params.PreserveHDR = false
		outcome.HDRFallback = true
		run, runErr = c.attempt(ctx, params, info.DurationSecs)
	}

	outcome.Elapsed = time.Since(started)
	if info.DurationSecs > 0 && outcome.Elapsed > 0 {
		outcome.AverageSpeed = float32(info.DurationSecs / outcome.Elapsed.Seconds())
	}

	if runErr != nil {
		outcome.Status = StatusFailed
		outcome.Err = runErr
		return outcome
	}
	if !run.Success {
		_ = util.RemovePartialOutput(outputPath)
		outcome.Status = StatusFailed
		outcome.Err = c.runError(run)
		c.reportFailure(req, run, outcome.Err)
		return outcome
	}

	outcome.EncodedSize, _ = util.GetFileSize(outputPath)
	outcome.Status = StatusSuccess
	outcome.ValidationPassed = c.verifyOutput(ctx, req, info, outputPath, params.PreserveHDR)
	c.reportSuccess(req, outcome)
	return outcome
}

// verifyOutput runs post-conversion checks; failures are warnings, not
// conversion errors.
func (c *Converter) verifyOutput(ctx context.Context, req *Request, info *ffprobe.MediaInfo, outputPath string, hdrExpected bool) bool {
	result, err := validation.VerifyOutput(ctx, c.prober, outputPath, req.TargetCodec, info, hdrExpected)
	if err != nil {
		c.log.Warn("Could not validate %s: %v", outputPath, err)
		return false
	}
	for _, failure := range result.Failures() {
		c.reporter.Warning(failure)
		c.log.Warn("Validation: %s", failure)
	}
	return result.IsValid()
}

// attempt performs one supervised engine run.
func (c *Converter) attempt(ctx context.Context, params *ffmpeg.EncodeParams, duration float64) (*ffmpeg.RunOutcome, error) {
	args, warnings := ffmpeg.BuildCommand(params)
	for _, warning := range warnings {
		c.reporter.Warning(warning)
		c.log.Warn("%s", warning)
	}
	c.log.Debug("Engine arguments: %s", strings.Join(args, " "))

	c.reporter.ConversionStarted()
	return c.runner.Run(ctx, args, duration, func(p ffmpeg.Progress) {
		c.reporter.ConversionProgress(reporter.ProgressSnapshot{
			Percent: p.Percent,
			Speed:   p.Speed,
			FPS:     p.FPS,
			Frame:   p.Frame,
			ETA:     time.Duration(util.EstimateRemaining(p.ElapsedSecs, duration, p.Speed)) * time.Second,
			Bitrate: p.Bitrate,
			Clock:   p.Clock,
		})
	})
}

// runError maps a failed run to the error taxonomy.
func (c *Converter) runError(run *ffmpeg.RunOutcome) error {
	if run.Err != nil {
		switch {
		case errors.IsCancelled(run.Err), errors.IsKind(run.Err, errors.KindHung):
			return run.Err
		}
	}
	tail := run.TailLines
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	return errors.NewConversionFailedError(
		fmt.Sprintf("engine exited with code %d: %s", run.ExitCode, strings.Join(tail, " | ")))
}

func (c *Converter) reportStart(req *Request, info *ffprobe.MediaInfo, sel selection.Selection, outputPath string, originalSize uint64, hdrActive bool) {
	dynamicRange := "SDR"
	if info.HasHDR {
		dynamicRange = info.Color.Classify().String()
	}

	c.reporter.Initialization(reporter.InitializationSummary{
		InputFile:     filepath.Base(req.InputPath),
		OutputFile:    filepath.Base(outputPath),
		Duration:      util.FormatDuration(info.DurationSecs),
		SourceCodec:   info.VideoCodec,
		DynamicRange:  dynamicRange,
		InputSize:     util.FormatBytes(originalSize),
		EstimatedTime: util.EstimateConversionTime(originalSize, sel.Backend.IsHardware()),
	})

	quality := registry.DefaultQuality
	if req.Quality != nil {
		quality = *req.Quality
	}
	c.reporter.EncodingConfig(reporter.EncodingConfigSummary{
		Encoder:     sel.Encoder(),
		Backend:     sel.Backend.String(),
		TargetCodec: string(req.TargetCodec),
		Quality:     strconv.Itoa(quality),
		PreserveHDR: hdrActive,
	})

	c.log.Info("Converting %s -> %s using %s (%s)",
		req.InputPath, outputPath, sel.Encoder(), sel.Backend)
}

func (c *Converter) reportSuccess(req *Request, outcome *Outcome) {
	c.reporter.ConversionComplete(reporter.ConversionSummary{
		InputFile:    filepath.Base(req.InputPath),
		OutputFile:   filepath.Base(outcome.OutputPath),
		OriginalSize: outcome.OriginalSize,
		EncodedSize:  outcome.EncodedSize,
		TotalTime:    outcome.Elapsed,
		AverageSpeed: outcome.AverageSpeed,
		OutputPath:   outcome.OutputPath,
	})

	reduction := util.CalculateSizeReduction(outcome.OriginalSize, outcome.EncodedSize)
	c.log.Info("Completed %s: %s -> %s (%.1f%% reduction) in %s",
		filepath.Base(req.InputPath),
		util.FormatBytes(outcome.OriginalSize),
		util.FormatBytes(outcome.EncodedSize),
		reduction,
		util.FormatDuration(outcome.Elapsed.Seconds()))
}

func (c *Converter) reportFailure(req *Request, run *ffmpeg.RunOutcome, err error) {
	title := "Conversion failed"
	suggestion := ""
	switch {
	case errors.IsKind(err, errors.KindHung):
		title = "Conversion hung"
		suggestion = "the encoder produced no output; check the input file integrity"
	case errors.IsCancelled(err):
		title = "Conversion cancelled"
	case run.InvalidArgument:
		suggestion = "the encoder rejected its arguments; try software encoding"
	}

	context := ""
	if len(run.TailLines) > 0 {
		context = run.TailLines[len(run.TailLines)-1]
	}

	c.reporter.Error(reporter.ReporterError{
		Title:      title,
		Message:    fmt.Sprintf("%s: %v", filepath.Base(req.InputPath), err),
		Context:    context,
		Suggestion: suggestion,
	})
	c.log.Error("Failed %s: %v", req.InputPath, err)
}

// errored marks a conversion that never reached the engine.
func errored(req *Request, err error) *Outcome {
	return &Outcome{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Status:     StatusError,
		Err:        err,
	}
}
