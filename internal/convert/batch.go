package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"recode/internal/discovery"
	"recode/internal/reporter"
	"recode/internal/util"
)

// ConvertBatch converts every video file found under inputDir. Files
// already encoded with the target codec and files whose output already
// exists are skipped rather than warned about; one file failing does
// not stop the rest. Cancellation stops the batch before the next file.
func (c *Converter) ConvertBatch(ctx context.Context, inputDir string, template *Request) (*BatchResult, error) {
	files, err := discovery.FindVideoFiles(inputDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	outputDir := template.OutputDir
	if outputDir == "" {
		outputDir = inputDir
	}
	c.reporter.BatchStarted(reporter.BatchStartInfo{
		TotalFiles: len(files),
		FileList:   names,
		OutputDir:  outputDir,
	})
	c.log.Info("Batch conversion of %d file(s) in %s", len(files), inputDir)

	result := &BatchResult{Total: len(files)}
	started := time.Now()

	for i, file := range files {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			c.log.Warn("Batch cancelled after %d of %d file(s)", i, len(files))
			c.finishBatch(result, started)
			return result, nil
		default:
		}

		c.reporter.FileProgress(reporter.FileProgressContext{
			CurrentFile: i + 1,
			TotalFiles:  len(files),
			Filename:    filepath.Base(file),
		})

		outcome := c.convertBatchFile(ctx, file, template)
		result.Files = append(result.Files, *outcome)

		switch outcome.Status {
		case StatusSuccess:
			result.Successful++
		case StatusSkipped:
			result.Skipped++
		default:
			// StatusFailed and StatusError both count against the batch;
			// the per-file status keeps them distinguishable.
			result.Failed++
		}
	}

	c.finishBatch(result, started)
	return result, nil
}

// convertBatchFile applies the batch skip rules before converting.
func (c *Converter) convertBatchFile(ctx context.Context, file string, template *Request) *Outcome {
	req := *template
	req.InputPath = file
	req.OutputPath = ""

	info, err := c.prober.Inspect(ctx, file)
	if err != nil {
		c.log.Error("Probe failed for %s: %v", file, err)
		return errored(&req, err)
	}

	if info.VideoCodec == string(req.TargetCodec) {
		c.log.Info("Skipping %s: already %s", file, req.TargetCodec)
		c.reporter.Verbose(fmt.Sprintf("skipping %s: already %s", filepath.Base(file), req.TargetCodec))
		return &Outcome{
			InputPath:  file,
			OutputPath: util.GenerateOutputPath(file, req.OutputDir, req.TargetCodec),
			Status:     StatusSkipped,
			SkipReason: SkipAlreadyTarget,
		}
	}

	return c.convertProbed(ctx, &req, info)
}

func (c *Converter) finishBatch(result *BatchResult, started time.Time) {
	summary := reporter.BatchSummary{
		TotalFiles:      result.Total,
		SuccessfulCount: result.Successful,
		FailedCount:     result.Failed,
		SkippedCount:    result.Skipped,
		TotalDuration:   time.Since(started),
	}

	for _, outcome := range result.Files {
		if outcome.Status == StatusSuccess {
			summary.TotalOriginalSize += outcome.OriginalSize
			summary.TotalEncodedSize += outcome.EncodedSize
		}
		summary.FileResults = append(summary.FileResults, reporter.FileResult{
			Filename:  filepath.Base(outcome.InputPath),
			Status:    string(outcome.Status),
			Reduction: util.CalculateSizeReduction(outcome.OriginalSize, outcome.EncodedSize),
		})
	}

	c.reporter.BatchComplete(summary)
	c.log.Info("Batch complete: %d succeeded, %d failed, %d skipped",
		result.Successful, result.Failed, result.Skipped)
}
