package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"recode/internal/errors"
)

const (
	// DefaultHangTimeout is how long the engine may stay silent before
	// the run is declared hung and terminated.
	DefaultHangTimeout = 30 * time.Second
	// DefaultGracefulWait is how long a terminated process gets to exit
	// cleanly before it is killed.
	DefaultGracefulWait = 5 * time.Second

	defaultReadInterval = time.Second
	tailCapacity        = 40
	tailScanWindow      = 10
)

// RunOutcome reports how one supervised engine invocation ended.
type RunOutcome struct {
	Success bool
	// Hung is set when the process produced no output for the hang
	// timeout and was terminated.
	Hung bool
	// Cancelled is set when the context was cancelled mid-run.
	Cancelled bool
	// InvalidArgument is set when the final diagnostic lines carry an
	// invalid-argument signature, usually a hardware encoder rejecting
	// parameters the capability probe could not rule out.
	InvalidArgument bool
	ExitCode        int
	// TailLines holds the most recent diagnostic lines for error
	// reporting.
	TailLines []string
	Err       error
}

// Supervisor runs the encoding engine as a subprocess, parses its
// progress stream, and enforces liveness. The zero value is not usable;
// call NewSupervisor.
type Supervisor struct {
	Binary       string
	ReadInterval time.Duration
	HangTimeout  time.Duration
	GracefulWait time.Duration
}

// NewSupervisor returns a supervisor with production timeouts.
func NewSupervisor(binary string) *Supervisor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Supervisor{
		Binary:       binary,
		ReadInterval: defaultReadInterval,
		HangTimeout:  DefaultHangTimeout,
		GracefulWait: DefaultGracefulWait,
	}
}

// Run executes the engine with the given arguments and supervises it to
// completion. Progress lines are parsed incrementally and delivered to
// onProgress when set. The process is terminated when ctx is cancelled
// or when it stays silent longer than the hang timeout.
//
// Run itself returns an error only when the process cannot be started;
// everything that happens after startup is reported in the outcome.
func (s *Supervisor) Run(ctx context.Context, args []string, totalDuration float64, onProgress ProgressCallback) (*RunOutcome, error) {
	cmd := exec.Command(s.Binary, args...)
	cmd.Stdout = nil

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.NewSupervisionError("open diagnostic pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.NewCommandStartError(s.Binary, err)
	}

	outcome := &RunOutcome{}
	stream := newLineStream(stderr)
	tail := newTailBuffer(tailCapacity)
	progress := Progress{}
	lastOutput := time.Now()

	terminated := false
	for !terminated {
		line, status := stream.Next(s.ReadInterval)
		switch status {
		case readLine:
			lastOutput = time.Now()
			tail.add(line)
			if IsProgressLine(line) {
				ParseLine(line, &progress, totalDuration)
				if onProgress != nil {
					onProgress(progress)
				}
			}
		case readClosed:
			terminated = true
			continue
		case readTimeout:
			// Fall through to liveness checks.
		}

		select {
		case <-ctx.Done():
			outcome.Cancelled = true
			s.terminate(cmd)
			terminated = true
		default:
		}

		if !terminated && time.Since(lastOutput) > s.HangTimeout {
			outcome.Hung = true
			s.terminate(cmd)
			terminated = true
		}
	}

	// Drain whatever the process flushed while being torn down so the
	// tail reflects its final words. Bounded so a chatty process cannot
	// keep us here.
	drainDeadline := time.Now().Add(s.GracefulWait)
	for time.Now().Before(drainDeadline) {
		line, status := stream.Next(100 * time.Millisecond)
		if status == readClosed {
			break
		}
		if status == readLine {
			tail.add(line)
		}
	}

	waitErr := s.reap(cmd)

	outcome.TailLines = tail.lines()
	outcome.ExitCode = cmd.ProcessState.ExitCode()
	outcome.InvalidArgument = hasInvalidArgSignature(outcome.TailLines)

	switch {
	case outcome.Cancelled:
		outcome.Err = errors.NewCancelledError()
	case outcome.Hung:
		outcome.Err = errors.NewHungError(
			fmt.Sprintf("no output for %s, process terminated", s.HangTimeout))
	case waitErr != nil:
		outcome.Err = errors.WrapExecError(s.Binary, waitErr, strings.Join(outcome.TailLines, "\n"))
	default:
		outcome.Success = true
	}

	return outcome, nil
}

// terminate asks the process to exit. The interrupt lets the engine
// finalize its output file trailer; reap escalates if it lingers.
func (s *Supervisor) terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		_ = cmd.Process.Kill()
	}
}

// reap waits for the process to exit, killing it if it outlives the
// graceful wait. Wait is always called exactly once so the process is
// never left as a zombie.
func (s *Supervisor) reap(cmd *exec.Cmd) error {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(s.GracefulWait)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		_ = cmd.Process.Kill()
		return <-done
	}
}

// hasInvalidArgSignature scans the final diagnostic lines for the
// engine's invalid-argument markers.
func hasInvalidArgSignature(tail []string) bool {
	start := len(tail) - tailScanWindow
	if start < 0 {
		start = 0
	}
	for _, line := range tail[start:] {
		if strings.Contains(line, "Invalid argument") || strings.Contains(line, "error code: -22") {
			return true
		}
	}
	return false
}

// tailBuffer keeps the most recent diagnostic lines.
type tailBuffer struct {
	capacity int
	buf      []string
}

func newTailBuffer(capacity int) *tailBuffer {
	return &tailBuffer{capacity: capacity}
}

func (t *tailBuffer) add(line string) {
	t.buf = append(t.buf, line)
	if len(t.buf) > t.capacity {
		t.buf = t.buf[len(t.buf)-t.capacity:]
	}
}

func (t *tailBuffer) lines() []string {
	return t.buf
}
