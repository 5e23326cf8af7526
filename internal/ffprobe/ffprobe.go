// Package ffprobe extracts media information via the external probing tool.
package ffprobe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"recode/internal/errors"
)

// probeTimeout bounds each ffprobe invocation.
const probeTimeout = 30 * time.Second

// HDRType classifies the transfer characteristic of a video stream.
type HDRType int

const (
	// HDRUnknown means no recognized HDR transfer was detected.
	HDRUnknown HDRType = iota
	// HDR10 means PQ (SMPTE ST 2084) transfer.
	HDR10
	// HLG means Hybrid Log-Gamma (ARIB STD-B67) transfer.
	HLG
)

// String returns a string representation of the HDR type.
func (t HDRType) String() string {
	switch t {
	case HDR10:
		return "HDR10"
	case HLG:
		return "HLG"
	default:
		return "unknown"
	}
}

// ColorInfo holds stream-level color metadata from the source file.
type ColorInfo struct {
	Primaries string
	Transfer  string
	Space     string
	Range     string
}

// Classify determines the HDR standard from the transfer characteristic.
func (c ColorInfo) Classify() HDRType {
	transfer := strings.ToLower(c.Transfer)
	switch {
	case transfer == "arib-std-b67" || strings.Contains(transfer, "hlg"):
		return HLG
	case transfer == "smpte2084" || strings.Contains(transfer, "pq"):
		return HDR10
	default:
		return HDRUnknown
	}
}

// MediaInfo contains the probe results one conversion needs.
type MediaInfo struct {
	// DurationSecs is the total media duration, 0 when unknown.
	DurationSecs float64
	// VideoCodec is the first video stream's codec_name, empty when no
	// video stream was found.
	VideoCodec string
	// Color is the first video stream's color metadata.
	Color ColorInfo
	// HasHDR reports whether HDR indicators (color metadata or HDR
	// side data) were found.
	HasHDR bool
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType      string         `json:"codec_type"`
	CodecName      string         `json:"codec_name"`
	Duration       string         `json:"duration"`
	ColorPrimaries string         `json:"color_primaries"`
	ColorTransfer  string         `json:"color_transfer"`
	ColorSpace     string         `json:"color_space"`
	ColorRange     string         `json:"color_range"`
	SideDataList   []sideDataItem `json:"side_data_list"`
}

type sideDataItem struct {
	SideDataType string `json:"side_data_type"`
}

// Prober wraps the external probing tool. The zero value is usable.
type Prober struct {
	// Binary is the probing tool executable, "ffprobe" when empty.
	Binary string
}

func (p *Prober) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return "ffprobe"
}

func (p *Prober) run(ctx context.Context, inputPath string) (*ffprobeOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, errors.NewCommandStartError(p.binary(), err)
	}
	return parseOutput(output)
}

func parseOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewProbeParseError("failed to parse ffprobe output", err)
	}
	return &result, nil
}

// Inspect probes the file and returns its media information.
func (p *Prober) Inspect(ctx context.Context, inputPath string) (*MediaInfo, error) {
	probe, err := p.run(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	return buildMediaInfo(probe), nil
}

// VideoCodec returns the first video stream's codec name, or an empty
// string when the file has no detectable video stream.
func (p *Prober) VideoCodec(ctx context.Context, inputPath string) (string, error) {
	info, err := p.Inspect(ctx, inputPath)
	if err != nil {
		return "", err
	}
	return info.VideoCodec, nil
}

// Duration returns the media duration in seconds. A zero result with a
// nil error means the duration is unknown; callers proceed without it.
func (p *Prober) Duration(ctx context.Context, inputPath string) (float64, error) {
	info, err := p.Inspect(ctx, inputPath)
	if err != nil {
		return 0, err
	}
	return info.DurationSecs, nil
}

// Color returns the first video stream's color metadata.
func (p *Prober) Color(ctx context.Context, inputPath string) (ColorInfo, error) {
	info, err := p.Inspect(ctx, inputPath)
	if err != nil {
		return ColorInfo{}, err
	}
	return info.Color, nil
}

func buildMediaInfo(probe *ffprobeOutput) *MediaInfo {
	info := &MediaInfo{}

	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			info.DurationSecs = d
		}
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.VideoCodec = stream.CodecName
		info.Color = ColorInfo{
			Primaries: stream.ColorPrimaries,
			Transfer:  stream.ColorTransfer,
			Space:     stream.ColorSpace,
			Range:     stream.ColorRange,
		}
		info.HasHDR = detectHDR(stream)

		// Fall back to the stream duration when the container omits it.
		if info.DurationSecs == 0 && stream.Duration != "" {
			if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
				info.DurationSecs = d
			}
		}
		break
	}

	return info
}

// detectHDR checks color metadata and side data for HDR indicators.
func detectHDR(stream ffprobeStream) bool {
	if stream.ColorTransfer == "smpte2084" || stream.ColorTransfer == "arib-std-b67" {
		return true
	}
	if containsCI(stream.ColorPrimaries, "bt2020") || containsCI(stream.ColorPrimaries, "bt.2020") {
		return true
	}
	for _, data := range stream.SideDataList {
		switch data.SideDataType {
		case "Mastering display metadata", "Content light level metadata":
			return true
		}
	}
	return false
}

// containsCI performs a case-insensitive substring check.
func containsCI(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ValidateTool checks that the probing tool is available.
func ValidateTool(ctx context.Context, binary string) bool {
	if binary == "" {
		binary = "ffprobe"
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, binary, "-version").Run() == nil
}
