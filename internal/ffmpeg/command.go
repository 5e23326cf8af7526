package ffmpeg

import (
	"recode/internal/ffprobe"
	"recode/internal/registry"
	"recode/internal/selection"
)

// EncodeParams describes one encoding engine invocation.
type EncodeParams struct {
	InputPath  string
	OutputPath string
	Codec      registry.Codec
	// Quality overrides the parameter set's default quality value when
	// non-nil. Only the quality-bearing argument is replaced.
	Quality     *int
	PreserveHDR bool
	// HDRCapable reports whether the target codec carries HDR metadata
	// (registry-marked). HDR arguments are emitted only when both this
	// and PreserveHDR are set.
	HDRCapable bool
	Selection  selection.Selection
	// SourceColor is the probed stream-level color metadata of the
	// input, used to classify HDR content for hardware backends.
	SourceColor ffprobe.ColorInfo
	// Duration is the total media duration in seconds, 0 when unknown.
	Duration float64
}

// colorSet is one canonical group of color metadata arguments.
type colorSet struct {
	primaries string
	transfer  string
	space     string
	colRange  string
}

func (c colorSet) args() []string {
	return []string{
		"-color_primaries", c.primaries,
		"-color_trc", c.transfer,
		"-colorspace", c.space,
		"-color_range", c.colRange,
	}
}

var (
	// hdr10Colors is the canonical HDR10 (PQ) signaling set, also the
	// default when the source carries no recognizable HDR transfer.
	hdr10Colors = colorSet{"bt2020", "smpte2084", "bt2020nc", "tv"}
	// hlgColors is the canonical HLG signaling set.
	hlgColors = colorSet{"bt2020", "arib-std-b67", "bt2020nc", "tv"}
	// copyColors passes source color metadata through verbatim. Only
	// software re-encoding supports this.
	copyColors = colorSet{"copy", "copy", "copy", "copy"}
)

// BuildCommand produces the complete argument sequence for the engine:
// overwrite flag, input, conversion parameters, output. Building is
// pure; the same params always yield the same sequence.
func BuildCommand(p *EncodeParams) (args []string, warnings []string) {
	params, warnings := buildConversionArgs(p)

	args = append(args, "-y", "-i", p.InputPath)
	args = append(args, params...)
	args = append(args, p.OutputPath)
	return args, warnings
}

// buildConversionArgs produces the arguments between input and output.
func buildConversionArgs(p *EncodeParams) (args []string, warnings []string) {
	sel := p.Selection

	args = append(args, "-c:v", sel.Encoder())
	args = append(args, sel.Params.QualityArgs(p.Quality)...)

	if p.PreserveHDR && p.HDRCapable {
		hdrArgs, hdrWarnings := hdrColorArgs(sel.Backend, p.SourceColor)
		args = append(args, hdrArgs...)
		warnings = append(warnings, hdrWarnings...)

		// Propagate container-level metadata tags from the source.
		args = append(args, "-map_metadata", "0")

		if sel.Backend == registry.BackendSoftware {
			args = append(args, "-movflags", "+write_colr")
		}
	}

	// Audio is always copied without re-encoding.
	args = append(args, "-c:a", "copy")

	if sel.Backend.IsHardware() {
		// Hardware backends are less tolerant of complex multi-stream
		// inputs: map only the first video stream and optional audio.
		args = append(args, "-map", "0:v:0", "-map", "0:a?")
	} else {
		args = append(args, "-c:s", "copy", "-map", "0")
	}

	return args, warnings
}

// hdrColorArgs resolves the color metadata arguments for HDR carriage.
func hdrColorArgs(backend registry.Backend, source ffprobe.ColorInfo) (args []string, warnings []string) {
	if backend == registry.BackendSoftware {
		// Software re-encoding passes source color metadata through.
		return copyColors.args(), nil
	}

	// Hardware encoders cannot copy color metadata; classify the source
	// and emit the canonical set for that standard.
	colors := hdr10Colors
	switch source.Classify() {
	case ffprobe.HLG:
		if backend == registry.BackendNvidia {
			// NVENC has poor HLG support; narrow to HDR10 signaling.
			warnings = append(warnings,
				"HLG content detected; NVENC has limited HLG support, using HDR10 parameters for better compatibility")
		} else {
			colors = hlgColors
		}
	case ffprobe.HDR10, ffprobe.HDRUnknown:
		// hdr10Colors already selected.
	}

	return colors.args(), warnings
}
