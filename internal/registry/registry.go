// Package registry holds the static codec/backend capability table.
//
// Each (codec, backend) pair carries its own strongly-typed parameter
// record because the external engine's flags are backend-specific;
// mixing vocabularies between backends is an error, not a merge.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"recode/internal/errors"
)

// Codec identifies a target video codec by its ffprobe codec_name key.
type Codec string

const (
	CodecHEVC Codec = "hevc"
	CodecH264 Codec = "h264"
	CodecAV1  Codec = "av1"
)

// String returns the codec key.
func (c Codec) String() string { return string(c) }

// ParseCodec normalizes a user-supplied codec name. Common aliases map
// onto the canonical keys; unknown names are unsupported-codec errors.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "hevc", "h265", "h.265", "x265":
		return CodecHEVC, nil
	case "h264", "h.264", "avc", "x264":
		return CodecH264, nil
	case "av1":
		return CodecAV1, nil
	default:
		return "", errors.NewUnsupportedCodecError(s)
	}
}

// Backend identifies an encoding implementation family.
type Backend int

const (
	// BackendSoftware is the universal CPU fallback.
	BackendSoftware Backend = iota
	// BackendNvidia is the NVENC hardware path.
	BackendNvidia
	// BackendAMD is the AMF hardware path.
	BackendAMD
	// BackendIntel is the QSV hardware path.
	BackendIntel
)

// String returns a string representation of the backend.
func (b Backend) String() string {
	switch b {
	case BackendSoftware:
		return "software"
	case BackendNvidia:
		return "nvidia"
	case BackendAMD:
		return "amd"
	case BackendIntel:
		return "intel"
	default:
		return "unknown"
	}
}

// IsHardware reports whether the backend uses hardware acceleration.
func (b Backend) IsHardware() bool {
	return b != BackendSoftware
}

// HardwareBackends lists the hardware backends in detection priority order.
var HardwareBackends = []Backend{BackendNvidia, BackendAMD, BackendIntel}

// ParameterSet is the per-backend encoder parameter record. QualityArgs
// emits the quality and rate-control arguments; quality overrides only
// the quality-bearing value, never the rest of the record.
type ParameterSet interface {
	// Encoder returns the ffmpeg encoder identifier (e.g. hevc_nvenc).
	Encoder() string
	// Backend returns the backend this parameter set belongs to.
	Backend() Backend
	// QualityArgs returns quality and rate-control arguments. A nil
	// quality uses the record's default.
	QualityArgs(quality *int) []string
}

// NvencParams holds NVENC encoder parameters.
type NvencParams struct {
	EncoderName string
	Preset      string
	RateControl string
	CQ          int
	BRefMode    string
	SpatialAQ   int
	TemporalAQ  int
}

func (p NvencParams) Encoder() string  { return p.EncoderName }
func (p NvencParams) Backend() Backend { return BackendNvidia }

func (p NvencParams) QualityArgs(quality *int) []string {
	cq := p.CQ
	if quality != nil {
		cq = *quality
	}
	return []string{
		"-preset", p.Preset,
		"-rc", p.RateControl,
		"-cq", fmt.Sprintf("%d", cq),
		"-b_ref_mode", p.BRefMode,
		"-spatial_aq", fmt.Sprintf("%d", p.SpatialAQ),
		"-temporal_aq", fmt.Sprintf("%d", p.TemporalAQ),
	}
}

// AMFParams holds AMD AMF encoder parameters. The same QP value is
// applied to I, P, and B frames.
type AMFParams struct {
	EncoderName string
	Quality     string
	RateControl string
	QP          int
}

func (p AMFParams) Encoder() string  { return p.EncoderName }
func (p AMFParams) Backend() Backend { return BackendAMD }

func (p AMFParams) QualityArgs(quality *int) []string {
	qp := p.QP
	if quality != nil {
		qp = *quality
	}
	q := fmt.Sprintf("%d", qp)
	return []string{
		"-quality", p.Quality,
		"-rc", p.RateControl,
		"-qp_i", q,
		"-qp_p", q,
		"-qp_b", q,
	}
}

// QSVParams holds Intel QuickSync encoder parameters.
type QSVParams struct {
	EncoderName   string
	Preset        string
	GlobalQuality int
	LookAhead     int
}

func (p QSVParams) Encoder() string  { return p.EncoderName }
func (p QSVParams) Backend() Backend { return BackendIntel }

func (p QSVParams) QualityArgs(quality *int) []string {
	gq := p.GlobalQuality
	if quality != nil {
		gq = *quality
	}
	return []string{
		"-preset", p.Preset,
		"-global_quality", fmt.Sprintf("%d", gq),
		"-look_ahead", fmt.Sprintf("%d", p.LookAhead),
	}
}

// SoftwareParams holds CPU encoder parameters.
type SoftwareParams struct {
	EncoderName string
	Preset      string
	CRF         int
	// ExtraParams is an encoder-private parameter string passed through
	// verbatim (e.g. -x265-params). Empty means none.
	ExtraFlag   string
	ExtraParams string
}

func (p SoftwareParams) Encoder() string  { return p.EncoderName }
func (p SoftwareParams) Backend() Backend { return BackendSoftware }

func (p SoftwareParams) QualityArgs(quality *int) []string {
	crf := p.CRF
	if quality != nil {
		crf = *quality
	}
	args := []string{
		"-preset", p.Preset,
		"-crf", fmt.Sprintf("%d", crf),
	}
	if p.ExtraFlag != "" && p.ExtraParams != "" {
		args = append(args, p.ExtraFlag, p.ExtraParams)
	}
	return args
}

// entry is one output codec row in the registry.
type entry struct {
	displayName string
	hdrCapable  bool
	backends    map[Backend]ParameterSet
}

// Registry is the static codec/backend capability table. Pure data;
// fallback decisions belong to the selector, not here.
type Registry struct {
	codecs map[Codec]entry
}

// Default quality values shared by the built-in parameter sets.
const (
	DefaultQuality = 23
	DefaultPreset  = "medium"
)

// NewDefault builds the built-in registry covering hevc, h264, and av1.
func NewDefault() *Registry {
	return &Registry{codecs: map[Codec]entry{
		CodecHEVC: {
			displayName: "HEVC (H.265)",
			hdrCapable:  true,
			backends: map[Backend]ParameterSet{
				BackendNvidia: NvencParams{
					EncoderName: "hevc_nvenc",
					Preset:      "p4",
					RateControl: "vbr",
					CQ:          DefaultQuality,
					BRefMode:    "middle",
					SpatialAQ:   1,
					TemporalAQ:  1,
				},
				BackendAMD: AMFParams{
					EncoderName: "hevc_amf",
					Quality:     "balanced",
					RateControl: "cqp",
					QP:          DefaultQuality,
				},
				BackendIntel: QSVParams{
					EncoderName:   "hevc_qsv",
					Preset:        DefaultPreset,
					GlobalQuality: DefaultQuality,
					LookAhead:     1,
				},
				BackendSoftware: SoftwareParams{
					EncoderName: "libx265",
					Preset:      DefaultPreset,
					CRF:         DefaultQuality,
					ExtraFlag:   "-x265-params",
					ExtraParams: "hdr-opt=1:repeat-headers=1:colorprim=bt2020:transfer=smpte2084:colormatrix=bt2020nc",
				},
			},
		},
		CodecH264: {
			displayName: "H.264 (AVC)",
			hdrCapable:  false,
			backends: map[Backend]ParameterSet{
				BackendNvidia: NvencParams{
					EncoderName: "h264_nvenc",
					Preset:      "p4",
					RateControl: "vbr",
					CQ:          DefaultQuality,
					BRefMode:    "middle",
					SpatialAQ:   1,
					TemporalAQ:  1,
				},
				BackendAMD: AMFParams{
					EncoderName: "h264_amf",
					Quality:     "balanced",
					RateControl: "cqp",
					QP:          DefaultQuality,
				},
				BackendIntel: QSVParams{
					EncoderName:   "h264_qsv",
					Preset:        DefaultPreset,
					GlobalQuality: DefaultQuality,
					LookAhead:     1,
				},
				BackendSoftware: SoftwareParams{
					EncoderName: "libx264",
					Preset:      DefaultPreset,
					CRF:         DefaultQuality,
				},
			},
		},
		CodecAV1: {
			displayName: "AV1",
			hdrCapable:  true,
			// AMD has no registered AV1 parameter set; the selector
			// degrades to software for that gap.
			backends: map[Backend]ParameterSet{
				BackendNvidia: NvencParams{
					EncoderName: "av1_nvenc",
					Preset:      "p4",
					RateControl: "vbr",
					CQ:          DefaultQuality,
					BRefMode:    "middle",
					SpatialAQ:   1,
					TemporalAQ:  1,
				},
				BackendIntel: QSVParams{
					EncoderName:   "av1_qsv",
					Preset:        DefaultPreset,
					GlobalQuality: DefaultQuality,
					LookAhead:     1,
				},
				BackendSoftware: SoftwareParams{
					EncoderName: "libsvtav1",
					Preset:      "6",
					CRF:         DefaultQuality,
				},
			},
		},
	}}
}

// Lookup returns the parameter set registered for (codec, backend).
// An unregistered codec is a configuration error; a registered codec
// with no parameter set for the backend returns ErrNotRegistered.
func (r *Registry) Lookup(codec Codec, backend Backend) (ParameterSet, error) {
	e, ok := r.codecs[codec]
	if !ok {
		return nil, errors.NewUnsupportedCodecError(string(codec))
	}
	params, ok := e.backends[backend]
	if !ok {
		return nil, fmt.Errorf("no %s parameter set registered for codec %s", backend, codec)
	}
	return params, nil
}

// Supports reports whether the codec is registered for output.
func (r *Registry) Supports(codec Codec) bool {
	_, ok := r.codecs[codec]
	return ok
}

// HDRCapable reports whether the codec can carry HDR color metadata.
func (r *Registry) HDRCapable(codec Codec) bool {
	e, ok := r.codecs[codec]
	return ok && e.hdrCapable
}

// DisplayName returns the human-readable codec name.
func (r *Registry) DisplayName(codec Codec) string {
	e, ok := r.codecs[codec]
	if !ok {
		return string(codec)
	}
	return e.displayName
}

// Codecs enumerates all codecs registered for output, sorted by key.
func (r *Registry) Codecs() []Codec {
	out := make([]Codec, 0, len(r.codecs))
	for c := range r.codecs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Backends enumerates all backends registered for a codec, software last.
func (r *Registry) Backends(codec Codec) []Backend {
	e, ok := r.codecs[codec]
	if !ok {
		return nil
	}
	var out []Backend
	for _, b := range HardwareBackends {
		if _, ok := e.backends[b]; ok {
			out = append(out, b)
		}
	}
	if _, ok := e.backends[BackendSoftware]; ok {
		out = append(out, BackendSoftware)
	}
	return out
}

// HardwareEncoder returns the ffmpeg encoder identifier used to probe
// availability of (codec, backend) in the engine's capability listing.
func (r *Registry) HardwareEncoder(codec Codec, backend Backend) (string, bool) {
	e, ok := r.codecs[codec]
	if !ok {
		return "", false
	}
	params, ok := e.backends[backend]
	if !ok {
		return "", false
	}
	return params.Encoder(), true
}

// ParseCodec validates a codec key against the registry.
func (r *Registry) ParseCodec(s string) (Codec, error) {
	c := Codec(s)
	if !r.Supports(c) {
		return "", errors.NewUnsupportedCodecError(s)
	}
	return c, nil
}
