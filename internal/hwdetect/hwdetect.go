// Package hwdetect probes the encoding engine for usable hardware backends.
//
// Detection runs the engine's encoder listing once with a bounded timeout
// and substring-checks the free-text output for known encoder identifiers.
// Any probe failure degrades to software-only capabilities; detection must
// never block conversion.
package hwdetect

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"recode/internal/registry"
)

// ProbeTimeout bounds the encoder listing subprocess.
const ProbeTimeout = 10 * time.Second

// Capabilities holds the detected backend availability. Computed once and
// treated as read-only afterwards; re-detection means calling Detect again.
type Capabilities struct {
	// Backend is the globally detected hardware backend, or
	// BackendSoftware when no hardware path is usable.
	Backend registry.Backend
	// PerCodec maps each registered codec to the backends whose encoder
	// identifier appeared in the capability listing. Software is always
	// present.
	PerCodec map[registry.Codec]map[registry.Backend]bool
	// Degraded is set when the probe itself failed and software-only was
	// assumed, as opposed to a successful probe finding no hardware.
	Degraded bool
}

// Available reports whether the backend was confirmed for the codec.
// Software is available for every registered codec.
func (c Capabilities) Available(codec registry.Codec, backend registry.Backend) bool {
	if backend == registry.BackendSoftware {
		_, ok := c.PerCodec[codec]
		return ok
	}
	return c.PerCodec[codec][backend]
}

// Detect probes the engine's encoder list and returns the capabilities.
// On timeout, missing executable, or non-zero exit the result is
// software-only with Degraded set; conversion proceeds either way.
func Detect(ctx context.Context, reg *registry.Registry) Capabilities {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.Output()
	if err != nil {
		caps := softwareOnly(reg)
		caps.Degraded = true
		return caps
	}
	return ParseEncoderList(string(out), reg)
}

// ParseEncoderList builds capabilities from the engine's encoder listing
// text. Exposed separately so detection is testable without a subprocess.
func ParseEncoderList(listing string, reg *registry.Registry) Capabilities {
	caps := softwareOnly(reg)

	for _, codec := range reg.Codecs() {
		for _, backend := range registry.HardwareBackends {
			encoder, ok := reg.HardwareEncoder(codec, backend)
			if !ok {
				continue
			}
			if strings.Contains(listing, encoder) {
				caps.PerCodec[codec][backend] = true
			}
		}
	}

	// The global backend is the first hardware family confirmed for any
	// codec, in priority order. Backend availability still differs per
	// codec, so callers re-check PerCodec before selecting.
	for _, backend := range registry.HardwareBackends {
		for _, codec := range reg.Codecs() {
			if caps.PerCodec[codec][backend] {
				caps.Backend = backend
				return caps
			}
		}
	}
	return caps
}

func softwareOnly(reg *registry.Registry) Capabilities {
	perCodec := make(map[registry.Codec]map[registry.Backend]bool)
	for _, codec := range reg.Codecs() {
		perCodec[codec] = map[registry.Backend]bool{
			registry.BackendSoftware: true,
		}
	}
	return Capabilities{
		Backend:  registry.BackendSoftware,
		PerCodec: perCodec,
	}
}
