// Package selection picks the encoder configuration for a conversion.
package selection

import (
	"context"

	"recode/internal/hwdetect"
	"recode/internal/registry"
)

// Selection is the (backend, parameter set) pair resolved for one
// conversion request. Derived, never persisted.
type Selection struct {
	Backend registry.Backend
	Params  registry.ParameterSet
}

// Encoder returns the ffmpeg encoder identifier for the selection.
func (s Selection) Encoder() string { return s.Params.Encoder() }

// Selector resolves encoder selections against capabilities detected
// once at construction. Selections are deterministic for fixed
// capabilities and registry contents; a refresh means constructing a
// new Selector.
type Selector struct {
	reg  *registry.Registry
	caps hwdetect.Capabilities
}

// New detects hardware capabilities and returns a selector bound to them.
func New(ctx context.Context, reg *registry.Registry) *Selector {
	return NewWithCapabilities(reg, hwdetect.Detect(ctx, reg))
}

// NewWithCapabilities builds a selector from pre-computed capabilities.
func NewWithCapabilities(reg *registry.Registry, caps hwdetect.Capabilities) *Selector {
	return &Selector{reg: reg, caps: caps}
}

// Capabilities returns the detected capabilities backing this selector.
func (s *Selector) Capabilities() hwdetect.Capabilities { return s.caps }

// Registry returns the registry backing this selector.
func (s *Selector) Registry() *registry.Registry { return s.reg }

// Select picks the best backend for the codec. The globally detected
// hardware backend is used only when the per-codec probe confirmed it
// and the registry carries a parameter set for the pair; otherwise the
// selection degrades to software. An unregistered codec is an error.
func (s *Selector) Select(codec registry.Codec, preferHardware bool) (Selection, error) {
	if !s.reg.Supports(codec) {
		_, err := s.reg.Lookup(codec, registry.BackendSoftware)
		return Selection{}, err
	}

	backend := registry.BackendSoftware
	if preferHardware && s.caps.Backend.IsHardware() && s.caps.Available(codec, s.caps.Backend) {
		backend = s.caps.Backend
	}

	params, err := s.reg.Lookup(codec, backend)
	if err != nil && backend.IsHardware() {
		// Registry gap for this hardware backend; degrade to software.
		backend = registry.BackendSoftware
		params, err = s.reg.Lookup(codec, backend)
	}
	if err != nil {
		return Selection{}, err
	}

	return Selection{Backend: backend, Params: params}, nil
}
