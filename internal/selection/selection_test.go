package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recode/internal/errors"
	"recode/internal/hwdetect"
	"recode/internal/registry"
)

func capsWith(reg *registry.Registry, backend registry.Backend, confirmed map[registry.Codec][]registry.Backend) hwdetect.Capabilities {
	perCodec := make(map[registry.Codec]map[registry.Backend]bool)
	for _, codec := range reg.Codecs() {
		perCodec[codec] = map[registry.Backend]bool{registry.BackendSoftware: true}
	}
	for codec, backends := range confirmed {
		for _, b := range backends {
			perCodec[codec][b] = true
		}
	}
	return hwdetect.Capabilities{Backend: backend, PerCodec: perCodec}
}

func TestSelectPrefersConfirmedHardware(t *testing.T) {
	reg := registry.NewDefault()
	caps := capsWith(reg, registry.BackendNvidia, map[registry.Codec][]registry.Backend{
		registry.CodecHEVC: {registry.BackendNvidia},
	})
	sel := NewWithCapabilities(reg, caps)

	got, err := sel.Select(registry.CodecHEVC, true)
	require.NoError(t, err)
	assert.Equal(t, registry.BackendNvidia, got.Backend)
	assert.Equal(t, "hevc_nvenc", got.Encoder())
}

func TestSelectRechecksPerCodecAvailability(t *testing.T) {
	reg := registry.NewDefault()
	// Nvidia detected globally, but only confirmed for hevc.
	caps := capsWith(reg, registry.BackendNvidia, map[registry.Codec][]registry.Backend{
		registry.CodecHEVC: {registry.BackendNvidia},
	})
	sel := NewWithCapabilities(reg, caps)

	got, err := sel.Select(registry.CodecH264, true)
	require.NoError(t, err)
	assert.Equal(t, registry.BackendSoftware, got.Backend)
	assert.Equal(t, "libx264", got.Encoder())
}

func TestSelectHonorsPreferHardwareFalse(t *testing.T) {
	reg := registry.NewDefault()
	caps := capsWith(reg, registry.BackendNvidia, map[registry.Codec][]registry.Backend{
		registry.CodecHEVC: {registry.BackendNvidia},
	})
	sel := NewWithCapabilities(reg, caps)

	got, err := sel.Select(registry.CodecHEVC, false)
	require.NoError(t, err)
	assert.Equal(t, registry.BackendSoftware, got.Backend)
}

func TestSelectDegradesOnRegistryGap(t *testing.T) {
	reg := registry.NewDefault()
	// AMD confirmed for av1 by the probe, but the registry carries no
	// av1/amd parameter set.
	caps := capsWith(reg, registry.BackendAMD, map[registry.Codec][]registry.Backend{
		registry.CodecAV1: {registry.BackendAMD},
	})
	sel := NewWithCapabilities(reg, caps)

	got, err := sel.Select(registry.CodecAV1, true)
	require.NoError(t, err)
	assert.Equal(t, registry.BackendSoftware, got.Backend)
	assert.Equal(t, "libsvtav1", got.Encoder())
}

func TestSelectUnsupportedCodec(t *testing.T) {
	reg := registry.NewDefault()
	sel := NewWithCapabilities(reg, capsWith(reg, registry.BackendSoftware, nil))

	_, err := sel.Select(registry.Codec("prores"), true)
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedCodec(err))
}

func TestSelectionAlwaysWithinRegisteredBackends(t *testing.T) {
	reg := registry.NewDefault()

	// For every detected backend and every registered codec, the
	// selection must land on a backend registered for that codec.
	for _, detected := range []registry.Backend{
		registry.BackendSoftware, registry.BackendNvidia, registry.BackendAMD, registry.BackendIntel,
	} {
		confirmed := map[registry.Codec][]registry.Backend{}
		if detected.IsHardware() {
			for _, codec := range reg.Codecs() {
				confirmed[codec] = []registry.Backend{detected}
			}
		}
		sel := NewWithCapabilities(reg, capsWith(reg, detected, confirmed))

		for _, codec := range reg.Codecs() {
			got, err := sel.Select(codec, true)
			require.NoError(t, err)
			assert.Contains(t, reg.Backends(codec), got.Backend,
				"detected=%s codec=%s", detected, codec)
		}
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	reg := registry.NewDefault()
	caps := capsWith(reg, registry.BackendIntel, map[registry.Codec][]registry.Backend{
		registry.CodecHEVC: {registry.BackendIntel},
	})
	sel := NewWithCapabilities(reg, caps)

	first, err := sel.Select(registry.CodecHEVC, true)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := sel.Select(registry.CodecHEVC, true)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
