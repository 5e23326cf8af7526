package hwdetect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"recode/internal/registry"
)

const nvidiaListing = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC
 V....D h264_nvenc           NVIDIA NVENC H.264 encoder (codec h264)
 V....D libx265              libx265 H.265 / HEVC
 V....D hevc_nvenc           NVIDIA NVENC hevc encoder (codec hevc)
 V....D libsvtav1            SVT-AV1(Scalable Video Technology for AV1) encoder
`

const intelOnlyHEVCListing = `Encoders:
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC
 V....D libx265              libx265 H.265 / HEVC
 V....D hevc_qsv             HEVC (Intel Quick Sync Video acceleration)
`

func TestParseEncoderListNvidia(t *testing.T) {
	reg := registry.NewDefault()
	caps := ParseEncoderList(nvidiaListing, reg)

	assert.Equal(t, registry.BackendNvidia, caps.Backend)
	assert.True(t, caps.Available(registry.CodecHEVC, registry.BackendNvidia))
	assert.True(t, caps.Available(registry.CodecH264, registry.BackendNvidia))
	assert.False(t, caps.Available(registry.CodecAV1, registry.BackendNvidia))
	assert.False(t, caps.Available(registry.CodecHEVC, registry.BackendIntel))
}

func TestParseEncoderListPerCodecDiffers(t *testing.T) {
	reg := registry.NewDefault()
	caps := ParseEncoderList(intelOnlyHEVCListing, reg)

	// Intel is the global backend but only confirmed for hevc; the
	// selector must not assume h264_qsv works just because hevc_qsv does.
	assert.Equal(t, registry.BackendIntel, caps.Backend)
	assert.True(t, caps.Available(registry.CodecHEVC, registry.BackendIntel))
	assert.False(t, caps.Available(registry.CodecH264, registry.BackendIntel))
	assert.False(t, caps.Available(registry.CodecAV1, registry.BackendIntel))
}

func TestParseEncoderListSoftwareOnly(t *testing.T) {
	reg := registry.NewDefault()
	caps := ParseEncoderList("Encoders:\n V....D libx264\n V....D libx265\n", reg)

	assert.Equal(t, registry.BackendSoftware, caps.Backend)
	for _, codec := range reg.Codecs() {
		assert.True(t, caps.Available(codec, registry.BackendSoftware))
		for _, hw := range registry.HardwareBackends {
			assert.False(t, caps.Available(codec, hw))
		}
	}
}

func TestDetectDegradesWhenProbeFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context makes the probe subprocess fail immediately.
	reg := registry.NewDefault()
	caps := Detect(ctx, reg)

	assert.True(t, caps.Degraded)
	assert.Equal(t, registry.BackendSoftware, caps.Backend)
	assert.True(t, caps.Available(registry.CodecHEVC, registry.BackendSoftware))
}

func TestParseEncoderListNeverDegraded(t *testing.T) {
	reg := registry.NewDefault()

	assert.False(t, ParseEncoderList(nvidiaListing, reg).Degraded)
	assert.False(t, ParseEncoderList("Encoders:\n V....D libx264\n", reg).Degraded)
}

func TestSoftwareAlwaysAvailableForRegisteredCodecs(t *testing.T) {
	reg := registry.NewDefault()
	caps := ParseEncoderList(nvidiaListing, reg)

	assert.True(t, caps.Available(registry.CodecAV1, registry.BackendSoftware))
	assert.False(t, caps.Available(registry.Codec("prores"), registry.BackendSoftware))
}
