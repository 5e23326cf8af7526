package ffprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hdr10Fixture = `{
	"format": {"duration": "7200.512000"},
	"streams": [
		{
			"codec_type": "video",
			"codec_name": "av1",
			"color_primaries": "bt2020",
			"color_transfer": "smpte2084",
			"color_space": "bt2020nc",
			"color_range": "tv",
			"side_data_list": [
				{"side_data_type": "Mastering display metadata"},
				{"side_data_type": "Content light level metadata"}
			]
		},
		{"codec_type": "audio", "codec_name": "eac3"}
	]
}`

const hlgFixture = `{
	"format": {},
	"streams": [
		{
			"codec_type": "video",
			"codec_name": "hevc",
			"duration": "1800.041667",
			"color_primaries": "bt2020",
			"color_transfer": "arib-std-b67",
			"color_space": "bt2020nc",
			"color_range": "tv"
		}
	]
}`

const sdrFixture = `{
	"format": {"duration": "120.0"},
	"streams": [
		{
			"codec_type": "video",
			"codec_name": "vp9",
			"color_primaries": "bt709",
			"color_transfer": "bt709",
			"color_space": "bt709"
		}
	]
}`

func TestBuildMediaInfoHDR10(t *testing.T) {
	probe, err := parseOutput([]byte(hdr10Fixture))
	require.NoError(t, err)

	info := buildMediaInfo(probe)
	assert.Equal(t, "av1", info.VideoCodec)
	assert.InDelta(t, 7200.512, info.DurationSecs, 0.001)
	assert.True(t, info.HasHDR)
	assert.Equal(t, "bt2020", info.Color.Primaries)
	assert.Equal(t, "smpte2084", info.Color.Transfer)
	assert.Equal(t, "tv", info.Color.Range)
	assert.Equal(t, HDR10, info.Color.Classify())
}

func TestBuildMediaInfoHLGStreamDurationFallback(t *testing.T) {
	probe, err := parseOutput([]byte(hlgFixture))
	require.NoError(t, err)

	info := buildMediaInfo(probe)
	assert.Equal(t, "hevc", info.VideoCodec)
	assert.InDelta(t, 1800.042, info.DurationSecs, 0.001)
	assert.True(t, info.HasHDR)
	assert.Equal(t, HLG, info.Color.Classify())
}

func TestBuildMediaInfoSDR(t *testing.T) {
	probe, err := parseOutput([]byte(sdrFixture))
	require.NoError(t, err)

	info := buildMediaInfo(probe)
	assert.Equal(t, "vp9", info.VideoCodec)
	assert.False(t, info.HasHDR)
	assert.Equal(t, HDRUnknown, info.Color.Classify())
}

func TestBuildMediaInfoNoVideoStream(t *testing.T) {
	probe, err := parseOutput([]byte(`{"format": {"duration": "10"}, "streams": [{"codec_type": "audio", "codec_name": "flac"}]}`))
	require.NoError(t, err)

	info := buildMediaInfo(probe)
	assert.Empty(t, info.VideoCodec)
	assert.False(t, info.HasHDR)
}

func TestParseOutputInvalidJSON(t *testing.T) {
	_, err := parseOutput([]byte("not json"))
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		transfer string
		want     HDRType
	}{
		{"arib-std-b67", HLG},
		{"hlg", HLG},
		{"HLG", HLG},
		{"smpte2084", HDR10},
		{"pq", HDR10},
		{"smpte2084-pq", HDR10},
		{"bt709", HDRUnknown},
		{"", HDRUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.transfer, func(t *testing.T) {
			got := ColorInfo{Transfer: tt.transfer}.Classify()
			assert.Equal(t, tt.want, got)
		})
	}
}
