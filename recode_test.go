package recode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recode/internal/config"
)

func TestNewDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, CodecHEVC, c.config.TargetCodec)
	assert.True(t, c.config.PreserveHDR)
	assert.True(t, c.config.PreferHardware)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(WithQuality(0))
	assert.ErrorIs(t, err, config.ErrInvalidQuality)

	_, err = New(WithTargetCodec(Codec("vp9")))
	assert.ErrorIs(t, err, config.ErrInvalidCodec)

	c, err := New(
		WithTargetCodec(CodecAV1),
		WithQuality(30),
		WithPreserveHDR(false),
		WithPreferHardware(false),
		WithOverwrite(true),
	)
	require.NoError(t, err)
	assert.Equal(t, CodecAV1, c.config.TargetCodec)
	require.NotNil(t, c.config.Quality)
	assert.Equal(t, 30, *c.config.Quality)
	assert.False(t, c.config.PreserveHDR)
	assert.False(t, c.config.PreferHardware)
	assert.True(t, c.config.Overwrite)
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		input string
		want  Codec
	}{
		{"hevc", CodecHEVC},
		{"H265", CodecHEVC},
		{"h264", CodecH264},
		{"AVC", CodecH264},
		{"av1", CodecAV1},
	}
	for _, tt := range tests {
		got, err := ParseCodec(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCodec("mpeg2")
	assert.Error(t, err)
}
