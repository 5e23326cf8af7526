package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recode/internal/registry"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig("/media/in.mkv", "/media/out")

	assert.Equal(t, registry.CodecHEVC, c.TargetCodec)
	assert.Nil(t, c.Quality)
	assert.True(t, c.PreserveHDR)
	assert.True(t, c.PreferHardware)
	assert.False(t, c.Overwrite)
	require.NoError(t, c.Validate())
}

func TestValidateQualityRange(t *testing.T) {
	tests := []struct {
		name    string
		quality int
		wantErr bool
	}{
		{name: "lower bound", quality: 1},
		{name: "upper bound", quality: 51},
		{name: "default value", quality: 23},
		{name: "zero rejected", quality: 0, wantErr: true},
		{name: "above range rejected", quality: 52, wantErr: true},
		{name: "negative rejected", quality: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig("in.mkv", "out")
			c.Quality = &tt.quality
			err := c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuality)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTargetCodec(t *testing.T) {
	c := NewConfig("in.mkv", "out")
	c.TargetCodec = registry.Codec("vp9")
	assert.ErrorIs(t, c.Validate(), ErrInvalidCodec)
}

func TestRequireInput(t *testing.T) {
	c := NewConfig("", "out")
	assert.NoError(t, c.Validate())
	assert.ErrorIs(t, c.RequireInput(), ErrMissingInput)

	c.InputPath = "in.mkv"
	assert.NoError(t, c.RequireInput())
}

func TestEffectiveQuality(t *testing.T) {
	c := NewConfig("in.mkv", "out")
	assert.Equal(t, registry.DefaultQuality, c.EffectiveQuality())

	q := 30
	c.Quality = &q
	assert.Equal(t, 30, c.EffectiveQuality())
}
