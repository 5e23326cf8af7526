package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const fullLine = `frame= 1234 fps= 25 q=28.0 size=    1024kB time=00:00:49.36 bitrate= 170.1kbits/s speed=1.05x`

func TestParseLineFullProgress(t *testing.T) {
	var p Progress
	ParseLine(fullLine, &p, 0)

	assert.Equal(t, uint64(1234), p.Frame)
	assert.InDelta(t, 25, p.FPS, 0.05)
	assert.Equal(t, "170.1kbits/s", p.Bitrate)
	assert.Equal(t, "1024kB", p.Size)
	assert.Equal(t, "00:00:49", p.Clock)
	assert.InDelta(t, 49.36, p.ElapsedSecs, 0.001)
	assert.InDelta(t, 1.05, p.Speed, 0.001)
	assert.Zero(t, p.Percent) // unknown duration leaves percent untouched
}

func TestParseLinePercentage(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		duration    float64
		wantPercent float32
	}{
		{
			name:        "halfway",
			line:        "frame=  100 fps= 30 time=00:00:50.00 speed=1.0x",
			duration:    100,
			wantPercent: 50,
		},
		{
			name:        "clamped at 100",
			line:        "frame=  100 fps= 30 time=00:02:00.00 speed=1.0x",
			duration:    100,
			wantPercent: 100,
		},
		{
			name:        "elapsed equals duration",
			line:        "frame=  100 fps= 30 time=00:01:40.00 speed=1.0x",
			duration:    100,
			wantPercent: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Progress
			ParseLine(tt.line, &p, tt.duration)
			assert.InDelta(t, tt.wantPercent, p.Percent, 0.01)
		})
	}
}

func TestParseLineIgnoresNonProgressLines(t *testing.T) {
	lines := []string{
		"ffmpeg version 6.1 Copyright (c) 2000-2023 the FFmpeg developers",
		"Stream mapping:",
		"frame=  100 fps= 30 speed=1.0x", // no time marker
		"time=00:00:10.00 bitrate= 120kbits/s", // no frame marker
		"[hevc_nvenc @ 0x55] InitializeEncoder failed: invalid param (8)",
	}

	for _, line := range lines {
		p := Progress{Frame: 42, FPS: 24, Clock: "00:00:01"}
		before := p
		ParseLine(line, &p, 100)
		assert.Equal(t, before, p, "line %q should leave snapshot unchanged", line)
	}
}

func TestParseLineMalformedFieldsLeaveOthersIntact(t *testing.T) {
	var p Progress
	ParseLine("frame= abc fps= 12.5 time=00:00:10.00 speed=zx", &p, 0)

	assert.Zero(t, p.Frame)
	assert.InDelta(t, 12.5, p.FPS, 0.05)
	assert.InDelta(t, 10.0, p.ElapsedSecs, 0.001)
	assert.Zero(t, p.Speed)
}

func TestParseLineClockFormatting(t *testing.T) {
	var p Progress
	ParseLine("frame= 10 time=01:02:03.99 speed=1x", &p, 0)
	assert.Equal(t, "01:02:03", p.Clock)
}

func TestIsProgressLine(t *testing.T) {
	assert.True(t, IsProgressLine(fullLine))
	assert.False(t, IsProgressLine("frame= 10 fps=1"))
	assert.False(t, IsProgressLine("time=00:00:01.00"))
	assert.False(t, IsProgressLine(""))
}
