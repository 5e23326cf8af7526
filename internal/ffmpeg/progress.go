// Package ffmpeg builds and supervises encoding engine invocations.
package ffmpeg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Progress accumulates parsed progress state for one conversion attempt.
// Fields update independently as diagnostic lines arrive; a malformed
// field leaves the previous value in place.
type Progress struct {
	Frame       uint64
	FPS         float32
	Bitrate     string
	Size        string
	Clock       string // elapsed media time as zero-padded HH:MM:SS
	ElapsedSecs float64
	Speed       float32
	Percent     float32
}

// ProgressCallback is called with progress updates during encoding.
type ProgressCallback func(Progress)

var (
	timeRegex    = regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
	bitrateRegex = regexp.MustCompile(`bitrate=\s*([\d.]+\w*bits/s)`)
	sizeRegex    = regexp.MustCompile(`size=\s*([\d.]+\w*B)`)
)

// IsProgressLine reports whether a diagnostic line carries progress.
// Lines without both a frame counter and a time marker are banners or
// warnings and are ignored entirely.
func IsProgressLine(line string) bool {
	return strings.Contains(line, "frame=") && strings.Contains(line, "time=")
}

// ParseLine extracts progress fields from a diagnostic line into p.
// Each field is optional and independent; parsing never fails.
func ParseLine(line string, p *Progress, totalDuration float64) {
	if !IsProgressLine(line) {
		return
	}

	if frame, ok := scanUint(line, "frame="); ok {
		p.Frame = frame
	}
	if fps, ok := scanFloat(line, "fps="); ok {
		p.FPS = float32(fps)
	}
	if m := bitrateRegex.FindStringSubmatch(line); len(m) == 2 {
		p.Bitrate = m[1]
	}
	if m := sizeRegex.FindStringSubmatch(line); len(m) == 2 {
		p.Size = m[1]
	}
	if speed, ok := scanSpeed(line); ok {
		p.Speed = float32(speed)
	}

	if m := timeRegex.FindStringSubmatch(line); len(m) == 5 {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds, _ := strconv.Atoi(m[3])
		centis, _ := strconv.Atoi(m[4])

		p.ElapsedSecs = float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(centis)/100
		p.Clock = formatClock(p.ElapsedSecs)

		if totalDuration > 0 {
			percent := float32(p.ElapsedSecs / totalDuration * 100)
			if percent > 100 {
				percent = 100
			}
			p.Percent = percent
		}
	}
}

// scanUint parses the unsigned integer following marker.
func scanUint(line, marker string) (uint64, bool) {
	token, ok := scanToken(line, marker)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(token, 10, 64)
	return v, err == nil
}

// scanFloat parses the decimal following marker.
func scanFloat(line, marker string) (float64, bool) {
	token, ok := scanToken(line, marker)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	return v, err == nil
}

// scanSpeed parses the decimal preceding the trailing x after speed=.
func scanSpeed(line string) (float64, bool) {
	token, ok := scanToken(line, "speed=")
	if !ok || !strings.HasSuffix(token, "x") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(token, "x"), 64)
	return v, err == nil
}

// scanToken returns the whitespace-delimited token following marker.
func scanToken(line, marker string) (string, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimLeft(line[idx+len(marker):], " ")
	if rest == "" {
		return "", false
	}
	if end := strings.IndexAny(rest, " \t\r\n"); end >= 0 {
		rest = rest[:end]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

func formatClock(seconds float64) string {
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
