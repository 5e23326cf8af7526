package reporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	return events
}

func TestJSONReporterEmitsNDJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.Detection(DetectionSummary{Hostname: "box", Backend: "nvidia", Hardware: true})
	r.Warning("heads up")
	r.ConversionComplete(ConversionSummary{
		InputFile:    "in.mkv",
		OriginalSize: 200,
		EncodedSize:  100,
		TotalTime:    90 * time.Second,
	})

	events := decodeEvents(t, &buf)
	require.Len(t, events, 3)

	assert.Equal(t, "detection", events[0]["type"])
	assert.Equal(t, "nvidia", events[0]["backend"])
	assert.Equal(t, true, events[0]["hardware"])

	assert.Equal(t, "warning", events[1]["type"])
	assert.Equal(t, "heads up", events[1]["message"])

	assert.Equal(t, "conversion_complete", events[2]["type"])
	assert.InDelta(t, 50, events[2]["size_reduction_percent"], 0.01)
	assert.EqualValues(t, 90, events[2]["duration_seconds"])
}

func TestJSONReporterProgressThrottling(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)
	r.ConversionStarted()

	// Repeated updates inside the same percent bucket are suppressed.
	r.ConversionProgress(ProgressSnapshot{Percent: 10.1})
	r.ConversionProgress(ProgressSnapshot{Percent: 10.5})
	r.ConversionProgress(ProgressSnapshot{Percent: 10.9})
	r.ConversionProgress(ProgressSnapshot{Percent: 11.0})

	events := decodeEvents(t, &buf)
	require.Len(t, events, 3) // started + 10% + 11%
	assert.Equal(t, "conversion_started", events[0]["type"])
	assert.InDelta(t, 10.1, events[1]["percent"], 0.01)
	assert.InDelta(t, 11.0, events[2]["percent"], 0.01)
}

func TestJSONReporterAlwaysEmitsNearCompletion(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)
	r.ConversionStarted()

	r.ConversionProgress(ProgressSnapshot{Percent: 99.1})
	r.ConversionProgress(ProgressSnapshot{Percent: 99.5})
	r.ConversionProgress(ProgressSnapshot{Percent: 99.9})

	events := decodeEvents(t, &buf)
	assert.Len(t, events, 4)
}

func TestJSONReporterBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.BatchComplete(BatchSummary{
		TotalFiles:      3,
		SuccessfulCount: 1,
		FailedCount:     1,
		SkippedCount:    1,
		FileResults: []FileResult{
			{Filename: "a.mkv", Status: "success", Reduction: 40},
			{Filename: "b.mkv", Status: "failed"},
			{Filename: "c.mkv", Status: "skipped"},
		},
	})

	events := decodeEvents(t, &buf)
	require.Len(t, events, 1)
	assert.EqualValues(t, 3, events[0]["total_files"])
	assert.EqualValues(t, 1, events[0]["skipped_count"])
	results, ok := events[0]["file_results"].([]interface{})
	require.True(t, ok)
	assert.Len(t, results, 3)
}

func TestCompositeFansOut(t *testing.T) {
	var a, b bytes.Buffer
	c := NewCompositeReporter(NewJSONReporterWithWriter(&a), NewJSONReporterWithWriter(&b))

	c.Warning("both sides")

	assert.Equal(t, a.String(), b.String())
	assert.Contains(t, a.String(), "both sides")
}
