package ffmpeg

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ls *lineStream) []string {
	t.Helper()
	var out []string
	for {
		line, status := ls.Next(time.Second)
		switch status {
		case readLine:
			out = append(out, line)
		case readClosed:
			return out
		case readTimeout:
			t.Fatal("unexpected read timeout")
		}
	}
}

func TestLineStreamSplitsOnBothTerminators(t *testing.T) {
	ls := newLineStream(strings.NewReader("alpha\rbeta\ngamma\r\ndelta"))
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, collect(t, ls))
}

func TestLineStreamFlushesPartialLineOnEOF(t *testing.T) {
	ls := newLineStream(strings.NewReader("no trailing newline"))
	assert.Equal(t, []string{"no trailing newline"}, collect(t, ls))
}

func TestLineStreamEmptyInput(t *testing.T) {
	ls := newLineStream(strings.NewReader(""))
	assert.Empty(t, collect(t, ls))
}

func TestLineStreamTimeoutWhenNoData(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ls := newLineStream(r)
	_, status := ls.Next(50 * time.Millisecond)
	assert.Equal(t, readTimeout, status)
}

func TestLineStreamDeliversAcrossWrites(t *testing.T) {
	r, w := io.Pipe()
	ls := newLineStream(r)

	go func() {
		_, _ = w.Write([]byte("fra"))
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte("me= 1\r"))
		w.Close()
	}()

	line, status := ls.Next(time.Second)
	require.Equal(t, readLine, status)
	assert.Equal(t, "frame= 1", line)

	_, status = ls.Next(time.Second)
	assert.Equal(t, readClosed, status)
}
