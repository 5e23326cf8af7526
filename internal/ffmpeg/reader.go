package ffmpeg

import (
	"bufio"
	"io"
	"time"
)

// readStatus describes the result of one bounded line read.
type readStatus int

const (
	// readLine means a complete line was delivered.
	readLine readStatus = iota
	// readTimeout means the deadline expired with no line available.
	readTimeout
	// readClosed means the stream reached EOF or a read error.
	readClosed
)

// lineStream turns a blocking reader into deadline-bounded line reads.
// A background goroutine reads bytes and delivers complete lines over a
// channel; Next never blocks longer than the given deadline. The engine
// terminates progress lines with \r and log lines with \n, so both are
// treated as line endings.
type lineStream struct {
	lines chan string
}

// newLineStream starts reading lines from r. The goroutine exits when r
// reaches EOF or errors, which happens once the subprocess closes its
// diagnostic stream.
func newLineStream(r io.Reader) *lineStream {
	ls := &lineStream{lines: make(chan string, 16)}
	go ls.readLoop(r)
	return ls
}

func (ls *lineStream) readLoop(r io.Reader) {
	defer close(ls.lines)

	reader := bufio.NewReader(r)
	var buf []byte
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if len(buf) > 0 {
				ls.lines <- string(buf)
			}
			return
		}
		if b == '\r' || b == '\n' {
			if len(buf) > 0 {
				ls.lines <- string(buf)
				buf = buf[:0]
			}
			continue
		}
		buf = append(buf, b)
	}
}

// Next returns the next line, waiting at most deadline.
func (ls *lineStream) Next(deadline time.Duration) (string, readStatus) {
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case line, ok := <-ls.lines:
		if !ok {
			return "", readClosed
		}
		return line, readLine
	case <-timer.C:
		return "", readTimeout
	}
}
