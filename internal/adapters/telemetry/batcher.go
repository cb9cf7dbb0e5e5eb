// Package telemetry provides the OpenTelemetry adapters that trace task runs.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultSizeLimit is the default buffer size (4KB) if not specified.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the default flush interval if not specified.
	DefaultTimeLimit = 50 * time.Millisecond
)

var errBatcherClosed = zerr.New("output batcher is closed")

// LineBatcher buffers task output and hands it to onFlush in whole lines,
// either when sizeLimit bytes are pending or every timeLimit.
// A trailing partial line is held back until it is completed or Close is called.
// It is safe for concurrent use.
type LineBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	done   chan struct{}
	closed bool
}

// NewLineBatcher returns a running LineBatcher. Call Close to stop its flusher.
func NewLineBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *LineBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	lb := &LineBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		ticker:    time.NewTicker(timeLimit),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go lb.run()

	return lb
}

// Write appends p to the buffer and flushes complete lines once sizeLimit is reached.
func (lb *LineBatcher) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.closed {
		return 0, errBatcherClosed
	}

	n, _ := lb.buffer.Write(p)
	if lb.buffer.Len() >= lb.sizeLimit {
		lb.flushLocked(lb.buffer.Len() >= 2*lb.sizeLimit)
		lb.ticker.Reset(lb.timeLimit)
	}

	return n, nil
}

// Flush hands all complete lines to the callback.
func (lb *LineBatcher) Flush() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.closed {
		return
	}
	lb.flushLocked(false)
}

// Close stops the flusher and hands everything still buffered to the callback.
func (lb *LineBatcher) Close() error {
	lb.mu.Lock()
	if lb.closed {
		lb.mu.Unlock()
		return nil
	}
	lb.closed = true
	close(lb.stopCh)
	lb.flushLocked(true)
	lb.mu.Unlock()

	<-lb.done
	return nil
}

func (lb *LineBatcher) run() {
	defer close(lb.done)
	for {
		select {
		case <-lb.ticker.C:
			lb.Flush()
		case <-lb.stopCh:
			lb.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held. Unless all is set, only the bytes
// up to and including the last newline are flushed.
func (lb *LineBatcher) flushLocked(all bool) {
	pending := lb.buffer.Bytes()
	cut := len(pending)
	if !all {
		cut = bytes.LastIndexByte(pending, '\n') + 1
	}
	if cut == 0 {
		return
	}

	data := bytes.Clone(pending[:cut])
	lb.buffer.Next(cut)

	if lb.onFlush != nil {
		lb.onFlush(data)
	}
}
