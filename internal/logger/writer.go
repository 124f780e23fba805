package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"time"
)

// sink fans a formatted line out to every destination. Writes are
// buffered and flushed by a background ticker, so the hot path never
// waits on disk.
type sink struct {
	mu     sync.Mutex
	outs   []*bufio.Writer
	err    error
	stop   chan struct{}
	closed bool
	wg     sync.WaitGroup
}

func newSink(dests []io.Writer, bufSize int) *sink {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	s := &sink{stop: make(chan struct{})}
	for _, d := range dests {
		if d == nil {
			continue
		}
		s.outs = append(s.outs, bufio.NewWriterSize(d, bufSize))
	}
	s.wg.Add(1)
	go s.flushLoop()
	return s
}

func (s *sink) flushLoop() {
	defer s.wg.Done()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			_ = s.Flush()
		case <-s.stop:
			return
		}
	}
}

// Write appends one line to every destination buffer.
func (s *sink) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, out := range s.outs {
		if _, err := out.Write(p); err != nil {
			s.err = err
			return err
		}
	}
	return nil
}

// Flush pushes buffered content through to the destinations.
func (s *sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *sink) flushLocked() error {
	var errs []error
	for _, out := range s.outs {
		if err := out.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		if s.err == nil {
			s.err = err
		}
		return err
	}
	return s.err
}

// Close stops the background flusher and drains the buffers. Later
// writes fail with the recorded error, if any.
func (s *sink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.stop)
	}
	s.mu.Unlock()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}
