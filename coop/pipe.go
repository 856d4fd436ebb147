package coop

import (
	"io"
	"sync"
)

// Pipe returns both ends of an in-memory duplex stream. Each end is a
// Stream: reads report ErrAgain while the peer has written nothing yet
// and io.EOF once the peer end is closed and drained.
//
// Unlike the fd-backed streams, a pipe buffers without bound, so writes
// never suspend. The mutex makes an end safe to drive from outside the
// loop, which is how tests feed a server task.
func Pipe() (Stream, Stream) {
	a := &pipeHalf{}
	b := &pipeHalf{}
	return &pipeEnd{in: a, out: b}, &pipeEnd{in: b, out: a}
}

// pipeHalf is one direction of the pipe.
type pipeHalf struct {
	mu     sync.Mutex
	buf    []byte
	closed bool
}

type pipeEnd struct {
	in  *pipeHalf
	out *pipeHalf
}

func (e *pipeEnd) Read(p []byte) (int, error) {
	e.in.mu.Lock()
	defer e.in.mu.Unlock()

	if len(e.in.buf) == 0 {
		if e.in.closed {
			return 0, io.EOF
		}
		return 0, ErrAgain
	}
	n := copy(p, e.in.buf)
	e.in.buf = e.in.buf[n:]
	return n, nil
}

func (e *pipeEnd) Write(p []byte) (int, error) {
	e.out.mu.Lock()
	defer e.out.mu.Unlock()

	if e.out.closed {
		return 0, io.ErrClosedPipe
	}
	e.out.buf = append(e.out.buf, p...)
	return len(p), nil
}

// Close shuts both directions: the peer reads io.EOF after draining
// what was already written, and further writes from either end fail.
func (e *pipeEnd) Close() error {
	e.out.mu.Lock()
	e.out.closed = true
	e.out.mu.Unlock()

	e.in.mu.Lock()
	e.in.closed = true
	e.in.mu.Unlock()
	return nil
}
