package coop

import "io"

// NewReader presents s as an io.Reader owned by task t. Each Read call
// is a suspension point: the task parks while the stream has nothing
// buffered and yields once after a completed transfer, so long payloads
// read in chunks interleave fairly with other connections.
func NewReader(t *Task, s Stream) io.Reader {
	return &streamReader{t: t, s: s}
}

// NewWriter presents s as an io.Writer owned by task t. Write retries
// short writes until the whole slice is queued, parking the task
// whenever the stream cannot take more, so callers keep the plain
// io.Writer contract.
func NewWriter(t *Task, s Stream) io.Writer {
	return &streamWriter{t: t, s: s}
}

type streamReader struct {
	t *Task
	s Stream
}

func (r *streamReader) Read(p []byte) (int, error) {
	for {
		n, err := r.s.Read(p)
		if err == ErrAgain {
			r.t.Block()
			continue
		}
		if err == nil {
			r.t.Yield()
		}
		return n, err
	}
}

type streamWriter struct {
	t *Task
	s Stream
}

func (w *streamWriter) Write(p []byte) (int, error) {
	var nn int
	for nn < len(p) {
		n, err := w.s.Write(p[nn:])
		nn += n
		switch err {
		case nil:
			w.t.Yield()
		case ErrAgain:
			w.t.Block()
		default:
			return nn, err
		}
	}
	return nn, nil
}
