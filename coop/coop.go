/*
Package coop provides the cooperative, single-threaded runtime the ehttp
server schedules connections with.

A Loop steps Tasks in registration order; only one task runs at any
moment and control changes hands solely at explicit suspension points
(Yield or Block). State touched between two suspension points is never
observed mid-mutation by another task, so no locking is needed inside
task code.

I/O is nonblocking: a Stream returns ErrAgain instead of waiting. The
NewReader and NewWriter adapters turn a Stream plus its Task into plain
io.Reader/io.Writer values that park the task on ErrAgain and yield
after every completed transfer, which makes each partial read or write
a suspension point without the protocol code knowing about scheduling.
*/
package coop

import "errors"

// ErrAgain is returned by a Stream when the operation cannot make
// progress right now. The caller is expected to suspend and retry.
var ErrAgain = errors.New("coop: operation would block")

// Stream is a nonblocking bidirectional byte stream.
//
// Read fills p with available bytes and reports ErrAgain when none are
// buffered, or io.EOF once the peer side is closed and drained. Write
// queues as much of p as fits and reports ErrAgain when nothing more
// can be queued; short writes are normal. A Stream is used exclusively
// by one logical owner at a time.
type Stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}
