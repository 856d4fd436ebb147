//go:build !linux

// Package netpoll backs the cooperative loop with epoll; only the
// Linux implementation exists, matching the constrained targets this
// server is meant for. Other platforms can still use the engine over
// their own coop.Stream transport.
package netpoll

import (
	"errors"

	"github.com/kamocat/ehttp/coop"
)

var errUnsupported = errors.New("netpoll: only supported on linux")

type Poller struct{}

func New() (*Poller, error)  { return nil, errUnsupported }
func (*Poller) Wait() error  { return errUnsupported }
func (*Poller) Close() error { return errUnsupported }

type Listener struct{}

func Listen(*Poller, string) (*Listener, error) { return nil, errUnsupported }
func (*Listener) Accept() (coop.Stream, error)  { return nil, errUnsupported }
func (*Listener) Addr() string                  { return "" }
func (*Listener) Close() error                  { return errUnsupported }
