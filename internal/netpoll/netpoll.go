//go:build linux

// Package netpoll backs the cooperative loop with epoll: nonblocking
// TCP sockets exposed as coop.Stream values plus a Poller the loop
// sleeps in when every task is waiting for I/O.
package netpoll

import (
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"

	"github.com/kamocat/ehttp/coop"
)

// Poller wraps an epoll instance. Sockets are registered level
// triggered for readability; write interest is added only while a
// write has actually hit EAGAIN and dropped again once the socket
// reports writable, so an idle connection never wakes the loop.
type Poller struct {
	epfd int
}

// New creates a poller.
func New() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("netpoll: epoll_create1: %w", err)
	}
	return &Poller{epfd: epfd}, nil
}

// Wait blocks until at least one registered socket is ready. It
// implements coop.Poller; the loop does not care which socket woke it,
// it simply reruns its blocked tasks against level-triggered state.
func (p *Poller) Wait() error {
	var events [64]unix.EpollEvent
	for {
		n, err := unix.EpollWait(p.epfd, events[:], -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("netpoll: epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			// The socket drained its backlog; writable is the steady
			// state, keeping it registered would busy-wake the loop.
			if events[i].Events&unix.EPOLLOUT != 0 {
				p.watchRead(int(events[i].Fd))
			}
		}
		return nil
	}
}

// Close releases the epoll instance.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}

func (p *Poller) register(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLRDHUP, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("netpoll: epoll_ctl add: %w", err)
	}
	return nil
}

func (p *Poller) watchRead(fd int) {
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLRDHUP, Fd: int32(fd)}
	unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *Poller) watchReadWrite(fd int) {
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLRDHUP, Fd: int32(fd)}
	unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *Poller) unregister(fd int) {
	unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Listener is a nonblocking TCP listener registered with a Poller.
type Listener struct {
	fd   int
	p    *Poller
	addr string
}

// Listen opens a nonblocking TCP listener on addr ("host:port", with
// ":0" for an ephemeral port) and registers it with the poller.
func Listen(p *Poller, addr string) (*Listener, error) {
	ta, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("netpoll: socket: %w", err)
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("netpoll: setsockopt: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: ta.Port}
	if ip := ta.IP.To4(); ip != nil {
		copy(sa.Addr[:], ip)
	}
	if err = unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("netpoll: bind %s: %w", addr, err)
	}
	if err = unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("netpoll: listen: %w", err)
	}
	if err = p.register(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}

	l := &Listener{fd: fd, p: p}
	if bound, err := unix.Getsockname(fd); err == nil {
		if sa, ok := bound.(*unix.SockaddrInet4); ok {
			l.addr = fmt.Sprintf("%s:%d", net.IP(sa.Addr[:]), sa.Port)
		}
	}
	return l, nil
}

// Accept takes one pending connection, returning coop.ErrAgain when
// the backlog is empty.
func (l *Listener) Accept() (coop.Stream, error) {
	nfd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	switch err {
	case nil:
	case unix.EAGAIN:
		return nil, coop.ErrAgain
	default:
		return nil, fmt.Errorf("netpoll: accept: %w", err)
	}
	if err := l.p.register(nfd); err != nil {
		unix.Close(nfd)
		return nil, err
	}
	return &conn{fd: nfd, p: l.p}, nil
}

// Addr returns the bound address, useful with an ephemeral port.
func (l *Listener) Addr() string {
	return l.addr
}

// Close stops the listener.
func (l *Listener) Close() error {
	l.p.unregister(l.fd)
	return unix.Close(l.fd)
}

// conn is an accepted socket as a coop.Stream.
type conn struct {
	fd int
	p  *Poller
}

func (c *conn) Read(b []byte) (int, error) {
	n, err := unix.Read(c.fd, b)
	switch {
	case err == unix.EAGAIN:
		return 0, coop.ErrAgain
	case err != nil:
		return 0, fmt.Errorf("netpoll: read: %w", err)
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}

func (c *conn) Write(b []byte) (int, error) {
	n, err := unix.Write(c.fd, b)
	switch {
	case err == unix.EAGAIN:
		c.p.watchReadWrite(c.fd)
		return 0, coop.ErrAgain
	case err != nil:
		return 0, fmt.Errorf("netpoll: write: %w", err)
	}
	return n, nil
}

func (c *conn) Close() error {
	c.p.unregister(c.fd)
	return unix.Close(c.fd)
}
