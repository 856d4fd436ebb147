package ehttp

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/gobwas/pool/pbufio"

	"github.com/kamocat/ehttp/coop"
	"github.com/kamocat/ehttp/internal/netpoll"
)

// ErrMalformedRequest is returned by the host front when a request head
// cannot be parsed; the connection is dropped without a response.
var ErrMalformedRequest = errors.New("malformed http request")

const textNotFound = "HTTP/1.1 404 Not Found\r\n" +
	"Content-Length: 0\r\n" +
	"\r\n"

// headBufferSize bounds a request line or header line; anything longer
// is treated as malformed. Small on purpose for constrained targets.
const headBufferSize = 512

// Interceptor is the pluggable upgrade capability invoked before the
// generic HTTP handling; *Dispatcher implements it.
type Interceptor interface {
	Intercept(req *Request, rw io.ReadWriter) bool
}

// HTTPHandler is the generic HTTP collaborator a request falls through
// to when no interceptor consumed it. It must write a complete response
// to rw.
type HTTPHandler func(req *Request, rw io.ReadWriter)

// Listener yields accepted streams without blocking, reporting
// coop.ErrAgain while the backlog is empty.
type Listener interface {
	Accept() (coop.Stream, error)
	Addr() string
	Close() error
}

// Server is a minimal cooperative HTTP host: it accepts connections,
// parses request heads and routes every request through the WS
// interceptor first, matching the collaborator contract the WebSocket
// engine expects. It handles no request bodies; it exists to run the
// engine on real sockets, not to replace a general HTTP server.
type Server struct {
	// WS intercepts upgrade requests; usually a *Dispatcher.
	WS Interceptor

	// Fallback handles non-upgrade requests. Nil means a bare 404.
	Fallback HTTPHandler
}

// ListenAndServe runs the server on addr with an epoll-backed loop.
// It blocks for the lifetime of the listener.
func (s *Server) ListenAndServe(addr string) error {
	p, err := netpoll.New()
	if err != nil {
		return err
	}
	defer p.Close()

	l, err := netpoll.Listen(p, addr)
	if err != nil {
		return err
	}
	defer l.Close()

	loop := coop.NewLoop()
	loop.Poller = p
	return s.Serve(loop, l)
}

// Serve accepts connections from l on the given loop until the
// listener fails, then keeps running until every live connection task
// has finished. A listener that reports io.EOF when drained ends the
// serve cleanly.
func (s *Server) Serve(loop *coop.Loop, l Listener) error {
	acceptor := loop.Spawn(func(t *coop.Task) error {
		for {
			stream, err := l.Accept()
			if err == coop.ErrAgain {
				t.Block()
				continue
			}
			if err != nil {
				return err
			}
			loop.Spawn(func(t *coop.Task) error {
				return s.serveConn(t, stream)
			})
			t.Yield()
		}
	})
	loop.Run()

	if err := acceptor.Err(); err != io.EOF {
		return err
	}
	return nil
}

// serveConn owns one accepted stream for exactly one request.
func (s *Server) serveConn(t *coop.Task, stream coop.Stream) error {
	defer stream.Close()

	r := coop.NewReader(t, stream)
	w := coop.NewWriter(t, stream)

	br := pbufio.GetReader(r, headBufferSize)
	defer pbufio.PutReader(br)

	req, err := readRequest(br)
	if err != nil {
		return err
	}

	// The buffered reader may already hold bytes past the request head
	// (the first frames of an eager client), so the engine must keep
	// reading through it, not through the raw stream.
	rw := readWriter{br, w}

	if s.WS != nil && s.WS.Intercept(req, rw) {
		return nil
	}
	if s.Fallback != nil {
		s.Fallback(req, rw)
		return nil
	}
	_, err = io.WriteString(w, textNotFound)
	return err
}

type readWriter struct {
	io.Reader
	io.Writer
}

// readRequest parses a request head: the request line, then header
// lines folded into the case-insensitive mapping, up to the blank line.
func readRequest(br *bufio.Reader) (*Request, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}

	method, rest, ok := bytes.Cut(line, []byte{' '})
	target, proto, ok2 := bytes.Cut(rest, []byte{' '})
	if !ok || !ok2 || !bytes.HasPrefix(proto, []byte("HTTP/")) {
		return nil, ErrMalformedRequest
	}

	req := &Request{
		Method: string(method),
		Target: string(target),
		Header: make(Header),
	}
	for {
		line, err = readLine(br)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			return req, nil
		}
		k, v, ok := bytes.Cut(line, []byte{':'})
		if !ok {
			return nil, ErrMalformedRequest
		}
		req.Header.Set(string(bytes.TrimSpace(k)), string(bytes.TrimSpace(v)))
	}
}

// readLine reads one CRLF-terminated line, without its line ending.
// The line must fit the reader's buffer; see headBufferSize.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		return nil, ErrMalformedRequest
	}
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}
