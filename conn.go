package ehttp

import (
	"errors"
	"io"

	"github.com/gobwas/pool/pbytes"

	"github.com/kamocat/ehttp/ws"
)

// ErrClosedConn is returned by send operations after the connection has
// transmitted its own close frame.
var ErrClosedConn = errors.New("send on closed websocket connection")

// Conn is one open WebSocket channel. It borrows the underlying byte
// stream for the connection's lifetime without owning it: closing the
// stream elsewhere simply makes the Conn unusable.
//
// A Conn is created only by a successful upgrade handshake. It tracks
// the close handshake from both directions: once this side has sent a
// close frame no further frame may be sent, and once the peer's close
// frame has been received further receives report ws.ErrPeerClosed
// while the close reply may still go out.
type Conn struct {
	r io.Reader
	w io.Writer

	sentClose bool
	recvClose bool
}

// NewConn wraps an upgraded stream. The reader side must start exactly
// at the first frame byte; buffered request leftovers belong to the
// host.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{r: rw, w: rw}
}

// Closed reports whether the close handshake has started in either
// direction.
func (c *Conn) Closed() bool {
	return c.sentClose || c.recvClose
}

// SendText sends s as a single unmasked text frame.
func (c *Conn) SendText(s string) error {
	return c.send(ws.OpText, []byte(s))
}

// SendBinary sends p as a single unmasked binary frame.
func (c *Conn) SendBinary(p []byte) error {
	return c.send(ws.OpBinary, p)
}

// SendPong sends a pong control frame, usually echoing a ping payload.
func (c *Conn) SendPong(p []byte) error {
	return c.send(ws.OpPong, p)
}

// SendClose transmits a close frame with the given status code and
// reason, cropping the reason so the whole payload fits a control
// frame. Whether this initiates the close handshake or replies to the
// peer's close, the connection counts as closed afterwards even if the
// write failed.
func (c *Conn) SendClose(code ws.StatusCode, reason string) error {
	if c.sentClose {
		return ErrClosedConn
	}
	err := c.send(ws.OpClose, ws.NewCloseFrameData(code, reason))
	c.sentClose = true
	return err
}

// Recv reads the next frame. Masked payloads arrive unmasked. The
// error is ws.ErrPeerClosed when the peer disconnected cleanly between
// frames (or its close frame was already consumed); other errors are
// protocol or stream faults.
func (c *Conn) Recv() (ws.Frame, error) {
	if c.recvClose {
		return ws.Frame{}, ws.ErrPeerClosed
	}
	f, err := ws.ReadFrame(c.r)
	if err != nil {
		return f, err
	}
	if err = ws.CheckHeader(f.Header); err != nil {
		return f, err
	}
	if f.Header.OpCode == ws.OpClose {
		c.recvClose = true
	}
	return f, nil
}

// send encodes one final, unmasked frame as a single contiguous byte
// sequence and hands it to the sink in one write.
func (c *Conn) send(op ws.OpCode, p []byte) error {
	if c.sentClose {
		return ErrClosedConn
	}
	h := ws.Header{Fin: true, OpCode: op, Length: int64(len(p))}

	buf := pbytes.GetLen(ws.HeaderSize(h) + len(p))
	defer pbytes.Put(buf)

	n, err := ws.PutHeader(buf, h)
	if err != nil {
		return err
	}
	copy(buf[n:], p)

	_, err = c.w.Write(buf)
	return err
}
