package ehttp

import (
	"errors"
	"io"
	"strings"

	"github.com/gobwas/httphead"
	"github.com/gobwas/pool/pbytes"

	"github.com/kamocat/ehttp/ws"
)

// Handshake rejection errors. Any of them means a 400 response was
// already written to the stream and no connection was established.
var (
	ErrBadSecKey     = errors.New("handshake error: missing Sec-WebSocket-Key header")
	ErrBadUpgrade    = errors.New("handshake error: Upgrade header is not websocket")
	ErrBadConnection = errors.New("handshake error: Connection header has no upgrade token")
)

const (
	textBadRequest = "HTTP/1.1 400 Bad Request\r\n" +
		"Content-Length: 0\r\n" +
		"\r\n"
	textUpgrade = "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: "
	crlf = "\r\n"
)

// hasUpgradeToken reports whether the Connection header value carries
// the token "upgrade". Token scanning keeps multi-token values like
// "keep-alive, Upgrade" working without accepting the word embedded in
// an unrelated token.
func hasUpgradeToken(v string) bool {
	var found bool
	httphead.ScanTokens([]byte(v), func(token []byte) bool {
		if strings.EqualFold(string(token), "upgrade") {
			found = true
			return false
		}
		return true
	})
	return found
}

// Upgrade performs the server side of the WebSocket opening handshake
// over an already-accepted stream whose request head has been consumed.
//
// On a validation failure it writes a 400 response and returns a typed
// error with no connection. On success it writes the fixed 101 response
// with the derived Sec-WebSocket-Accept value and returns a Conn
// borrowing rw for the rest of the connection's life. There is no third
// outcome: accept-key derivation cannot fail at runtime.
func Upgrade(hdr Header, rw io.ReadWriter) (*Conn, error) {
	var err error
	key := hdr.Get("Sec-WebSocket-Key")
	switch {
	case key == "":
		err = ErrBadSecKey
	case !strings.EqualFold(hdr.Get("Upgrade"), "websocket"):
		err = ErrBadUpgrade
	case !hasUpgradeToken(hdr.Get("Connection")):
		err = ErrBadConnection
	}
	if err != nil {
		io.WriteString(rw, textBadRequest)
		return nil, err
	}

	accept := ws.MakeAccept([]byte(key))

	buf := pbytes.GetLen(len(textUpgrade) + len(accept) + 2*len(crlf))
	defer pbytes.Put(buf)
	n := copy(buf, textUpgrade)
	n += copy(buf[n:], accept)
	n += copy(buf[n:], crlf)
	copy(buf[n:], crlf)

	if _, err = rw.Write(buf); err != nil {
		return nil, err
	}
	return NewConn(rw), nil
}
