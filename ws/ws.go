/*
Package ws implements the server-side subset of the WebSocket protocol
(RFC 6455) used by the ehttp cooperative server.

The package holds pure protocol logic only: the frame model, the binary
codec over io.Reader and io.Writer, payload masking, close-payload
helpers and the handshake accept-key derivation. It never owns a socket
and never schedules anything; callers decide how reads and writes block.
In particular, the cooperative runtime in package coop wraps a
nonblocking stream into an io.Reader/io.Writer pair whose every call is
a suspension point, which makes the staged reads below the yield
boundaries of a connection.

Reading a frame:

	f, err := ws.ReadFrame(r)
	switch {
	case err == ws.ErrPeerClosed:
		// clean disconnect, stop the receive loop
	case err != nil:
		// protocol fault
	}

Writing a frame:

	err := ws.WriteFrame(w, ws.NewTextFrame("hello"))

Fragmentation and extensions are not supported: every frame written by
this package is final and carries zero RSV bits.
*/
package ws
