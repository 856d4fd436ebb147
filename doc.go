/*
Package ehttp adds WebSocket support (RFC 6455) to a cooperative,
single-threaded HTTP server aimed at resource-constrained devices.

The package glues the pure protocol code in ws to the cooperative
runtime in coop. A Dispatcher intercepts upgrade requests before
generic routing, performs the handshake and hands the resulting Conn to
the first registered handler whose pattern matches the request path:

	d := new(ehttp.Dispatcher)
	d.Handle("/ws", ehttp.MethodWebSocket, func(path string, hdr ehttp.Header, conn *ehttp.Conn) error {
		for !conn.Closed() {
			f, err := conn.Recv()
			if err == ws.ErrPeerClosed {
				return nil
			}
			if err != nil {
				return err
			}
			switch f.Header.OpCode {
			case ws.OpText:
				if err := conn.SendText(string(f.Payload)); err != nil {
					return err
				}
			case ws.OpPing:
				if err := conn.SendPong(f.Payload); err != nil {
					return err
				}
			case ws.OpClose:
				return conn.SendClose(ws.StatusNormalClosure, "")
			}
		}
		return nil
	})

	srv := &ehttp.Server{WS: d}
	log.Fatal(srv.ListenAndServe(":8080"))

The generic HTTP layer stays an external collaborator: it only has to
expose the request headers as a case-insensitive mapping, hand over the
raw byte stream before any body is consumed, and call the dispatcher
before its own routing. The Server type in this package is a minimal
such host, enough to run and test the engine end to end.
*/
package ehttp
