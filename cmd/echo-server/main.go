// Command echo-server runs the cooperative WebSocket engine on a TCP
// port. Text and binary messages are echoed back, pings are answered
// with pongs, and a peer close ends the connection cleanly.
//
// Try it with any WebSocket client against ws://localhost:8080/ws.
package main

import (
	"flag"
	"io"
	"log"

	"github.com/kamocat/ehttp"
	"github.com/kamocat/ehttp/ws"
)

var addr = flag.String("listen", ":8080", "address to listen on")

func main() {
	flag.Parse()

	d := new(ehttp.Dispatcher)
	if err := d.Handle("/ws", ehttp.MethodWebSocket, echo); err != nil {
		log.Fatal(err)
	}

	srv := &ehttp.Server{
		WS:       d,
		Fallback: index,
	}

	log.Printf("listening on %s", *addr)
	log.Fatal(srv.ListenAndServe(*addr))
}

func echo(path string, hdr ehttp.Header, conn *ehttp.Conn) error {
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
			err = conn.SendText(string(f.Payload))
		case ws.OpBinary:
			err = conn.SendBinary(f.Payload)
		case ws.OpPing:
			err = conn.SendPong(f.Payload)
		case ws.OpClose:
			return conn.SendClose(ws.StatusNormalClosure, "")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func index(req *ehttp.Request, rw io.ReadWriter) {
	const page = "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Length: 23\r\n" +
		"\r\n" +
		"websocket echo at /ws\r\n"
	io.WriteString(rw, page)
}
