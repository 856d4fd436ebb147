package ehttp

import (
	"io"
	"regexp"
	"strings"

	"github.com/kamocat/ehttp/ws"
)

// MethodWebSocket is the method token marking WebSocket handlers in the
// route table, next to the ordinary HTTP methods of the host router.
const MethodWebSocket = "WEBSOCKET"

// Handler drives one upgraded connection. It owns the Conn until it
// returns; a non-nil error makes the dispatcher end the connection with
// a close frame carrying status 1011.
type Handler func(path string, hdr Header, conn *Conn) error

type route struct {
	pattern *regexp.Regexp
	method  string
	handler Handler
}

// Dispatcher intercepts upgrade requests before generic routing and
// hands successfully upgraded connections to registered handlers.
//
// Routes form an ordered table tested in registration order; the first
// pattern matching the request path wins. Patterns are regular
// expressions anchored at the start of the path.
type Dispatcher struct {
	routes []route
}

// Handle registers a handler under the given path pattern and method
// token. Only MethodWebSocket routes are consulted by the dispatcher;
// other methods may share the table but belong to the host router.
func (d *Dispatcher) Handle(pattern, method string, h Handler) error {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return err
	}
	d.routes = append(d.routes, route{pattern: re, method: method, handler: h})
	return nil
}

// Intercept is the upgrade-interceptor capability the host HTTP layer
// plugs in before its own routing. It reports whether the request was
// consumed; false means the host should handle the request as plain
// HTTP, with nothing written to the stream yet.
//
// A consumed request saw exactly one of: a 400 rejection, a handshake
// followed by a matching handler, or a handshake followed by a graceful
// close because no WebSocket route matched (deliberately not an error).
func (d *Dispatcher) Intercept(req *Request, rw io.ReadWriter) bool {
	if req.Method != "GET" || !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
		return false
	}

	conn, err := Upgrade(req.Header, rw)
	if err != nil {
		return true // 400 already written
	}

	path := req.Path()
	for _, rt := range d.routes {
		if rt.method == MethodWebSocket && rt.pattern.MatchString(path) {
			serve(rt.handler, path, req.Header, conn)
			return true
		}
	}

	// Successful handshake with no registered application logic.
	conn.SendClose(ws.StatusNormalClosure, "")
	return true
}

// serve runs the handler and catches faults at the dispatch boundary.
// Once upgraded the HTTP status channel is gone, so failures are
// answered with a best-effort close frame; if even that write fails the
// connection is abandoned silently.
func serve(h Handler, path string, hdr Header, conn *Conn) {
	defer func() {
		if recover() != nil {
			abort(conn)
		}
	}()
	if err := h(path, hdr, conn); err != nil {
		abort(conn)
	}
}

func abort(conn *Conn) {
	if !conn.Closed() {
		conn.SendClose(ws.StatusInternalServerError, "")
	}
}
