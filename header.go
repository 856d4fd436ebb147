package ehttp

import "strings"

// Header is the case-insensitive header mapping the host HTTP layer
// exposes to the WebSocket engine. Keys are stored lower-cased; Get and
// Set fold their arguments, so lookups work with any capitalization.
type Header map[string]string

// Get returns the value for the given header name, or "" if absent.
func (h Header) Get(key string) string {
	return h[strings.ToLower(key)]
}

// Set stores the value under the folded header name.
func (h Header) Set(key, value string) {
	h[strings.ToLower(key)] = value
}

// Request is the view of an inbound HTTP request the engine needs: the
// method and target from the request line plus the parsed headers. The
// body, if any, is still unread on the connection.
type Request struct {
	Method string
	Target string
	Header Header
}

// Path returns the request target with any query string removed.
func (r *Request) Path() string {
	if i := strings.IndexByte(r.Target, '?'); i >= 0 {
		return r.Target[:i]
	}
	return r.Target
}
