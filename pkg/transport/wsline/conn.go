// Package wsline carries the line protocol over a websocket, so a
// brain without a physical serial link can attach to the node.
package wsline

import (
	"io"
	"net/http"

	"golang.org/x/net/websocket"
)

// Dial connects to a node serving the line protocol at url.
func Dial(url, origin string) (io.ReadWriteCloser, error) {
	if origin == "" {
		origin = "http://localhost/"
	}
	return websocket.Dial(url, "", origin)
}

// Handler adapts a per-connection serve func into an http.Handler.
// serve blocks until the connection is done.
func Handler(serve func(io.ReadWriteCloser)) http.Handler {
	return websocket.Handler(func(ws *websocket.Conn) {
		serve(ws)
	})
}
