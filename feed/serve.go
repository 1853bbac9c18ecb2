package feed

import (
	"net/http"
	"os"
	"strconv"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Serve hosts the given handler (normally a feed Handler, or a mux routing
// several feeds) over HTTP with H2C support.
// An empty addr listens on localhost using the PORT env var, or 8080.
func Serve(addr string, handler http.Handler) error {
	if addr == "" {
		port, _ := strconv.Atoi(os.Getenv("PORT"))
		if port <= 0 {
			port = 8080
		}
		addr = "localhost:" + strconv.Itoa(port)
	}
	if handler == nil {
		handler = http.DefaultServeMux
	}

	s := http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
	return s.ListenAndServe()
}
