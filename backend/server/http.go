package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// StartHTTPServer runs the handler on host:port and blocks until ctx is done,
// then shuts the server down with a short grace period.
func StartHTTPServer(ctx context.Context, host string, port int, handler http.Handler) error {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
