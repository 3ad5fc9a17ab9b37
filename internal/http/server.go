// Package http contiene el contrato JSON de la API ({error,
// error_description}), los helpers de encoding y el servidor.
package http

import (
	"context"
	"net/http"
	"time"
)

// Start sirve handler en addr hasta que ctx se cancele, y después drena
// conexiones en curso con un período de gracia.
func Start(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
