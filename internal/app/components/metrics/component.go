package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Component serves the prometheus exposition endpoint.
type Component struct {
	server *http.Server
}

func NewComponent(address string) *Component {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Component{
		server: &http.Server{
			Addr:              address,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (c *Component) Startup(ctx context.Context) error {
	errc := make(chan error)
	go func() {
		defer close(errc)
		select {
		case errc <- c.server.ListenAndServe():
		case <-ctx.Done():
		}
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error while serve %s: %w", c.server.Addr, err)
	case <-ctx.Done():
		return nil
	}
}

func (c *Component) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}
