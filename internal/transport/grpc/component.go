package grpctr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Component owns a grpc.Server and exposes it through the Startup and
// Shutdown lifecycle used by the application runner.
type Component struct {
	address string
	server  *grpc.Server
	log     *zap.Logger
}

func NewComponent(address string, opts ...ComponentOption) *Component {
	options := defaultComponentOptions()
	for _, opt := range opts {
		opt(options)
	}

	server := grpc.NewServer(options.serverOptions...)
	for _, reg := range options.serviceRegs {
		reg(server)
	}

	return &Component{
		address: address,
		server:  server,
		log:     options.log,
	}
}

func (c *Component) Startup(ctx context.Context) error {
	lis, err := net.Listen("tcp", c.address)
	if err != nil {
		return fmt.Errorf("cannot listen address %s: %w", c.address, err)
	}
	c.log.Info("grpc server is listening", zap.String("address", c.address))

	errc := make(chan error)
	go func() {
		defer close(errc)
		select {
		case errc <- c.server.Serve(lis):
		case <-ctx.Done():
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("error while serve %s: %w", c.address, err)
	case <-ctx.Done():
		return nil
	}
}

func (c *Component) Shutdown(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		c.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		c.log.Info("grpc server stopped")
		return nil
	case <-ctx.Done():
		c.server.Stop()
		return errors.New("shutdown context exceeded")
	}
}
