package grpctr

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// ServiceRegistration attaches a grpc service implementation to the server.
type ServiceRegistration func(s *grpc.Server)

type componentOptions struct {
	serverOptions []grpc.ServerOption
	serviceRegs   []ServiceRegistration
	log           *zap.Logger
}

type ComponentOption func(co *componentOptions)

func defaultComponentOptions() *componentOptions {
	return &componentOptions{log: zap.NewNop()}
}

func WithServerOptions(options ...grpc.ServerOption) ComponentOption {
	return func(co *componentOptions) {
		co.serverOptions = append(co.serverOptions, options...)
	}
}

func WithServiceRegistration(regs ...ServiceRegistration) ComponentOption {
	return func(co *componentOptions) {
		co.serviceRegs = append(co.serviceRegs, regs...)
	}
}

func WithLogger(log *zap.Logger) ComponentOption {
	return func(co *componentOptions) {
		co.log = log
	}
}
