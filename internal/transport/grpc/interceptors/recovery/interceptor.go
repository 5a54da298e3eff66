package recovery

import (
	r "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
)

// NewUnaryServerInterceptor turns handler panics into Internal errors
// instead of tearing down the server.
func NewUnaryServerInterceptor(opts ...r.Option) grpc.UnaryServerInterceptor {
	return r.UnaryServerInterceptor(opts...)
}
