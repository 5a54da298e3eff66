package logutils

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger for the launch environment. Anything
// but "prod" gets the human-readable development config.
func NewLogger(env string) (*zap.Logger, error) {
	switch env {
	case "prod":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}
