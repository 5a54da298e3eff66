package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	emulatorapp "github.com/longrunio/lro/internal/app/emulator"
	configutils "github.com/longrunio/lro/pkg/config"
	errorutils "github.com/longrunio/lro/pkg/errors"
	logutils "github.com/longrunio/lro/pkg/logging"
)

func main() {
	path := flag.String("config", "", "path to configuration file")
	env := flag.String("env", "", "launch environment")

	flag.Parse()

	cfg := errorutils.Must(readConfig(*path))
	log := errorutils.Must(logutils.NewLogger(*env))

	app := errorutils.Must(emulatorapp.NewApp(cfg, log))

	log.Info("starting lro-emulator application")
	startupContext, startupCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	errorutils.Try(app.Startup(startupContext))

	<-startupContext.Done()
	startupCancel()

	log.Info("stopping lro-emulator application")
	shutdownContext, shutdownCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	errorutils.Try(app.Shutdown(shutdownContext))

	shutdownCancel()
}

func readConfig(path string) (*emulatorapp.Config, error) {
	if path == "" {
		return configutils.ReadFromEnv[emulatorapp.Config]()
	}
	return configutils.ReadFromFile[emulatorapp.Config](path)
}
