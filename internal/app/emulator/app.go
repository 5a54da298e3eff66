package emulatorapp

import (
	"context"
	"fmt"

	metricscomp "github.com/longrunio/lro/internal/app/components/metrics"
	natscomp "github.com/longrunio/lro/internal/app/components/nats"
	oprepo "github.com/longrunio/lro/internal/repositories/operations"
	completersrv "github.com/longrunio/lro/internal/services/completer"
	opsrv "github.com/longrunio/lro/internal/services/operations"
	grpctr "github.com/longrunio/lro/internal/transport/grpc"
	healthapi "github.com/longrunio/lro/internal/transport/grpc/health"
	"github.com/longrunio/lro/internal/transport/grpc/interceptors/logging"
	"github.com/longrunio/lro/internal/transport/grpc/interceptors/recovery"
	"github.com/longrunio/lro/internal/transport/grpc/interceptors/validator"
	opapi "github.com/longrunio/lro/internal/transport/grpc/operations"
	reflectapi "github.com/longrunio/lro/internal/transport/grpc/reflection"
	natscons "github.com/longrunio/lro/internal/transport/nats/consumer"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const completerDurable = "lro-completer"

type App struct {
	cfg *Config
	log *zap.Logger

	storage          *natscomp.Storage
	operationService *opsrv.Service

	grpcServer    *grpctr.Component
	metricsServer *metricscomp.Component
	consumer      *natscons.Consumer
}

func NewApp(cfg *Config, log *zap.Logger) (*App, error) {
	storage, err := natscomp.NewStorage(cfg.Storage.URL)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to operation storage: %w", err)
	}
	log.Info("connection to operation storage established")

	objectStorage, err := minio.New(cfg.ObjectStorage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ObjectStorage.User, cfg.ObjectStorage.Password, ""),
		Secure: cfg.ObjectStorage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to object storage: %w", err)
	}

	results, err := oprepo.NewResultRepository(objectStorage, cfg.ObjectStorage.ResultsBucketName)
	if err != nil {
		return nil, err
	}

	operationRepository, err := oprepo.NewRepository(storage.OpMeta, results, cfg.ObjectStorage.InlineLimitBytes)
	if err != nil {
		return nil, err
	}

	operationService, err := opsrv.NewService(operationRepository, oprepo.NewPublisher(storage.JS))
	if err != nil {
		return nil, err
	}

	completer, err := completersrv.NewCompleter(operationService, log)
	if err != nil {
		return nil, err
	}

	consumer, err := natscons.NewConsumer(storage.Schedule, completerDurable, completer.Handler(), cfg.Completer.Slots)
	if err != nil {
		return nil, fmt.Errorf("cannot create schedule consumer: %w", err)
	}

	grpcServer := grpctr.NewComponent(cfg.Server.Grpc.Address,
		grpctr.WithLogger(log),
		grpctr.WithServerOptions(
			grpc.ChainUnaryInterceptor(
				recovery.NewUnaryServerInterceptor(),
				logging.NewUnaryServerInterceptor(log),
				validator.NewUnaryServerInterceptor(),
			),
		),
		grpctr.WithServiceRegistration(
			healthapi.NewRegistration(),
			reflectapi.NewRegistration(),
			opapi.NewRegistration(operationService),
		),
	)

	return &App{
		cfg:              cfg,
		log:              log,
		storage:          storage,
		operationService: operationService,
		grpcServer:       grpcServer,
		metricsServer:    metricscomp.NewComponent(cfg.Metrics.Address),
		consumer:         consumer,
	}, nil
}

func (a *App) Startup(ctx context.Context) error {
	if err := a.seed(ctx); err != nil {
		return err
	}

	errGroup, ctx := errgroup.WithContext(ctx)

	errGroup.Go(func() error {
		a.log.Debug("starting gRPC server")
		defer a.log.Info("gRPC server ready to accept requests")

		return a.grpcServer.Startup(ctx)
	})

	errGroup.Go(func() error {
		a.log.Debug("starting metrics server")

		return a.metricsServer.Startup(ctx)
	})

	errGroup.Go(func() error {
		a.log.Debug("starting schedule consumer")

		if err := a.consumer.Run(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})

	return errGroup.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	errGroup, ctx := errgroup.WithContext(ctx)

	errGroup.Go(func() error {
		a.log.Debug("stopping gRPC server")
		defer a.log.Info("gRPC server stopped")

		return a.grpcServer.Shutdown(ctx)
	})

	errGroup.Go(func() error {
		a.log.Debug("stopping metrics server")

		return a.metricsServer.Shutdown(ctx)
	})

	errGroup.Go(func() error {
		a.log.Debug("stopping schedule consumer")
		defer a.log.Info("schedule consumer stopped")

		if err := a.consumer.Stop(ctx); err != nil {
			return err
		}

		a.storage.Conn.Close()
		return nil
	})

	return errGroup.Wait()
}
