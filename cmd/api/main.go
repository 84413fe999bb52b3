package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/mapease/checkin-service/internal/api/http"
	"github.com/mapease/checkin-service/internal/api/http/handlers"
	"github.com/mapease/checkin-service/internal/auth"
	"github.com/mapease/checkin-service/internal/checkin"
	"github.com/mapease/checkin-service/internal/config"
	"github.com/mapease/checkin-service/internal/events"
	"github.com/mapease/checkin-service/internal/ledger"
	"github.com/mapease/checkin-service/internal/observability"
	"github.com/mapease/checkin-service/internal/persistence"
	"github.com/mapease/checkin-service/internal/qrtoken"
	"github.com/mapease/checkin-service/internal/repository"
	"github.com/mapease/checkin-service/internal/service"
	"github.com/mapease/checkin-service/internal/session"
	"github.com/mapease/checkin-service/internal/storage"
	"github.com/mapease/checkin-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to configure redis", zap.Error(err))
	}
	defer redis.Close()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	dispatcher := events.NewInMemoryDispatcher()
	var publisher *events.RedisPublisher
	if redis.Available {
		publisher = events.NewRedisPublisher(redis.Client, logger)
	}

	consumptions, err := ledger.Open(cfg.Checkin, ledger.Backends{
		Redis:    redis.Client,
		Postgres: pool,
		Mongo:    mongo.Database(),
	})
	if err != nil {
		logger.Fatal("failed to open ledger", zap.Error(err))
	}
	sessions, err := session.Open(cfg.Checkin.SessionBackend, redis.Client)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}

	var (
		eventRepo        repository.EventRepository
		registrationRepo repository.RegistrationRepository
		operatorRepo     repository.OperatorRepository
	)
	if pool != nil {
		eventRepo = repository.NewEventRepository(pool)
		registrationRepo = repository.NewRegistrationRepository(pool)
		operatorRepo = repository.NewOperatorRepository(pool)
	} else {
		logger.Warn("no postgres pool; events, registrations and operators are kept in memory")
		eventRepo = repository.NewMemoryEventRepository()
		registrationRepo = repository.NewMemoryRegistrationRepository()
		operatorRepo = repository.NewMemoryOperatorRepository()
	}

	qrOpts, err := qrtoken.OptionsFromConfig(cfg.QR)
	if err != nil {
		logger.Fatal("invalid qr settings", zap.Error(err))
	}

	var images service.ImageStore
	if cfg.S3.Bucket != "" {
		s3, err := storage.NewS3(ctx, cfg.S3, logger)
		if err != nil {
			logger.Fatal("failed to init s3", zap.Error(err))
		}
		images = s3
	}

	issuanceService := service.NewIssuanceService(service.IssuanceDependencies{
		Codec:      qrtoken.NewCodec(qrOpts),
		Images:     images,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Window:     cfg.Checkin.TokenTTL(),
	})
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo: eventRepo,
		PublicURL: cfg.App.PublicURL,
		Logger:    logger,
	})
	registrationService := service.NewRegistrationService(service.RegistrationDependencies{
		RegistrationRepo: registrationRepo,
		EventRepo:        eventRepo,
		Issuance:         issuanceService,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		OperatorRepo: operatorRepo,
		Sessions:     sessions,
		Logger:       logger,
	})
	if err := authService.Bootstrap(ctx); err != nil {
		logger.Fatal("failed to bootstrap operator", zap.Error(err))
	}

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, publisher, dispatcher)

	validator := checkin.NewValidator(consumptions, cfg.Checkin.TokenTTL(), dispatcher, metrics, logger)

	checks := map[string]handlers.Pinger{"ledger": consumptions}
	if pool != nil {
		checks["postgres"] = pg
	}
	if redis.Available || cfg.Checkin.LedgerBackend == config.BackendRedis || cfg.Checkin.SessionBackend == config.BackendRedis {
		checks["redis"] = redis
	}
	if mongo.Database() != nil {
		checks["mongo"] = mongo
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Events:         handlers.NewEventsHandler(eventService),
		Registrations:  handlers.NewRegistrationsHandler(registrationService),
		Tokens:         handlers.NewTokensHandler(issuanceService),
		Checkin:        handlers.NewCheckinHandler(validator),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), sessions, operatorRepo),
	})

	logger.Info("starting checkin service",
		zap.String("addr", cfg.App.Addr()),
		zap.String("ledger", cfg.Checkin.LedgerBackend),
		zap.String("sessions", cfg.Checkin.SessionBackend),
		zap.Duration("token_ttl", cfg.Checkin.TokenTTL()),
	)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
