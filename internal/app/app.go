package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/http/router"
	natsadapter "github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/repository/memory"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/tracer"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg            *config.Config
	log            *logger.Logger
	server         *http.Server
	metrics        *metrics.MetricsManager
	usecase        *usecase.ListingUsecase
	tracerProvider *sdktrace.TracerProvider
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	publisher      *natsadapter.Publisher
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	appLogger := logger.NewLogger(&logger.LoggerConfig{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputFile: "stdout",
	}).Named(cfg.ServiceName)
	appLogger.Info("Logger initialized", zap.String("storage_driver", cfg.StorageDriver), zap.String("http_port", cfg.HTTPPort))
	if cfg.UsesDefaultSecret() {
		appLogger.Warn("JWT_SECRET is the insecure default, accepted because ALLOW_INSECURE_JWT_SECRET is set")
	}

	a := &App{cfg: cfg, log: appLogger}
	a.tracerProvider = tracer.InitTracer(cfg.ServiceName, cfg.OTELEndpoint, appLogger)
	a.metrics = metrics.NewMetricsManager(cfg.ServiceName)

	store, repo, err := a.initRepository(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	imageHost, err := s3.NewS3Storage(ctx, s3.Options{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
		PublicURL: cfg.MinIOPublicURL,
		MaxBytes:  cfg.ImageMaxBytes,

		FetchTimeout:        cfg.ImageHostTimeout,
		AllowPrivateSources: cfg.ImageAllowPrivateSources,
	}, appLogger)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to initialize image host: %w", err)
	}

	var publisher domain.EventPublisher
	if cfg.NATSURL != "" {
		a.publisher, err = natsadapter.NewPublisher(cfg.NATSURL, cfg.ServiceName, appLogger)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		publisher = a.publisher
	} else {
		appLogger.Info("NATS_URL not set, listing events will not be published")
	}

	var notifier domain.Notifier
	if cfg.MailEnabled() {
		notifier = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	} else {
		appLogger.Info("SMTP credentials not set, listing e-mails are disabled")
	}

	images := usecase.NewImageCoordinator(imageHost, store, cfg.ImageHostTimeout, a.metrics, appLogger)
	a.usecase = usecase.NewListingUsecase(repo, images, publisher, notifier, a.metrics, appLogger)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret, cfg.AuthTimeout)
	listingHandler := handler.NewListingHandler(a.usecase, appLogger)

	a.server = &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router.NewRouter(listingHandler, verifier, a.metrics, appLogger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return a, nil
}

// initRepository returns the backing store and the repository the usecase reads through.
// They are the same unless the Redis cache is enabled.
func (a *App) initRepository(ctx context.Context) (store, repo domain.ListingRepository, err error) {
	switch a.cfg.StorageDriver {
	case config.StorageMongo:
		a.log.Info("Initializing MongoDB client...", zap.String("database", a.cfg.MongoDatabase))
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(a.cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		a.mongoClient = client
		if err := client.Ping(connectCtx, nil); err != nil {
			return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		mongoRepo, err := mongodb.NewListingRepository(connectCtx, client.Database(a.cfg.MongoDatabase), a.log)
		if err != nil {
			return nil, nil, err
		}
		store = mongoRepo
	default:
		a.log.Info("Using in-memory listing repository")
		store = memory.NewListingRepository()
	}

	if !a.cfg.CacheEnabled {
		return store, store, nil
	}
	client, err := cache.NewRedisClient(ctx, a.cfg.RedisAddress, a.cfg.RedisPassword, a.cfg.RedisDB, a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	a.redisClient = client
	return store, cache.NewListingRepository(store, client, a.cfg.CacheTTL, a.log), nil
}

// Run serves HTTP and metrics until SIGINT/SIGTERM, then drains in-flight requests and
// background image work before closing connections.
func (a *App) Run() error {
	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	defer stopMetrics()
	go func() {
		if err := metrics.StartMetricsServer(metricsCtx, a.cfg.MetricsPort, a.log, a.metrics.Registry); err != nil {
			a.log.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server starting", zap.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		a.log.Info("Received shutdown signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			a.log.Error("HTTP server failed", zap.Error(err))
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Error during HTTP server graceful shutdown", zap.Error(err))
	} else {
		a.log.Info("HTTP server stopped")
	}
	stopMetrics()

	a.usecase.Wait()
	a.log.Info("Background image work drained")

	a.close(shutdownCtx)
	a.log.Info("Application shut down successfully")
	return runErr
}

func (a *App) close(ctx context.Context) {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
