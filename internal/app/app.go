package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/neighborly/internal/cache"
	"github.com/utafrali/neighborly/internal/config"
	"github.com/utafrali/neighborly/internal/event"
	handler "github.com/utafrali/neighborly/internal/handler/http"
	"github.com/utafrali/neighborly/internal/identity"
	"github.com/utafrali/neighborly/internal/migrations"
	"github.com/utafrali/neighborly/internal/repository"
	"github.com/utafrali/neighborly/internal/repository/postgres"
	"github.com/utafrali/neighborly/internal/scoring"
	"github.com/utafrali/neighborly/internal/search"
	"github.com/utafrali/neighborly/internal/service"
	"github.com/utafrali/neighborly/pkg/database"
	"github.com/utafrali/neighborly/pkg/health"
	"github.com/utafrali/neighborly/pkg/httpclient"
	pkgkafka "github.com/utafrali/neighborly/pkg/kafka"
	"github.com/utafrali/neighborly/pkg/middleware"
	"github.com/utafrali/neighborly/pkg/tracing"
)

// ServiceName identifies this service in logs, metrics and traces.
const ServiceName = "review-service"

const (
	submitKeyPrefix = "review:submit:"
	eventSeenPrefix = "event:seen:"
)

// App wires together all dependencies and runs the review service.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	pool        *pgxpool.Pool
	redis       *redis.Client
	producer    *pkgkafka.Producer
	consumer    *pkgkafka.Consumer
	dlq         *pkgkafka.DeadLetterQueue
	limiter     *middleware.RateLimiter
	httpServer  *http.Server
	stopTracing tracing.Shutdown
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Tracing.
	stopTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)

	// PostgreSQL.
	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		URL:             cfg.PostgresDSN(),
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		if err != nil {
			pool.Close()
		}
	}()
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Redis.
	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		if err != nil {
			_ = rdb.Close()
		}
	}()
	logger.Info("connected to Redis")

	// Metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		database.NewPoolCollector(database.PgxPoolStats(pool), ServiceName),
	)
	if err := pkgkafka.RegisterMetrics(reg); err != nil {
		return nil, fmt.Errorf("register kafka metrics: %w", err)
	}
	if err := httpclient.RegisterMetrics(reg); err != nil {
		return nil, fmt.Errorf("register circuit breaker metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(ServiceName, reg)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	// Kafka.
	producer := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Repositories and caches.
	pgAddresses := postgres.NewAddressRepository(pool)
	var addressRepo repository.AddressRepository = pgAddresses
	reviewRepo := postgres.NewReviewRepository(pool)
	questionRepo := postgres.NewQuestionRepository(pool)
	answerRepo := postgres.NewAnswerRepository(pool)

	summaries := cache.NewSummaryCache(rdb, cfg.SummaryCacheTTL())
	submissions := cache.NewIdempotencyStore(rdb, submitKeyPrefix, cfg.IdempotencyTTL())
	seenEvents := cache.NewIdempotencyStore(rdb, eventSeenPrefix, cfg.IdempotencyTTL())

	// Optional Elasticsearch address index.
	var indexer event.AddressIndexer
	var searchEngine *search.Engine
	if cfg.ElasticsearchURL != "" {
		searchEngine, err = search.New(ctx, cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch: %w", err)
		}
		addressRepo = search.WithSuggestions(pgAddresses, searchEngine, logger)
		indexer = search.NewIndexer(pgAddresses, reviewRepo, searchEngine, logger)
		logger.Info("elasticsearch address index initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	}

	// Review event projection.
	projector := event.NewProjector(summaries, indexer, logger)
	dlq := pkgkafka.NewDeadLetterQueue(cfg.KafkaBrokers, logger)
	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaConsumerGroup,
		Topics:  projector.Topics(),
	}, pkgkafka.IdempotentHandler(seenEvents, projector.Handle, logger), dlq, logger)

	// Identity provider.
	idpHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("identity-provider"),
		logger,
	)
	directory := identity.NewClient(idpHTTP, cfg.IdPBaseURL, cfg.IdPSecretKey, logger)
	verifier := identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	admins := service.NewAdminPolicy(cfg.AdminSet())
	if !admins.Configured() {
		logger.Warn("no admin emails configured, admin routes are unreachable")
	}

	// Services.
	aggregator := scoring.New(cfg.Location())
	events := event.NewProducer(producer, logger)
	addressService := service.NewAddressService(addressRepo, reviewRepo, aggregator, summaries, logger)
	reviewService := service.NewReviewService(reviewRepo, questionRepo, aggregator, summaries, events, submissions, admins, logger)
	questionService := service.NewQuestionService(questionRepo, events, logger)
	dashboardService := service.NewDashboardService(reviewRepo, questionRepo, answerRepo, addressRepo, aggregator, logger)
	userService := service.NewUserService(directory, reviewRepo, admins, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterOptional("kafka", producer.Ping)
	if searchEngine != nil {
		healthHandler.RegisterOptional("elasticsearch", searchEngine.Ping)
	}

	limiter := middleware.NewRateLimiter(cfg.ReviewRateLimitPerMin, cfg.ReviewRateLimitBurst, logger)
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:   ServiceName,
		Addresses:     addressService,
		Reviews:       reviewService,
		Questions:     questionService,
		Dashboard:     dashboardService,
		Users:         userService,
		Admins:        admins,
		Verifier:      verifier,
		Directory:     directory,
		Health:        healthHandler,
		Metrics:       httpMetrics,
		Gatherer:      reg,
		ReviewLimiter: limiter,
		CORS:          cors,
		PprofCIDRs:    cfg.PprofAllowedCIDRs,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redis:       rdb,
		producer:    producer,
		consumer:    consumer,
		dlq:         dlq,
		limiter:     limiter,
		httpServer:  httpServer,
		stopTracing: stopTracing,
	}, nil
}

// Run starts the HTTP server, the event consumer and the rate limiter
// janitor, then blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go a.limiter.Run(ctx)

	go func() {
		if err := a.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("kafka consumer error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.consumer.Close(); err != nil {
		a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
	}
	if err := a.dlq.Close(); err != nil {
		a.logger.Error("kafka dlq close error", slog.String("error", err.Error()))
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}
	a.pool.Close()

	if err := a.stopTracing(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
