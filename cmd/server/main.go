package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/snapgram/backend/internal/cache"
	"github.com/anonto42/snapgram/backend/internal/events"
	"github.com/anonto42/snapgram/backend/internal/queries"
	"github.com/anonto42/snapgram/backend/internal/remote"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/router"
	"github.com/anonto42/snapgram/backend/internal/tokens"
	"github.com/anonto42/snapgram/backend/pkg/config"
	"github.com/anonto42/snapgram/backend/pkg/firebase"
	"github.com/anonto42/snapgram/backend/pkg/kafkax"
	"github.com/anonto42/snapgram/backend/pkg/redisx"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func initOTEL(ctx context.Context, endpoint, env string) func(context.Context) error {
	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Fatalf("Failed to create OTLP exporter: %v", err)
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", "snapgram-api"),
		attribute.String("deployment.environment", env),
	))
	if err != nil {
		log.Printf("Failed to merge OTel resource: %v", err)
		res = resource.Default()
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	log.Println("OpenTelemetry tracing enabled.")
	return tp.Shutdown
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	// Load configuration
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown := initOTEL(ctx, cfg.OTLPEndpoint, cfg.Env)
		defer func() {
			c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(c)
		}()
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// --- Initialize Repositories ---
	accountRepo := repositories.NewPostgresAccountRepository(db.Postgres)
	if err := accountRepo.Migrate(); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	userRepo := repositories.NewMongoUserRepository(db.Documents)
	postRepo := repositories.NewMongoPostRepository(db.Documents)
	savedPostRepo := repositories.NewMongoSavedPostRepository(db.Documents)
	for name, ensure := range map[string]func(context.Context) error{
		"users": userRepo.EnsureIndexes,
		"posts": postRepo.EnsureIndexes,
		"saves": savedPostRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatalf("Failed to create %s indexes: %v", name, err)
		}
	}
	log.Println("MongoDB indexes ensured.")

	files, err := storage.NewMinio(ctx, storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		Bucket:    cfg.MinioBucket,
	})
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	deps := remote.Deps{
		Accounts:   accountRepo,
		Users:      userRepo,
		Posts:      postRepo,
		Saves:      savedPostRepo,
		Files:      files,
		Signer:     tokens.NewSigner(cfg.JWTSecret),
		PublicURL:  cfg.PublicURL,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger.With("component", "remote"),
	}

	// Initialize Firebase
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		deps.Firebase = firebaseApp.AuthClient
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, federated sign-in disabled.")
	}

	cacheOpts := []cache.Option{
		cache.WithStaleTime(cfg.CacheStaleTime),
		cache.WithGCTime(cfg.CacheGCTime),
		cache.WithMetrics(cache.NewMetrics(prometheus.DefaultRegisterer)),
		cache.WithLogger(logger.With("component", "cache")),
	}
	if cfg.RedisAddr != "" {
		rdb, err := redisx.Connect(cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer rdb.Close()
		cacheOpts = append(cacheOpts, cache.WithBus(redisx.NewBus(rdb, redisx.DefaultChannel)))
	} else {
		log.Println("REDIS_ADDR not set, cache invalidations stay local.")
	}
	queryCache := cache.New(cacheOpts...)
	defer queryCache.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaBrokers != "" {
		writer := kafkax.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer writer.Close()
		publisher = events.NewKafkaPublisher(writer)
		log.Printf("Publishing mutation events to Kafka topic %s.", cfg.KafkaTopic)
	}

	q := queries.New(queryCache, remote.New(deps), publisher, logger.With("component", "queries"))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	config.SetupMiddleware(e, logger)

	// Setup routes and dependencies
	router.SetupRoutes(e, q, deps.Signer, promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(e, "snapgram-api"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Printf("snapgram-api listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
