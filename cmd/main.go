package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/audio-vault/internal/config"
	"github.com/sbilibin2017/audio-vault/internal/events"
	"github.com/sbilibin2017/audio-vault/internal/handlers"
	"github.com/sbilibin2017/audio-vault/internal/jwt"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/middlewares"
	"github.com/sbilibin2017/audio-vault/internal/migrations"
	"github.com/sbilibin2017/audio-vault/internal/repositories"
	"github.com/sbilibin2017/audio-vault/internal/router"
	"github.com/sbilibin2017/audio-vault/internal/services"
	"github.com/sbilibin2017/audio-vault/internal/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title audio-vault API
// @version 1.0.0
// @description Per-user audio file storage with role-based account management
// @host localhost:3000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// audioStore picks S3 when credentials are configured and the local
// filesystem otherwise. The returned message is reported on upload.
func audioStore(ctx context.Context, cfg *config.Config) (services.AudioStore, string, error) {
	if cfg.Storage.S3.Enabled() {
		client, err := storage.NewS3Client(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, "", err
		}
		logger.Log.Infow("Using S3 audio storage", "bucket", cfg.Storage.S3.Bucket, "region", cfg.Storage.S3.Region)
		return storage.NewS3Store(client, cfg.Storage.S3, cfg.Storage.MaxUploadBytes), "File uploaded to S3", nil
	}
	if err := os.MkdirAll(cfg.Storage.AudioDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create audio dir: %w", err)
	}
	logger.Log.Infow("Using local audio storage", "dir", cfg.Storage.AudioDir)
	return storage.NewLocalStore(cfg.Storage.AudioDir, cfg.Storage.MaxUploadBytes), "File uploaded locally", nil
}

// run initializes the logger, database, Redis, Kafka, file storage and
// HTTP server, then blocks until a shutdown signal or server error.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.Postgres.Host, "port", cfg.Postgres.Port, "db", cfg.Postgres.DB)
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}
	if err := migrations.Up(ctx, db.DB); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka is optional; the publisher drops events without a writer.
	var writer events.KafkaWriter
	if w := events.NewKafkaWriter(cfg.Kafka); w != nil {
		logger.Log.Infow("Publishing events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		writer = w
	}
	publisher := events.NewPublisher(writer)
	defer publisher.Close()

	store, uploadMessage, err := audioStore(ctx, cfg)
	if err != nil {
		return err
	}

	tokens := jwt.New(jwt.WithSecretKey(cfg.JWT.Secret), jwt.WithExpiration(cfg.JWT.Expiration))

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)
	revocations := repositories.NewTokenRevocationRepository(rdb)

	// Initialize services
	userService := services.NewUserService(userReadRepo, userWriteRepo, tokens, revocations, publisher)
	audioService := services.NewAudioService(store, publisher)

	if err := userService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	handler := router.New(router.Deps{
		Users:       userService,
		Audio:       audioService,
		Tokener:     tokens,
		Revocations: revocations,
		DB:          db,
		HealthChecks: map[string]handlers.HealthChecker{
			"postgres": handlers.HealthCheckFunc(db.PingContext),
			"redis": handlers.HealthCheckFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		UploadMessage:  uploadMessage,
		SwaggerURL:     fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
