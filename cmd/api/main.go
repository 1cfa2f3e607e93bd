package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/srgjo27/ticket_storefront/internal/adapter/handler"
	"github.com/srgjo27/ticket_storefront/internal/adapter/orderapi"
	"github.com/srgjo27/ticket_storefront/internal/adapter/queue"
	"github.com/srgjo27/ticket_storefront/internal/adapter/repository/memory"
	"github.com/srgjo27/ticket_storefront/internal/adapter/repository/postgres"
	redisrepo "github.com/srgjo27/ticket_storefront/internal/adapter/repository/redis"
	"github.com/srgjo27/ticket_storefront/internal/core/ports"
	"github.com/srgjo27/ticket_storefront/internal/core/services"
	"github.com/srgjo27/ticket_storefront/internal/platform/config"
	"github.com/srgjo27/ticket_storefront/internal/platform/database"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	snapshots, janitor, closeStore, err := openSnapshotStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	api := orderapi.NewClient(orderapi.Config{
		BaseURL: cfg.OrderAPIURL,
		Timeout: cfg.OrderAPITimeout,
	}, logger)

	var publisher ports.OrderEventPublisher
	if cfg.RabbitMQURL != "" {
		publisher = queue.NewOrderPublisher(cfg.RabbitMQURL, logger)
		logger.Info("order confirmations will be published", "queue", queue.OrderConfirmedQueue)
	}

	registry := services.NewCartRegistry(snapshots, api, publisher, logger, services.RegistryConfig{
		IdleTimeout:   cfg.CartIdleTTL,
		SubmitTimeout: cfg.OrderAPITimeout,
	})

	go registry.RunIdleEviction(ctx)
	if janitor != nil {
		go janitor.RunBackgroundCleanup(ctx)
	}

	// checkout may take the whole order API timeout
	requestTimeout := cfg.OrderAPITimeout + 10*time.Second

	router := handler.NewRouter(handler.RouterConfig{
		Cart:           handler.NewCartHandler(registry, api, logger),
		Catalog:        handler.NewCatalogHandler(api, api, logger),
		Favorites:      handler.NewFavoritesHandler(services.NewFavoritesService(api, logger), logger),
		Logger:         logger,
		SecureCookie:   cfg.SessionCookieSecure,
		RequestTimeout: requestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.HTTPPort, "snapshot_store", cfg.SnapshotStore, "order_api", cfg.OrderAPIURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server startup failed: %w", err)
	}

	logger.Info("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// openSnapshotStore connects the configured cart snapshot backend. The
// janitor is only returned for stores without native key expiry.
func openSnapshotStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.CartSnapshotStore, *services.SnapshotJanitor, func(), error) {
	switch cfg.SnapshotStore {
	case config.StoreRedis:
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}

		return redisrepo.NewCartSnapshotRepository(client, cfg.CartTTL), nil, closer(client, logger), nil

	case config.StorePostgres:
		db, err := database.NewPostgresDB(database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}

		if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logger.Info("migrations applied", "dir", cfg.MigrationsDir)

		repo := postgres.NewCartSnapshotRepository(db)
		janitor := services.NewSnapshotJanitor(repo, cfg.CartTTL, time.Hour, logger)
		return repo, janitor, closer(db, logger), nil

	default:
		logger.Warn("using in-memory cart snapshots; carts are lost on restart")
		return memory.NewCartSnapshotRepository(), nil, func() {}, nil
	}
}

type closable interface {
	Close() error
}

func closer(c closable, logger *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close connection", "error", err)
		}
	}
}
