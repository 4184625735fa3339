package main

import (
	"context"
	"errors"
	"lane-posting-service/internal/adapters/cache"
	"lane-posting-service/internal/adapters/repositories"
	"lane-posting-service/internal/api"
	"lane-posting-service/internal/config"
	"lane-posting-service/internal/platform/db"
	"lane-posting-service/internal/platform/obs"
	"lane-posting-service/internal/ports"
	"lane-posting-service/internal/services/generation"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_FILE", ""))
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = obs.WithLogger(ctx, logger)

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	conn, err := db.Open(ctx, cfg.Database.URL, db.DefaultPoolOptions())
	if err != nil {
		return err
	}
	defer conn.Close()

	cities := repositories.NewPostgresCityRepository(conn)
	lanes := repositories.NewPostgresLaneRepository(conn)
	var rates ports.RateRepository = repositories.NewPostgresRateRepository(conn)

	// Rate matrices are shared by every batch; Redis keeps them warm across requests.
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		cached, err := cache.NewRedisRateCache(client, rates, cfg.Redis.RateTTL)
		if err != nil {
			return err
		}
		rates = cached
		logger.Info("rate cache enabled", zap.String("redis_addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.RateTTL))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := obs.MultiRecorder{
		obs.NewLogRecorder(logger),
		obs.NewPrometheusRecorder(registry, ""),
	}

	orch := generation.NewOrchestrator(cities, rates, lanes, cfg.Scoring, recorder)
	router := api.NewRouter(api.Deps{
		Generator: orch,
		Source:    lanes,
		Defaults:  cfg.Generation,
		Logger:    logger,
		Gatherer:  registry,
	})

	// Write timeout covers large batches with cold reference data.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
