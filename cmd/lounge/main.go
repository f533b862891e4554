package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"smokyloft/internal/booking"
	"smokyloft/internal/cart"
	"smokyloft/internal/config"
	"smokyloft/internal/events"
	"smokyloft/internal/handoff"
	"smokyloft/internal/metrics"
	"smokyloft/internal/notify"
	"smokyloft/internal/storage"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("LOUNGE_CONFIG_PATH"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatal().Err(err).Msg("failed to load config")
		}
		logger.Warn().Msg("config file not found, using defaults")
		cfg = config.Default()
	}

	hallCfg, err := config.LoadHall(cfg.HallConfigPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatal().Err(err).Msg("failed to load hall layout")
		}
		logger.Warn().Msg("hall layout not found, using built-in layout")
		hallCfg = config.DefaultHall()
	}

	port, cleanup, err := openStorage(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open storage error")
	}
	defer cleanup()

	store := booking.NewStore(port, &logger)
	basket := cart.New(port, &logger)
	bus := events.NewEventBus()
	toaster := notify.NewToaster(notify.DefaultTTL)

	var notifier booking.AdminNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.AdminChatID != 0 {
		n, err := handoff.NewBotNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("admin notifier disabled")
		} else {
			notifier = n
		}
	}

	wizard := booking.NewWizard(store, basket, cfg, hallCfg, browserOpener(&logger), notifier, bus, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, port, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if err := store.SeedOnce(); err != nil {
		logger.Error().Err(err).Msg("demo seed failed")
	}

	console := newConsole(cfg, hallCfg, store, basket, wizard, bus, toaster, &logger)
	logger.Info().Str("config", cfg.String()).Str("hall", hallCfg.String()).Msg("lounge console started")
	console.Run(ctx)
}

func openStorage(cfg *config.Config, logger *zerolog.Logger) (storage.Port, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case "file", "":
		p, err := storage.NewFile(cfg.Storage.Dir)
		return p, noop, err
	case "sqlite":
		p, err := storage.NewSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, noop, err
		}
		return p, func() { _ = p.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return storage.NewRedis(client, "smokyloft", 3*time.Second), func() { _ = client.Close() }, nil
	case "memory":
		logger.Warn().Msg("memory backend keeps nothing between runs")
		return storage.NewMemory(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func startHealthServer(ctx context.Context, port int, store storage.Port, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if _, _, err := store.Get("readyz_probe"); err != nil {
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
