// Command courierd runs a Courier relay as a standalone service: the admin
// API, a Prometheus scrape endpoint and optional Redis-backed history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/courier"
	"github.com/xraph/courier/api"
	"github.com/xraph/courier/history"
	"github.com/xraph/courier/observability"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	if err := run(*configPath, *addr, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "courierd:", err)
		os.Exit(1)
	}
}

func run(configPath, addr, logLevel string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	lvl, err := cfg.level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []courier.Option{
		courier.WithConfig(cfg.Relay),
		courier.WithLogger(logger),
		courier.WithMetrics(observability.NewMetrics(reg)),
		courier.WithTracer(observability.NewTracer()),
	}

	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := history.NewRedisStore(rdb,
			history.WithKey(cfg.Redis.Key),
			history.WithMaxEntries(cfg.Relay.MaxHistoryEntries),
		)
		defer store.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := store.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("redis history store: %w", err)
		}
		opts = append(opts, courier.WithHistoryStore(store))
		logger.Info("using redis history store", "addr", cfg.Redis.Addr, "key", store.Key())
	}

	relay, err := courier.New(opts...)
	if err != nil {
		return err
	}

	for i, sc := range cfg.Subscriptions {
		sub, err := relay.Register(sc.input())
		if err != nil {
			return fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
		logger.Info("subscription loaded", "subscription_id", sub.ID, "url", sub.URL)
	}

	mux := http.NewServeMux()
	api.NewHandler(relay, logger).Mount(mux, cfg.Prefix)
	if cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("courierd listening", "addr", cfg.Addr, "prefix", cfg.Prefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	relay.Stop(shutdownCtx)
	return nil
}
