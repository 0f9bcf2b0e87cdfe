// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"query-intent-workers/internal/common/camunda"
	"query-intent-workers/internal/common/config"
	"query-intent-workers/internal/common/database"
	"query-intent-workers/internal/common/logger"
	"query-intent-workers/internal/common/metrics"
	"query-intent-workers/internal/common/observability"
	"query-intent-workers/internal/intent"
	"query-intent-workers/internal/vocabulary"
	"query-intent-workers/pkg/registry"

	bqr "query-intent-workers/internal/workers/query-intent/build-query-result"
	eqc "query-intent-workers/internal/workers/query-intent/extract-query-components"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if err := config.ValidateForWorkers(cfg); err != nil {
		zapLog.Fatal("config invalid for workers", zap.Error(err))
	}

	zapLog = logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, continuing without it", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Vocabulary (Postgres only when configured) ---
	var pg *database.PostgresClient
	if cfg.Vocabulary.Source == config.VocabularySourcePostgres {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	var vocab vocabulary.Set
	err = retryWithBackoff(func() error {
		var err error
		vocab, err = vocabulary.Load(ctx, cfg.Vocabulary, pgDB(pg), log)
		return err
	}, 5, time.Second, zapLog, "Vocabulary load")
	if err != nil {
		zapLog.Fatal("vocabulary load failed", zap.Error(err))
	}

	// --- Record cache (optional) ---
	var cache *database.RedisClient
	if cfg.Cache.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			cache, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return cache.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, running without record cache", zap.Error(err))
			if cache != nil {
				cache.Close()
			}
			cache = nil
		} else {
			defer cache.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry unreadable", zap.Error(err))
	}

	builder := newBuilder(cfg, log)
	workers := camunda.NewWorkers(zeebe.Zeebe(), zapLog)

	// --- Register workers ---
	extract, err := eqc.NewHandler(eqc.FromAppConfig(cfg), vocab, reg, obs, log)
	if err != nil {
		zapLog.Fatal("extract handler", zap.Error(err))
	}
	workers.Start(eqc.TaskType, config.GetWorkerConfig(cfg, eqc.TaskType), extract.Handle)

	build, err := bqr.NewHandler(bqr.HandlerOptions{
		Config:        bqr.FromAppConfig(cfg),
		Builder:       builder,
		Vocabulary:    vocab,
		Redis:         redisClient(cache),
		Registry:      reg,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("build handler", zap.Error(err))
	}
	workers.Start(bqr.TaskType, config.GetWorkerConfig(cfg, bqr.TaskType), build.Handle)

	zapLog.Info("workers registered", zap.Strings("taskTypes", workers.Started()))

	// --- Health / Metrics ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{
			"status":     "ready",
			"time":       time.Now().Format(time.RFC3339),
			"vocabulary": vocab.Fingerprint().String(),
		}
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status["status"] = "not ready"
			status["zeebe"] = err.Error()
			writeStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				status["cache"] = "degraded"
			}
		}
		writeStatus(w, http.StatusOK, status)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), camunda.StopTimeout)
	defer cancel()

	workers.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func newBuilder(cfg *config.Config, log logger.Logger) *intent.Builder {
	loc := cfg.Query.Location()
	return intent.NewBuilder(
		intent.WithMatcher(intent.NewMatcher(cfg.Query.FuzzyThreshold)),
		intent.WithResolver(intent.Resolver{NormalizeAbsolute: cfg.Query.NormalizeAbsoluteDates}),
		intent.WithClock(func() time.Time { return time.Now().In(loc) }),
		intent.WithLogger(log.WithFields(map[string]interface{}{"component": "builder"})),
		intent.WithRecorder(metrics.NewPipelineRecorder()),
	)
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
