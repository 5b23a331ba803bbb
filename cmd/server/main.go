// Command server runs the weather dashboard API: geocoding, forecasts with
// vigilance classification, and historical queries, with snapshots archived
// to disk and optionally published to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/Chahinez-moualek/meteo-expert-m2/internal/adapter/http"
	kafkaadapter "github.com/Chahinez-moualek/meteo-expert-m2/internal/adapter/kafka"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/adapter/openmeteo"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/archive"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/config"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/observability"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/pipeline"
)

func main() {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := openmeteo.NewClient(cfg, metrics, logger)

	opts := pipeline.Options{
		Geocoder:      client,
		Forecaster:    client,
		Historian:     client,
		GeocodeTTL:    cfg.GeocodeTTL,
		ForecastTTL:   cfg.ForecastTTL,
		HistoricalTTL: cfg.HistoricalTTL,
		Logger:        logger,
		Metrics:       metrics,
	}

	if cfg.DiskArchiveEnabled {
		disk := archive.NewDiskArchiver(cfg.DataDir, logger)
		opts.Archivers = append(opts.Archivers, disk)
		opts.History = disk
		opts.Searches = disk
		logger.Info("disk archiving enabled", "data_dir", cfg.DataDir)
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Archivers = append(opts.Archivers, writer)
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka snapshot publishing disabled")
	}

	p := pipeline.New(opts)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
