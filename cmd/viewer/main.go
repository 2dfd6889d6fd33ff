package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-altitude-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-altitude-map/internal/adapter/kafka"
	"github.com/couchcryptid/storm-altitude-map/internal/adapter/source"
	"github.com/couchcryptid/storm-altitude-map/internal/adapter/websocket"
	"github.com/couchcryptid/storm-altitude-map/internal/config"
	"github.com/couchcryptid/storm-altitude-map/internal/domain"
	"github.com/couchcryptid/storm-altitude-map/internal/observability"
	"github.com/couchcryptid/storm-altitude-map/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	points := source.NewLoader(cfg.PointsSource, cfg.SourceTimeout, logger)
	var wind pipeline.Source
	if cfg.WindSource != "" {
		wind = source.NewLoader(cfg.WindSource, cfg.SourceTimeout, logger)
	}

	// A failed load still serves the API so /readyz can report the error.
	loaded, loadErr := pipeline.Load(ctx, points, wind, domain.NormalizeOptions{FlagColumn: cfg.FlagColumn}, logger, metrics)
	if loadErr != nil {
		logger.Error("initial load failed", "source", points.Location(), "error", loadErr)
	}

	hub := websocket.NewHub(logger, nil)
	renderers := []pipeline.Renderer{hub}

	// Frame publishing is feature-flagged via KAFKA_ENABLED.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		renderers = append(renderers, writer)
		logger.Info("kafka frame publishing enabled", "topic", cfg.KafkaRenderTopic)
	} else {
		logger.Info("kafka frame publishing disabled")
	}

	initial := domain.DefaultFilterState()
	initial.DownsampleCap = cfg.DownsampleCap

	session := pipeline.NewSession(loaded.Points, logger, metrics, pipeline.Options{
		Debounce:      cfg.DebounceInterval,
		Seed:          cfg.SampleSeed,
		RenderTimeout: cfg.RenderTimeout,
		Initial:       &initial,
		Wind:          loaded.Wind,
		LoadError:     loadErr,
	}, renderers...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, session, hub, logger)

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

	session.Close()
	hub.Close()
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
