package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Default datasets from the 2023-09-24 Houston LMA case.
const (
	DefaultPointsSource = "https://raw.githubusercontent.com/kyo330/HLMA/main/filtered_LYLOUT_230924_210000_0600.csv"
	DefaultWindSource   = "https://raw.githubusercontent.com/kyo330/HLMA/main/230924_rpts_wind.csv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Ingestion.
	PointsSource  string
	WindSource    string
	SourceTimeout time.Duration
	FlagColumn    string

	// Session behaviour.
	DebounceInterval time.Duration
	SampleSeed       uint64
	DownsampleCap    int
	RenderTimeout    time.Duration

	// Kafka frame publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaRenderTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := parsePositiveDuration("SOURCE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	debounce, err := parsePositiveDuration("DEBOUNCE_INTERVAL", "200ms")
	if err != nil {
		return nil, err
	}
	renderTimeout, err := parsePositiveDuration("RENDER_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SAMPLE_SEED", "1"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SAMPLE_SEED")
	}

	downsampleCap, err := strconv.Atoi(sharedcfg.EnvOrDefault("DOWNSAMPLE_CAP", "0"))
	if err != nil || downsampleCap < 0 {
		return nil, errors.New("invalid DOWNSAMPLE_CAP")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PointsSource:  sharedcfg.EnvOrDefault("POINTS_SOURCE", DefaultPointsSource),
		WindSource:    envOrDefaultAllowEmpty("WIND_SOURCE", DefaultWindSource),
		SourceTimeout: sourceTimeout,
		FlagColumn:    sharedcfg.EnvOrDefault("FLAG_COLUMN", "overshooting"),

		DebounceInterval: debounce,
		SampleSeed:       seed,
		DownsampleCap:    downsampleCap,
		RenderTimeout:    renderTimeout,

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRenderTopic: sharedcfg.EnvOrDefault("KAFKA_RENDER_TOPIC", "altitude-render-frames"),
	}

	if cfg.PointsSource == "" {
		return nil, errors.New("POINTS_SOURCE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaRenderTopic == "" {
		return nil, errors.New("KAFKA_RENDER_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// envOrDefaultAllowEmpty distinguishes an unset variable from one set to ""
// so an operator can switch an optional source off.
func envOrDefaultAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
