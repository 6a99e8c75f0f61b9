package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetSource   string
	DatasetTimeout  time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Analysis defaults.
	ForecastYears     []int
	AnalysisCacheSize int
	BatchSize         int

	// Kafka forecast publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaForecastTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	datasetTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("DATASET_TIMEOUT", "10s"))
	if err != nil || datasetTimeout <= 0 {
		return nil, errors.New("invalid DATASET_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	years, err := domain.ParseYears(sharedcfg.EnvOrDefault("FORECAST_YEARS", "2023,2024,2025,2026,2027"))
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_YEARS: %w", err)
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	kafkaEnabled := os.Getenv("KAFKA_BROKERS") != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DatasetSource:   sharedcfg.EnvOrDefault("DATASET_SOURCE", "young_population.csv"),
		DatasetTimeout:  datasetTimeout,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ForecastYears:     years,
		AnalysisCacheSize: cacheSize,
		BatchSize:         batchSize,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaForecastTopic: sharedcfg.EnvOrDefault("KAFKA_FORECAST_TOPIC", "population-forecasts"),
	}

	if cfg.DatasetSource == "" {
		return nil, errors.New("DATASET_SOURCE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaForecastTopic == "" {
		return nil, errors.New("KAFKA_FORECAST_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}

func parseCacheSize() (int, error) {
	s := os.Getenv("ANALYSIS_CACHE_SIZE")
	if s == "" {
		return 256, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid ANALYSIS_CACHE_SIZE")
	}
	return n, nil
}
