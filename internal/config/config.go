package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers      []string
	KafkaRequestTopic string
	KafkaResultTopic  string
	KafkaGroupID      string
	HTTPAddr          string
	LogLevel          string
	LogFormat         string
	ShutdownTimeout   time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Compute engine configuration.
	ComputeWorkers  int // 0 sizes the worker pool to the number of CPUs
	CacheEnabled    bool
	ResultCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseIntRange("BATCH_SIZE", 50, 1, 1000)
	if err != nil {
		return nil, err
	}

	workers, err := parseIntRange("COMPUTE_WORKERS", 0, 0, 1024)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseIntRange("RESULT_CACHE_SIZE", 256, 1, 1000000)
	if err != nil {
		return nil, err
	}

	cacheEnabled := true
	if v := os.Getenv("RESULT_CACHE_ENABLED"); v != "" {
		cacheEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:      parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic: envOrDefault("KAFKA_REQUEST_TOPIC", "directivity-requests"),
		KafkaResultTopic:  envOrDefault("KAFKA_RESULT_TOPIC", "directivity-results"),
		KafkaGroupID:      envOrDefault("KAFKA_GROUP_ID", "directivity-engine"),
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ComputeWorkers:  workers,
		CacheEnabled:    cacheEnabled,
		ResultCacheSize: cacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaRequestTopic == "" {
		return nil, errors.New("KAFKA_REQUEST_TOPIC is required")
	}
	if cfg.KafkaResultTopic == "" {
		return nil, errors.New("KAFKA_RESULT_TOPIC is required")
	}

	return cfg, nil
}

// envOrDefault returns the environment value for key, or def when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parsePositiveDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseIntRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: %q (want %d to %d)", key, s, lo, hi)
	}
	return n, nil
}
