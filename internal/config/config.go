// Package config loads runtime tunables from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"rinse/internal/security"
)

type Config struct {
	// Input ceilings.
	MaxFileSize  int64
	MaxDimension int
	MaxPixels    int

	// Strip behavior.
	JPEGQuality int

	// Batch processing bounds.
	Workers             int
	MaxConcurrentStrips int
	RateLimitPerMinute  int
	DigestCacheSize     int

	LogLevel string
}

// Load reads configuration from the environment. A missing .env file
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	limits := security.DefaultLimits()
	cfg := &Config{
		MaxFileSize:         limits.MaxFileSize,
		MaxDimension:        limits.MaxDimension,
		MaxPixels:           limits.MaxPixels,
		JPEGQuality:         95,
		Workers:             runtime.NumCPU(),
		MaxConcurrentStrips: 3,
		RateLimitPerMinute:  600,
		DigestCacheSize:     500,
		LogLevel:            getEnv("RINSE_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.MaxFileSize, err = getEnvInt64("RINSE_MAX_FILE_SIZE", cfg.MaxFileSize); err != nil {
		return nil, err
	}
	if cfg.MaxDimension, err = getEnvInt("RINSE_MAX_DIMENSION", cfg.MaxDimension); err != nil {
		return nil, err
	}
	if cfg.MaxPixels, err = getEnvInt("RINSE_MAX_PIXELS", cfg.MaxPixels); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality, err = getEnvInt("RINSE_JPEG_QUALITY", cfg.JPEGQuality); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getEnvInt("RINSE_WORKERS", cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentStrips, err = getEnvInt("RINSE_MAX_STRIPS", cfg.MaxConcurrentStrips); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RINSE_RATE_LIMIT", cfg.RateLimitPerMinute); err != nil {
		return nil, err
	}

	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("RINSE_JPEG_QUALITY must be between 1 and 100, got %d", cfg.JPEGQuality)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxConcurrentStrips < 1 {
		cfg.MaxConcurrentStrips = 1
	}

	return cfg, nil
}

// Limits returns the security ceilings this configuration encodes.
func (c *Config) Limits() security.Limits {
	return security.Limits{
		MaxFileSize:  c.MaxFileSize,
		MaxDimension: c.MaxDimension,
		MaxPixels:    c.MaxPixels,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
