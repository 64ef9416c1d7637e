package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Fatalf("MaxFileSize = %d", cfg.MaxFileSize)
	}
	if cfg.MaxDimension != 50000 {
		t.Fatalf("MaxDimension = %d", cfg.MaxDimension)
	}
	if cfg.MaxPixels != 100_000_000 {
		t.Fatalf("MaxPixels = %d", cfg.MaxPixels)
	}
	if cfg.JPEGQuality != 95 {
		t.Fatalf("JPEGQuality = %d", cfg.JPEGQuality)
	}
	if cfg.Workers < 1 {
		t.Fatalf("Workers = %d", cfg.Workers)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RINSE_MAX_FILE_SIZE", "1048576")
	t.Setenv("RINSE_MAX_DIMENSION", "2000")
	t.Setenv("RINSE_MAX_PIXELS", "4000000")
	t.Setenv("RINSE_JPEG_QUALITY", "80")
	t.Setenv("RINSE_WORKERS", "2")
	t.Setenv("RINSE_MAX_STRIPS", "1")
	t.Setenv("RINSE_RATE_LIMIT", "10")
	t.Setenv("RINSE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.MaxFileSize != 1048576 || cfg.MaxDimension != 2000 || cfg.MaxPixels != 4000000 {
		t.Fatalf("limits not applied: %+v", cfg)
	}
	if cfg.JPEGQuality != 80 || cfg.Workers != 2 || cfg.MaxConcurrentStrips != 1 || cfg.RateLimitPerMinute != 10 {
		t.Fatalf("tunables not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}

	limits := cfg.Limits()
	if limits.MaxFileSize != 1048576 || limits.MaxDimension != 2000 || limits.MaxPixels != 4000000 {
		t.Fatalf("Limits() mismatch: %+v", limits)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("RINSE_MAX_FILE_SIZE", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsQualityOutOfRange(t *testing.T) {
	t.Setenv("RINSE_JPEG_QUALITY", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected quality range error")
	}
}

func TestLoadClampsWorkerFloors(t *testing.T) {
	t.Setenv("RINSE_WORKERS", "-3")
	t.Setenv("RINSE_MAX_STRIPS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 1 || cfg.MaxConcurrentStrips != 1 {
		t.Fatalf("floors not applied: %+v", cfg)
	}
}
