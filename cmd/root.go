package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rinse/internal/config"
	"rinse/internal/guard"
	"rinse/internal/metadata"
	"rinse/internal/security"
)

var rootCmd = &cobra.Command{
	Use:   "rinse",
	Short: "rinse 🧽 - inspect and strip identifying metadata from images",
	Long:  "rinse 🧽 is a hardened CLI for inspecting and stripping EXIF metadata from JPEG and TIFF images.",
}

var verbose bool

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

// environment bundles the wired components every subcommand needs.
type environment struct {
	cfg     *config.Config
	log     zerolog.Logger
	handler *metadata.Handler
	guard   *guard.Guard
}

func buildEnvironment() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	validator := security.NewValidator(cfg.Limits(), log)
	handler := metadata.NewHandler(validator, log)
	handler.Stripper().Quality = cfg.JPEGQuality

	return &environment{
		cfg:     cfg,
		log:     log,
		handler: handler,
		guard:   guard.New(cfg.RateLimitPerMinute, cfg.DigestCacheSize, cfg.MaxConcurrentStrips),
	}, nil
}
