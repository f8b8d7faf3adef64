package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arkalab/tropiiify"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "tropiiify",
	Short: "Export Tropy items as a static IIIF presentation",
	Long: `tropiiify turns a Tropy JSON-LD export into a static IIIF site: one
Presentation 3 manifest per item, thumbnail, midsize and tile pyramid per
photo, and a collection at index.json.

Quick start:
  tropiiify export items.json --out ./site
  tropiiify serve ./site

Templates:
  tropiiify templates import letter.ttp
  tropiiify export items.json --template https://example.org/templates/letter`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
}

// loadConfig reads the config file and environment, then applies the
// global flags.
func loadConfig() (tropiiify.Config, error) {
	cfg, err := tropiiify.LoadConfig(cfgFile)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format == "json" {
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// newApp builds the exporter from cfg with a logger on stderr.
func newApp(cfg tropiiify.Config, opts ...tropiiify.Option) *tropiiify.App {
	log := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return tropiiify.New(cfg, append([]tropiiify.Option{tropiiify.WithLogger(log)}, opts...)...)
}
