// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Run modes.
const (
	modeServe      = "serve"
	modePrecompute = "precompute"
	modeStats      = "stats"
)

// errUnknownMode is returned for an unsupported -mode value.
var errUnknownMode = errors.New("unknown mode")

type options struct {
	configPath string
	mode       string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("animerec", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "", "path to config.yaml (default: search standard locations)")
	fs.StringVar(&opts.mode, "mode", modeServe, "run mode: serve, precompute or stats")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	switch opts.mode {
	case modeServe, modePrecompute, modeStats:
	default:
		return opts, fmt.Errorf("%w: %q", errUnknownMode, opts.mode)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.LoggingConfig())
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts.mode); err != nil {
		stop()
		logging.Fatal().Err(err).Str("mode", opts.mode).Msg("Animerec exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, mode string) error {
	logger := logging.Logger()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if mode == modeStats {
		return printStats(ctx, a, cfg, os.Stdout)
	}

	logging.Info().
		Str("backend", cfg.Data.Backend).
		Str("ratings", cfg.Data.RatingsLocation).
		Str("anime", cfg.Data.AnimeLocation).
		Msg("Building recommendation snapshot")

	if err := a.engine.Load(ctx, a.source); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	switch mode {
	case modePrecompute:
		svc := services.NewPrecomputeService(a.engine, a.precomputeConfig(), logger)
		result, err := svc.RunOnce(ctx)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, result)
	default:
		return serve(ctx, a, cfg)
	}
}

func printStats(ctx context.Context, a *app, cfg *config.Config, w io.Writer) error {
	if err := a.importDatabase(ctx); err != nil {
		return fmt.Errorf("import dataset: %w", err)
	}
	stats, err := a.stats.Stats(ctx, cfg.Matrix.MinRatingsPerItem, cfg.Matrix.MaxRatingsPerUser)
	if err != nil {
		return fmt.Errorf("dataset statistics: %w", err)
	}
	return writeJSON(w, stats)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
