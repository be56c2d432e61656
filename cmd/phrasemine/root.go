package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/phrasemine/pkg/phrasemine/config"
	"github.com/cognicore/phrasemine/pkg/phrasemine/metrics"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store/sqlite"
)

var (
	configPath  string
	dbPath      string
	vocabPath   string
	metricsAddr string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "phrasemine",
	Short:         "Extract domain keyphrases from chat messages",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&dbPath, "db", "", "SQLite database for runs (overrides store.path)")
	pf.StringVar(&vocabPath, "vocab", "", "vocabulary file (overrides vocabulary)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.addr)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(extractCmd, vocabCmd, runsCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config when given and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Read(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if vocabPath != "" {
		cfg.Vocabulary = vocabPath
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if key := os.Getenv(config.APIKeyEnv); key != "" {
		cfg.Embedder.APIKey = key
	}
	return cfg, nil
}

// openStore opens the configured run store. It returns nil when no path
// is configured.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	st, err := sqlite.OpenSQLite(ctx, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	return st, nil
}

// serveMetrics exposes rec on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, rec *metrics.Recorder, logger *slog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	logger.Info("serving metrics", "addr", addr)
}
