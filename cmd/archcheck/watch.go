package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/archcheck/config"
	"github.com/c360studio/archcheck/processor/ast"
	"github.com/c360studio/archcheck/processor/conformance"
)

// watchSkipDirs are never watched.
var watchSkipDirs = []string{"node_modules", "dist", "build", "coverage"}

func watchCmd(global *globalOptions, stdout io.Writer) *cobra.Command {
	var (
		opts        checkOptions
		metricsAddr string
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the check whenever source files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(global.logLevel)
			cfg, err := loadConfig(*global, logger)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cfg, opts, metricsAddr, debounce, stdout, logger)
		},
	}
	addCheckFlags(cmd, &opts)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "Quiet period before a change batch triggers a run")
	return cmd
}

func runWatch(ctx context.Context, cfg *config.Config, opts checkOptions, metricsAddr string, debounce time.Duration, stdout io.Writer, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	metrics := conformance.NewMetrics(reg)

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Serving metrics", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	exts := append(append([]string{}, cfg.LogicExtensions...), cfg.PresentationExtensions...)
	watcher, err := ast.NewWatcher(ast.WatcherConfig{
		Root:          cfg.ProjectRoot,
		Extensions:    exts,
		SkipDirs:      watchSkipDirs,
		DebounceDelay: debounce,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	rerun := func() {
		if _, err := runCheck(ctx, cfg, opts, metrics, stdout, logger); err != nil && ctx.Err() == nil {
			// configuration errors (e.g. a new prefix collision) are reported
			// and the watch continues
			logger.Error("Check failed", "error", err)
			fmt.Fprintf(stdout, "Error: %v\n", err)
		}
	}
	rerun()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped")
			return nil
		case batch, ok := <-watcher.Batches():
			if !ok {
				return nil
			}
			logger.Info("Change detected", "files", len(batch.Events), "first", batch.Events[0].Path)
			fmt.Fprintf(stdout, "\n── %s: %d changed file(s) ──\n", time.Now().Format(time.Kitchen), len(batch.Events))
			rerun()
		}
	}
}
