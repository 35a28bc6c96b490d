// Package main provides the archcheck binary entry point.
// archcheck enforces the feature-module architecture of a TypeScript
// project: layer naming, import boundaries and service-call contracts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/archcheck/config"
	"github.com/c360studio/archcheck/export"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "archcheck"
)

// errCheckFailed signals a completed run with error-severity violations.
// The report has already been written, so main exits 1 without a message.
var errCheckFailed = errors.New("architecture check failed")

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd(os.Stdout).ExecuteContext(ctx)
	cancel()

	if err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	projectRoot string
	logLevel    string
}

// checkOptions are the flags of check and watch.
type checkOptions struct {
	format      string
	noColor     bool
	quiet       bool
	timeout     time.Duration
	workers     int
	publishNATS string
	natsSubject string
}

func rootCmd(stdout io.Writer) *cobra.Command {
	var (
		global globalOptions
		check  checkOptions
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Architecture conformance checker for feature modules",
		Long: `archcheck verifies that a TypeScript project follows the feature-module
architecture:

- Files in repositories, services, actions and hooks follow the naming
  convention of their layer and are bound to a resource prefix
- Imports only point down the layer order, never across features, and
  resources are only reached through repositories
- Every exported handleXxx action calls the matching service method xxx()

Running archcheck without a subcommand is the same as "archcheck check".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckCommand(cmd.Context(), global, check, stdout)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&global.configPath, "config", "c", "", "Config file path (YAML, default: archcheck.yaml found upward)")
	pf.StringVar(&global.projectRoot, "project-root", "", "Project root (default: config file directory or git root)")
	pf.StringVar(&global.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	addCheckFlags(cmd, &check)

	cmd.AddCommand(
		checkCmd(&global, stdout),
		watchCmd(&global, stdout),
		resourcesCmd(&global, stdout),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(stdout, "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func addCheckFlags(cmd *cobra.Command, opts *checkOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", string(export.FormatText),
		"Report format ("+strings.Join(export.FormatNames(), ", ")+")")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable styled text output")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Only list error-severity violations")
	f.DurationVar(&opts.timeout, "timeout", 0, "Abort the run after this long (0 = no limit)")
	f.IntVar(&opts.workers, "workers", 0, "Analysis workers (0 = config value or one per CPU)")
	f.StringVar(&opts.publishNATS, "publish-nats", "", "Publish the JSON report to this NATS server")
	f.StringVar(&opts.natsSubject, "nats-subject", "", "Subject for --publish-nats (default: archcheck.report.<project>)")
}

// setupLogging installs the default slog logger.
func setupLogging(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig runs the layered loader and applies the global flags.
func loadConfig(global globalOptions, logger *slog.Logger) (*config.Config, error) {
	loader := config.NewLoader(logger)
	if global.projectRoot != "" {
		loader = loader.WithWorkDir(global.projectRoot)
	}

	cfg, err := loader.Load(global.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if global.projectRoot != "" {
		cfg.ProjectRoot = global.projectRoot
	}
	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}
	cfg.ProjectRoot = root

	return cfg, nil
}
