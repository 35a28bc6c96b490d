package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/c360studio/archcheck/config"
	"github.com/c360studio/archcheck/export"
	"github.com/c360studio/archcheck/model"
	"github.com/c360studio/archcheck/processor/conformance"
	"github.com/c360studio/archcheck/processor/discovery"
)

func checkCmd(global *globalOptions, stdout io.Writer) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Analyze the project once and print the report",
		Long: `Analyze every file under the configured feature and component roots.

Exit status is 0 when no violation has error severity, 1 otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckCommand(cmd.Context(), *global, opts, stdout)
		},
	}
	addCheckFlags(cmd, &opts)
	return cmd
}

func runCheckCommand(ctx context.Context, global globalOptions, opts checkOptions, stdout io.Writer) error {
	logger := setupLogging(global.logLevel)

	cfg, err := loadConfig(global, logger)
	if err != nil {
		return err
	}

	report, err := runCheck(ctx, cfg, opts, nil, stdout, logger)
	if err != nil {
		return err
	}
	if !report.Passed {
		return errCheckFailed
	}
	return nil
}

// runCheck performs one full analysis, writes the report to stdout and
// publishes it when configured.
func runCheck(ctx context.Context, cfg *config.Config, opts checkOptions, metrics *conformance.Metrics, stdout io.Writer, logger *slog.Logger) (*model.Report, error) {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	if metrics == nil {
		metrics = conformance.NewMetrics(prometheus.NewRegistry())
	}

	engine, err := conformance.NewEngine(conformance.EngineConfig{
		Config:  cfg,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	files, err := discovery.Discover(ctx, discoveryOptions(cfg, engine, logger))
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}

	report, err := engine.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	if err := export.Write(stdout, report, format, export.Options{Color: !opts.noColor, Quiet: opts.quiet}); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	if err := publish(ctx, cfg, opts, report, logger); err != nil {
		return nil, err
	}
	return report, nil
}

// discoveryOptions covers the resolved feature roots and the component roots.
func discoveryOptions(cfg *config.Config, engine *conformance.Engine, logger *slog.Logger) discovery.Options {
	opts := discovery.Options{
		ProjectRoot: cfg.ProjectRoot,
		Exclude:     cfg.Exclude,
		Logger:      logger,
	}
	for _, r := range engine.Roots() {
		opts.Roots = append(opts.Roots, r.Path)
	}
	for _, c := range cfg.ComponentRoots {
		opts.Roots = append(opts.Roots, c.Path)
	}
	opts.Extensions = append(opts.Extensions, cfg.LogicExtensions...)
	opts.Extensions = append(opts.Extensions, cfg.PresentationExtensions...)
	return opts
}

func publish(ctx context.Context, cfg *config.Config, opts checkOptions, report *model.Report, logger *slog.Logger) error {
	url := opts.publishNATS
	if url == "" {
		url = cfg.Publish.NATSURL
	}
	if url == "" {
		return nil
	}
	subject := opts.natsSubject
	if subject == "" {
		subject = cfg.Publish.Subject
	}

	publisher, err := export.DialNATS(url, subject, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	return publisher.Publish(ctx, report)
}
