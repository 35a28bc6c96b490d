// Package conformance evaluates the feature-module architecture rules: it
// classifies each file into its feature coordinates, runs the naming,
// import-boundary, structural and layer-syntax rules against it, and
// composes the results into a report.
package conformance

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/c360studio/archcheck/config"
	"github.com/c360studio/archcheck/model"
	"github.com/c360studio/archcheck/processor/ast"
	_ "github.com/c360studio/archcheck/processor/ast/ts" // registers the TypeScript/JavaScript parsers
	resourcemapper "github.com/c360studio/archcheck/processor/resource-mapper"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EngineConfig holds the collaborators of an Engine.
type EngineConfig struct {
	Config *config.Config

	// FS is the filesystem view for root checks and resource scans
	// (default: the OS filesystem below Config.ProjectRoot).
	FS resourcemapper.FS

	// Registry supplies parsers by extension (default: ast.DefaultRegistry).
	Registry *ast.ParserRegistry

	// Metrics receives run statistics (default: unregistered instruments).
	Metrics *Metrics

	Logger *slog.Logger
}

// Engine runs the conformance rules over a set of files. The resource
// mappings, classifier and composer are built once by NewEngine and shared
// read-only by every worker.
type Engine struct {
	cfg        *config.Config
	roots      map[string]*Root
	rootList   []*Root
	components []ComponentRoot
	classifier *Classifier
	composer   *Composer
	registry   *ast.ParserRegistry
	metrics    *Metrics
	logger     *slog.Logger
}

// NewEngine resolves the feature roots and builds every run-wide table.
// Configuration errors (missing root, prefix collision) are returned here,
// before any file is analyzed.
func NewEngine(ec EngineConfig) (*Engine, error) {
	if ec.Config == nil {
		return nil, fmt.Errorf("engine config is required")
	}
	logger := ec.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fsys := ec.FS
	if fsys == nil {
		fsys = resourcemapper.OSFS{Root: ec.Config.ProjectRoot}
	}
	registry := ec.Registry
	if registry == nil {
		registry = ast.DefaultRegistry
	}
	metrics := ec.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	roots, err := ResolveRoots(ec.Config, fsys, logger)
	if err != nil {
		return nil, err
	}

	composer, err := NewComposer(ec.Config, roots)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      ec.Config,
		roots:    make(map[string]*Root, len(roots)),
		rootList: roots,
		composer: composer,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}

	rootPaths := make([]string, 0, len(roots))
	for _, r := range roots {
		e.roots[r.Path] = r
		rootPaths = append(rootPaths, r.Path)
	}
	e.classifier = NewClassifier(rootPaths)

	for _, c := range ec.Config.ComponentRoots {
		e.components = append(e.components, ComponentRoot{Path: path.Clean(c.Path), Exclude: c.Exclude})
	}

	return e, nil
}

// Roots returns the resolved feature roots in configuration order.
func (e *Engine) Roots() []*Root {
	return e.rootList
}

// Classifier returns the engine's path classifier.
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}

// Run analyzes files (slash-separated, relative to the project root) on a
// fixed-size worker pool and returns the sorted report. Cancellation is
// checked before each file; a cancelled run returns the context error.
func (e *Engine) Run(ctx context.Context, files []string) (*model.Report, error) {
	start := time.Now()
	report := &model.Report{
		RunID:     uuid.NewString(),
		Project:   filepath.Base(e.cfg.ProjectRoot),
		StartedAt: start,
	}

	index := BuildFeatureIndex(e.classifier, files)

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	e.logger.Info("Starting analysis", "run_id", report.RunID, "files", len(files), "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	for _, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			violations, analyzed := e.checkFile(gctx, f, index)

			mu.Lock()
			defer mu.Unlock()
			report.Violations = append(report.Violations, violations...)
			if analyzed {
				report.Files++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	report.Duration = time.Since(start)
	report.Finalize()
	e.metrics.observeReport(report)

	e.logger.Info("Analysis complete",
		"run_id", report.RunID,
		"files", report.Files,
		"errors", report.Count(model.SeverityError),
		"warnings", report.Count(model.SeverityWarning),
		"duration", report.Duration)

	return report, nil
}

// checkFile runs every applicable rule against one file. analyzed is false
// for files outside all feature and component roots.
func (e *Engine) checkFile(ctx context.Context, filePath string, index *FeatureIndex) (violations []model.Violation, analyzed bool) {
	filePath = path.Clean(filepath.ToSlash(filePath))
	policy := e.composer.Policy(filePath)

	coord, ok := e.classifier.Classify(filePath)
	if !ok {
		comp, ok := componentRootFor(e.components, filePath)
		if !ok {
			return nil, false
		}
		base := path.Base(filePath)
		fc := &fileContext{
			coord:  model.FileCoordinate{Path: filePath, Base: base, Extension: path.Ext(base)},
			cfg:    e.cfg,
			policy: policy,
		}
		e.metrics.filesAnalyzed.Inc()
		return policy.Apply(checkComponent(fc, comp)), true
	}

	fc := &fileContext{
		coord:  coord,
		root:   e.roots[coord.FeatureRoot],
		index:  index,
		cfg:    e.cfg,
		policy: policy,
	}
	e.metrics.filesAnalyzed.Inc()

	parser, err := e.registry.CreateParserForExtension(coord.Extension, e.cfg.ProjectRoot)
	if err != nil {
		// no front-end for this extension: only path rules apply
		var raw []model.Violation
		for _, check := range pathCheckers {
			raw = append(raw, check(fc)...)
		}
		return policy.Apply(raw), true
	}

	result, err := parser.ParseFile(ctx, filePath)
	if err != nil || result.File.HasErrors() {
		e.metrics.parseFailures.Inc()
		v := fc.violation(model.FamilyParse, "parse/unparseable", 0, "file could not be parsed: %v", err)
		if err == nil {
			at := result.File.ErrorAt
			v = fc.violation(model.FamilyParse, "parse/unparseable", at.Line,
				"syntax error at line %d, column %d; file excluded from other rules", at.Line, at.Column)
		}
		e.logger.Debug("Parse failure", "file", filePath, "error", err)
		return policy.Apply([]model.Violation{v}), true
	}
	fc.file = result.File

	var raw []model.Violation
	for _, check := range pathCheckers {
		raw = append(raw, check(fc)...)
	}
	for _, check := range treeCheckers {
		raw = append(raw, check(fc)...)
	}

	violations = policy.Apply(raw)
	e.logger.Debug("Analyzed file", "file", filePath, "layer", coord.Layer, "violations", len(violations))
	return violations, true
}
