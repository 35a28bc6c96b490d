package conformance

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/c360studio/archcheck/config"
	"github.com/c360studio/archcheck/model"
	resourcemapper "github.com/c360studio/archcheck/processor/resource-mapper"
)

// ErrFeatureRootMissing is returned when a required feature root does not exist.
var ErrFeatureRootMissing = errors.New("feature root does not exist")

// Root is a feature root resolved for one run: its resource mapping is built
// and its import-boundary families are fixed.
type Root struct {
	Path          string
	ResourceDir   string
	FeatureAlias  string
	ResourceAlias string
	Mapping       *resourcemapper.Mapping

	families map[model.Family]bool
}

// Enforces reports whether the root enables an import-boundary family.
// Families outside the import-boundary set are always enforced.
func (r *Root) Enforces(f model.Family) bool {
	if !isImportBoundary(f) {
		return true
	}
	return r.families[f]
}

func isImportBoundary(f model.Family) bool {
	for _, b := range model.ImportBoundaryFamilies() {
		if f == b {
			return true
		}
	}
	return false
}

// ResolveRoots checks that each configured feature root exists and builds its
// resource mapping. Missing optional roots are skipped.
func ResolveRoots(cfg *config.Config, fsys resourcemapper.FS, logger *slog.Logger) ([]*Root, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var roots []*Root
	for _, rc := range cfg.FeatureRoots {
		rootPath := path.Clean(rc.Path)
		if !fsys.Exists(rootPath) {
			if rc.Optional {
				logger.Debug("Skipping missing optional feature root", "feature_root", rootPath)
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrFeatureRootMissing, rootPath)
		}

		resourceDir := rc.ResourceDir()
		mapping, err := resourcemapper.Build(fsys, resourcemapper.Options{
			Root:       resourceDir,
			Exclude:    rc.ResourceExclude,
			Extensions: rc.ResourceExtensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build resource mapping for %s: %w", rootPath, err)
		}

		root := &Root{
			Path:          rootPath,
			ResourceDir:   resourceDir,
			FeatureAlias:  strings.TrimSuffix(rc.FeatureAlias, "/"),
			ResourceAlias: strings.TrimSuffix(rc.ResourceAlias, "/"),
			Mapping:       mapping,
			families:      make(map[model.Family]bool),
		}
		if root.FeatureAlias == "" {
			root.FeatureAlias = rootPath
		}
		if root.ResourceAlias == "" {
			root.ResourceAlias = resourceDir
		}
		for _, f := range rc.EnabledFamilies() {
			root.families[f] = true
		}

		logger.Info("Resolved feature root",
			"feature_root", rootPath,
			"resource_root", resourceDir,
			"bindings", mapping.Len())
		roots = append(roots, root)
	}
	return roots, nil
}

// normalize rewrites a raw import specifier into alias form so that relative
// and aliased spellings of the same module compare equal. fromFile is the
// project-relative path of the importing file.
func (r *Root) normalize(fromFile, spec string) string {
	if !isRelative(spec) {
		return spec
	}
	joined := path.Join(path.Dir(fromFile), spec)
	if rest, ok := strings.CutPrefix(joined, r.Path+"/"); ok {
		return r.FeatureAlias + "/" + rest
	}
	if r.ResourceDir != "" {
		if joined == r.ResourceDir {
			return r.ResourceAlias
		}
		if rest, ok := strings.CutPrefix(joined, r.ResourceDir+"/"); ok {
			return r.ResourceAlias + "/" + rest
		}
	}
	return joined
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// underAlias reports whether spec is alias itself or a path below it.
func underAlias(spec, alias string) bool {
	if alias == "" {
		return false
	}
	return spec == alias || strings.HasPrefix(spec, alias+"/")
}
