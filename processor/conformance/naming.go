package conformance

import (
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/archcheck/model"
)

var (
	kebabToken  = regexp.MustCompile(`^[a-z0-9-]+$`)
	sharedToken = regexp.MustCompile(`^[a-z0-9_-]+$`)
	hookName    = regexp.MustCompile(`^use[A-Z][a-zA-Z0-9]*$`)
	pascalCase  = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
)

// checkExtension keeps view templates out of feature roots.
func checkExtension(fc *fileContext) []model.Violation {
	if !fc.policy.Enabled(model.FamilyExtension) {
		return nil
	}
	if !containsString(fc.cfg.PresentationExtensions, fc.coord.Extension) {
		return nil
	}
	return []model.Violation{fc.violation(model.FamilyExtension, "naming/logic-extension-only", 0,
		"%s must only contain %s files. Components belong in a component root.",
		fc.coord.FeatureRoot, strings.Join(fc.cfg.LogicExtensions, ", "))}
}

// checkNaming matches the file name against its layer's convention.
func checkNaming(fc *fileContext) []model.Violation {
	coord := fc.coord
	if !coord.HasLayer() || !fc.policy.Enabled(model.FamilyNaming) {
		return nil
	}
	if !containsString(fc.cfg.LogicExtensions, coord.Extension) {
		return nil
	}

	dir := layerDirs[coord.LayerDir]
	stem := strings.TrimSuffix(coord.Base, coord.Extension)
	rule := "naming/" + coord.LayerDir

	expected, ok := expectedName(fc, dir, stem)
	if ok {
		return nil
	}
	return []model.Violation{fc.violation(model.FamilyNaming, rule, 0,
		"file name %q does not match %s", coord.Base, expected)}
}

// expectedName returns a human-readable pattern and whether stem satisfies it.
func expectedName(fc *fileContext, dir layerDir, stem string) (string, bool) {
	coord := fc.coord
	ext := coord.Extension

	switch {
	case coord.Layer.PrefixBearing():
		allowed := fc.root.Mapping.Prefixes()
		if coord.Shared {
			allowed = append(allowed, sharedName)
		}
		pattern := "{" + strings.Join(allowed, "|") + "}." + dir.Suffix + ext
		if len(allowed) == 0 {
			pattern = "<prefix>." + dir.Suffix + ext + " (no resource bindings under " + fc.root.ResourceDir + ")"
		}
		prefix, found := strings.CutSuffix(stem, "."+dir.Suffix)
		return pattern, found && containsString(allowed, prefix)

	case coord.Layer == model.LayerPresentationBinding:
		// middle extensions (useAuth.test.ts) are ignored
		name, _, _ := strings.Cut(stem, ".")
		return "useXxx" + ext, hookName.MatchString(name)

	case dir.Suffix == "type" || dir.Suffix == "utils":
		token, found := strings.CutSuffix(stem, "."+dir.Suffix)
		if isPerFeatureFile(coord) {
			return coord.Feature + "." + dir.Suffix + ext, found && token == coord.Feature
		}
		return "<name>." + dir.Suffix + ext, found && sharedToken.MatchString(token)

	default:
		token, found := strings.CutSuffix(stem, "."+dir.Suffix)
		return "<kebab-name>." + dir.Suffix + ext, found && kebabToken.MatchString(token)
	}
}

// isPerFeatureFile reports whether a types/utils file sits directly in its
// feature's layer directory, where one file per feature is allowed.
func isPerFeatureFile(coord model.FileCoordinate) bool {
	if coord.Shared {
		return false
	}
	dirs := featureDirs(coord)
	return len(dirs) == 1 && dirs[0] == coord.LayerDir
}

// ComponentRoot is a directory of presentation components.
type ComponentRoot struct {
	Path    string
	Exclude []string
}

// componentRootFor returns the component root containing filePath.
func componentRootFor(roots []ComponentRoot, filePath string) (ComponentRoot, bool) {
	for _, r := range roots {
		if strings.HasPrefix(filePath, path.Clean(r.Path)+"/") {
			return r, true
		}
	}
	return ComponentRoot{}, false
}

// checkComponent applies the presentation-side conventions to a component file.
func checkComponent(fc *fileContext, root ComponentRoot) []model.Violation {
	var out []model.Violation
	coord := fc.coord

	if containsString(fc.cfg.LogicExtensions, coord.Extension) {
		if fc.policy.Enabled(model.FamilyExtension) {
			out = append(out, fc.violation(model.FamilyExtension, "naming/presentation-extension-only", 0,
				"%s must only contain %s files. Logic belongs in a feature root.",
				root.Path, strings.Join(fc.cfg.PresentationExtensions, ", ")))
		}
		return out
	}

	if !containsString(fc.cfg.PresentationExtensions, coord.Extension) || !fc.policy.Enabled(model.FamilyNaming) {
		return out
	}
	for _, pattern := range root.Exclude {
		if match, _ := doublestar.Match(pattern, coord.Path); match {
			return out
		}
	}
	stem := strings.TrimSuffix(coord.Base, coord.Extension)
	if !pascalCase.MatchString(stem) {
		out = append(out, fc.violation(model.FamilyNaming, "naming/pascal-case", 0,
			"component file name %q must be PascalCase", coord.Base))
	}
	return out
}
