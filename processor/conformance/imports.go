package conformance

import (
	"path"
	"strings"

	"github.com/c360studio/archcheck/model"
	"github.com/c360studio/archcheck/processor/ast"
)

// importEdge is one import with its specifier rewritten to alias form.
type importEdge struct {
	decl       *ast.ImportDecl
	normalized string
	segments   []string
}

func (fc *fileContext) imports() []importEdge {
	if fc.edges != nil {
		return fc.edges
	}
	edges := make([]importEdge, 0, len(fc.file.Imports))
	for _, imp := range fc.file.Imports {
		norm := fc.root.normalize(fc.coord.Path, imp.Specifier)
		edges = append(edges, importEdge{
			decl:       imp,
			normalized: norm,
			segments:   strings.Split(norm, "/"),
		})
	}
	fc.edges = edges
	return edges
}

// checkLayerOrder rejects imports of modules in a higher layer.
func checkLayerOrder(fc *fileContext) []model.Violation {
	if _, ranked := fc.coord.Layer.Rank(); !ranked || !fc.policy.Enabled(model.FamilyLayerOrder) {
		return nil
	}

	var out []model.Violation
	for _, edge := range fc.imports() {
		for _, seg := range edge.segments[1:] {
			d, ok := lookupLayerDir(seg)
			if !ok || !d.Layer.Above(fc.coord.Layer) {
				continue
			}
			out = append(out, fc.violation(model.FamilyLayerOrder, "layer-order/upward-import", edge.decl.At.Line,
				"%s cannot import %s (layer violation): %q", fc.coord.LayerDir, seg, edge.decl.Specifier))
			break
		}
	}
	return out
}

// checkCrossFeature rejects imports of a sibling feature's module in the same layer.
func checkCrossFeature(fc *fileContext) []model.Violation {
	if _, ranked := fc.coord.Layer.Rank(); !ranked || !fc.policy.Enabled(model.FamilyCrossFeature) {
		return nil
	}

	var out []model.Violation
	for _, edge := range fc.imports() {
		rest, ok := strings.CutPrefix(edge.normalized, fc.root.FeatureAlias+"/")
		if !ok {
			continue
		}
		segs := strings.Split(rest, "/")
		if len(segs) < 2 {
			continue
		}
		other := segs[0]
		if other == fc.coord.Feature || other == sharedName {
			continue
		}
		d, ok := lookupLayerDir(segs[1])
		if !ok || d.Layer != fc.coord.Layer {
			continue
		}
		out = append(out, fc.violation(model.FamilyCrossFeature, "cross-feature/lateral-import", edge.decl.At.Line,
			"%s cannot import other feature's %s (cross-feature violation): %q",
			fc.coord.LayerDir, segs[1], edge.decl.Specifier))
	}
	return out
}

// checkCardinality binds an entry-point file to the business-logic module
// sharing its prefix.
func checkCardinality(fc *fileContext) []model.Violation {
	coord := fc.coord
	if coord.Layer != model.LayerEntryPoint || !fc.policy.Enabled(model.FamilyCardinality) {
		return nil
	}
	p := coord.Prefix
	if p == "" || coord.Shared || p == sharedName {
		return nil
	}

	var out []model.Violation
	for _, edge := range fc.imports() {
		for i := 1; i < len(edge.segments); i++ {
			d, ok := lookupLayerDir(edge.segments[i])
			if !ok || d.Layer != model.LayerBusinessLogic {
				continue
			}
			target := ""
			if i+1 < len(edge.segments) {
				target = modulePrefix(edge.segments[i+1])
			}
			if target != p && target != sharedName {
				out = append(out, fc.violation(model.FamilyCardinality, "cardinality/prefix-mismatch", edge.decl.At.Line,
					"%s.%s can only import %s.%s (cardinality violation): %q",
					p, layerDirs[coord.LayerDir].Suffix, p, d.Suffix, edge.decl.Specifier))
			}
			break
		}
	}

	switch logic := fc.index.BusinessLogic(coord, p); len(logic) {
	case 0:
		out = append(out, fc.violation(model.FamilyCardinality, "cardinality/missing-business-logic", 0,
			"no business-logic file for prefix %q in feature %q (expected services/%s.service%s or domain/%s.domain%s)",
			p, coord.Feature, p, coord.Extension, p, coord.Extension))
	case 1:
	default:
		out = append(out, fc.violation(model.FamilyCardinality, "cardinality/ambiguous-business-logic", 0,
			"prefix %q is bound to %d business-logic files in feature %q: %s",
			p, len(logic), coord.Feature, strings.Join(logic, ", ")))
	}
	return out
}

// modulePrefix derives a prefix from an import path segment
// ("server.service" → "server", "server.service.ts" → "server").
func modulePrefix(seg string) string {
	switch path.Ext(seg) {
	case ".ts", ".tsx", ".js", ".jsx", ".mts", ".cts", ".mjs", ".cjs":
		seg = strings.TrimSuffix(seg, path.Ext(seg))
	}
	if i := strings.LastIndexByte(seg, '.'); i > 0 {
		return seg[:i]
	}
	return seg
}

// checkResourceBoundary keeps resources behind the resource-access layer and
// keeps each repository on its own binding.
func checkResourceBoundary(fc *fileContext) []model.Violation {
	coord := fc.coord
	if !coord.HasLayer() || !fc.policy.Enabled(model.FamilyResourceBoundary) {
		return nil
	}
	alias := fc.root.ResourceAlias
	mapping := fc.root.Mapping

	var out []model.Violation
	for _, edge := range fc.imports() {
		if !underAlias(edge.normalized, alias) {
			continue
		}

		if coord.Layer != model.LayerResourceAccess {
			out = append(out, fc.violation(model.FamilyResourceBoundary, "resource-boundary/outside-repository", edge.decl.At.Line,
				"%s/* can only be imported from repositories (resource-boundary violation): %q",
				alias, edge.decl.Specifier))
			continue
		}

		if coord.Shared || coord.Prefix == sharedName {
			continue
		}
		for _, q := range mapping.Prefixes() {
			if q == coord.Prefix {
				continue
			}
			foreign, _ := mapping.Specifier(alias, q)
			if !underAlias(edge.normalized, foreign) {
				continue
			}
			own, ok := mapping.Specifier(alias, coord.Prefix)
			if !ok {
				own = "its own resource binding"
			}
			out = append(out, fc.violation(model.FamilyResourceBoundary, "resource-boundary/foreign-binding", edge.decl.At.Line,
				"%s can only import from %s, not %s", coord.Base, own, foreign))
			break
		}
	}
	return out
}
