// Package model defines the vocabulary shared by the conformance engine:
// architectural layers, rule families, severities, file coordinates and the
// violations a run produces.
package model

// Layer is one of the fixed architectural tiers a feature module is split into.
type Layer string

const (
	// LayerResourceAccess holds repositories, the only code allowed to touch resources.
	LayerResourceAccess Layer = "resource-access"

	// LayerBusinessLogic holds services (or domain) code.
	LayerBusinessLogic Layer = "business-logic"

	// LayerEntryPoint holds actions invoked from outside the feature.
	LayerEntryPoint Layer = "entry-point"

	// LayerPresentationBinding holds hooks that bind entry points to views.
	LayerPresentationBinding Layer = "presentation-binding"

	LayerSharedType Layer = "shared-type"
	LayerSchema     Layer = "schema"
	LayerUtility    Layer = "utility"
	LayerConstant   Layer = "constant"
)

// layerRank is the strict dependency order. A layer may only depend on layers
// with a lower or equal rank.
var layerRank = map[Layer]int{
	LayerResourceAccess:      0,
	LayerBusinessLogic:       1,
	LayerEntryPoint:          2,
	LayerPresentationBinding: 3,
}

// IsValid checks if a layer string is a known layer.
func (l Layer) IsValid() bool {
	switch l {
	case LayerResourceAccess, LayerBusinessLogic, LayerEntryPoint, LayerPresentationBinding,
		LayerSharedType, LayerSchema, LayerUtility, LayerConstant:
		return true
	}
	return false
}

// String returns the string representation of the layer.
func (l Layer) String() string {
	return string(l)
}

// PrefixBearing reports whether files in the layer are named after a resource prefix.
func (l Layer) PrefixBearing() bool {
	switch l {
	case LayerResourceAccess, LayerBusinessLogic, LayerEntryPoint:
		return true
	}
	return false
}

// Rank returns the layer's position in the dependency order.
// ok is false for layers outside the order (types, schemas, utils, constants).
func (l Layer) Rank() (rank int, ok bool) {
	rank, ok = layerRank[l]
	return rank, ok
}

// Above reports whether l sits strictly higher than other in the dependency order.
func (l Layer) Above(other Layer) bool {
	a, okA := l.Rank()
	b, okB := other.Rank()
	return okA && okB && a > b
}

// ParseLayer converts a string to a Layer, returning empty for invalid values.
func ParseLayer(s string) Layer {
	l := Layer(s)
	if l.IsValid() {
		return l
	}
	return ""
}

// FileCoordinate locates a source file inside the feature-module architecture.
type FileCoordinate struct {
	// Path is the slash-separated path relative to the project root.
	Path string `json:"path"`

	// FeatureRoot is the configured root the file lives under (e.g. "src/features").
	FeatureRoot string `json:"feature_root"`

	// Feature is the first directory below the feature root.
	Feature string `json:"feature"`

	// Layer is empty when no ancestor directory names a known layer.
	Layer Layer `json:"layer,omitempty"`

	// LayerDir is the directory name the layer was derived from ("services", "domain", ...).
	LayerDir string `json:"layer_dir,omitempty"`

	// Prefix is the resource prefix for prefix-bearing layers, empty otherwise.
	Prefix string `json:"prefix,omitempty"`

	// Shared marks files of the shared feature, which use free naming and may
	// import across resources.
	Shared bool `json:"shared,omitempty"`

	// Base is the file name, Extension its final extension including the dot.
	Base      string `json:"base"`
	Extension string `json:"extension"`
}

// HasLayer reports whether the file was classified into a layer.
func (c FileCoordinate) HasLayer() bool {
	return c.Layer != ""
}
