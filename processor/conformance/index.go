package conformance

import (
	"sort"

	"github.com/c360studio/archcheck/model"
)

type featureKey struct {
	root    string
	feature string
}

// FeatureIndex records which business-logic files exist per feature and
// prefix. It is built from the discovered path list before analysis starts
// and is read-only afterwards.
type FeatureIndex struct {
	logic map[featureKey]map[string][]string
}

// BuildFeatureIndex classifies files and indexes the business-logic layer.
func BuildFeatureIndex(c *Classifier, files []string) *FeatureIndex {
	idx := &FeatureIndex{logic: make(map[featureKey]map[string][]string)}
	for _, f := range files {
		coord, ok := c.Classify(f)
		if !ok || coord.Layer != model.LayerBusinessLogic || coord.Feature == "" {
			continue
		}
		key := featureKey{root: coord.FeatureRoot, feature: coord.Feature}
		byPrefix, ok := idx.logic[key]
		if !ok {
			byPrefix = make(map[string][]string)
			idx.logic[key] = byPrefix
		}
		byPrefix[coord.Prefix] = append(byPrefix[coord.Prefix], coord.Path)
	}
	for _, byPrefix := range idx.logic {
		for _, paths := range byPrefix {
			sort.Strings(paths)
		}
	}
	return idx
}

// BusinessLogic returns the business-logic files bound to prefix in the
// coordinate's feature, sorted.
func (x *FeatureIndex) BusinessLogic(coord model.FileCoordinate, prefix string) []string {
	return x.logic[featureKey{root: coord.FeatureRoot, feature: coord.Feature}][prefix]
}
