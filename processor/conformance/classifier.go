package conformance

import (
	"path"
	"sort"
	"strings"

	"github.com/c360studio/archcheck/model"
)

// Classifier maps project-relative paths to feature coordinates.
type Classifier struct {
	roots []string // longest first
}

// NewClassifier creates a classifier over the given feature root paths.
func NewClassifier(roots []string) *Classifier {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		cleaned = append(cleaned, path.Clean(r))
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	return &Classifier{roots: cleaned}
}

// Classify derives the coordinate of a slash-separated project-relative
// path. ok is false when the path is outside every feature root.
func (c *Classifier) Classify(filePath string) (coord model.FileCoordinate, ok bool) {
	filePath = path.Clean(filePath)
	for _, root := range c.roots {
		if rel, found := strings.CutPrefix(filePath, root+"/"); found {
			return classifyUnder(root, filePath, rel), true
		}
	}
	return model.FileCoordinate{}, false
}

func classifyUnder(root, filePath, rel string) model.FileCoordinate {
	base := path.Base(filePath)
	coord := model.FileCoordinate{
		Path:        filePath,
		FeatureRoot: root,
		Base:        base,
		Extension:   path.Ext(base),
	}

	segs := strings.Split(rel, "/")
	if len(segs) < 2 {
		// file directly under the root belongs to no feature
		return coord
	}
	coord.Feature = segs[0]
	dirs := segs[1 : len(segs)-1]

	// nearest ancestor wins
	for i := len(dirs) - 1; i >= 0; i-- {
		d, ok := lookupLayerDir(dirs[i])
		if !ok {
			continue
		}
		coord.Layer = d.Layer
		coord.LayerDir = dirs[i]
		coord.Shared = coord.Feature == sharedName || (i > 0 && dirs[i-1] == sharedName)
		break
	}
	if coord.Layer == "" && coord.Feature == sharedName {
		coord.Shared = true
	}

	if coord.Layer.PrefixBearing() {
		coord.Prefix = FilePrefix(base)
	}
	return coord
}

// FilePrefix strips the final two dotted segments of a file name
// ("server.action.ts" → "server", "a.b.service.ts" → "a.b"). A name with
// fewer than three segments keeps everything before its first dot.
func FilePrefix(base string) string {
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-2], ".")
}

// featureDirs returns the directories between the feature directory and the file.
func featureDirs(coord model.FileCoordinate) []string {
	rel := strings.TrimPrefix(coord.Path, coord.FeatureRoot+"/")
	segs := strings.Split(rel, "/")
	if len(segs) < 2 {
		return nil
	}
	return segs[1 : len(segs)-1]
}
