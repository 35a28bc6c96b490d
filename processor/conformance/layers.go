package conformance

import "github.com/c360studio/archcheck/model"

// layerDir describes one conventional layer directory.
type layerDir struct {
	Layer model.Layer
	// Suffix is the middle file-name segment ("server.repo.ts" → "repo").
	// Empty for hooks, which follow the useXxx convention instead.
	Suffix string
}

var layerDirs = map[string]layerDir{
	"repositories": {Layer: model.LayerResourceAccess, Suffix: "repo"},
	"services":     {Layer: model.LayerBusinessLogic, Suffix: "service"},
	"domain":       {Layer: model.LayerBusinessLogic, Suffix: "domain"},
	"actions":      {Layer: model.LayerEntryPoint, Suffix: "action"},
	"hooks":        {Layer: model.LayerPresentationBinding},
	"types":        {Layer: model.LayerSharedType, Suffix: "type"},
	"schemas":      {Layer: model.LayerSchema, Suffix: "schema"},
	"utils":        {Layer: model.LayerUtility, Suffix: "utils"},
	"util":         {Layer: model.LayerUtility, Suffix: "util"},
	"constants":    {Layer: model.LayerConstant, Suffix: "constant"},
}

// lookupLayerDir returns the layer a directory name denotes.
func lookupLayerDir(name string) (layerDir, bool) {
	d, ok := layerDirs[name]
	return d, ok
}

const sharedName = "shared"
