package conformance

import (
	"fmt"

	"github.com/c360studio/archcheck/config"
	"github.com/c360studio/archcheck/model"
	"github.com/c360studio/archcheck/processor/ast"
)

// fileContext is everything a rule may look at for one file. All fields are
// read-only for the duration of a run.
type fileContext struct {
	coord  model.FileCoordinate
	root   *Root
	file   *ast.File // nil for path-only rules
	index  *FeatureIndex
	cfg    *config.Config
	policy Policy

	edges []importEdge
}

// checker evaluates one concern against a file. Violations are returned
// without severity; the composer assigns it.
type checker func(fc *fileContext) []model.Violation

func (fc *fileContext) violation(family model.Family, rule string, line int, format string, args ...any) model.Violation {
	return model.Violation{
		Rule:    rule,
		Family:  family,
		File:    fc.coord.Path,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}

// pathCheckers run without a syntax tree.
var pathCheckers = []checker{
	checkExtension,
	checkNaming,
}

// treeCheckers need the parsed file.
var treeCheckers = []checker{
	checkExportShape,
	checkLayerOrder,
	checkCrossFeature,
	checkCardinality,
	checkResourceBoundary,
	checkStructuralContract,
	checkLayerSyntax,
	checkDirectives,
	checkJSDoc,
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
