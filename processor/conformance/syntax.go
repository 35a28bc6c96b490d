package conformance

import (
	"regexp"
	"strings"

	"github.com/c360studio/archcheck/model"
	"github.com/c360studio/archcheck/processor/ast"
	structuralvalidator "github.com/c360studio/archcheck/processor/structural-validator"
)

var (
	handlerName = regexp.MustCompile(`^handle[A-Z]`)
	hookExport  = regexp.MustCompile(`^use[A-Z]`)
)

var contracts = structuralvalidator.NewValidator(structuralvalidator.DefaultContract())

// checkExportShape enforces the export naming of entry points and hooks.
func checkExportShape(fc *fileContext) []model.Violation {
	if !fc.policy.Enabled(model.FamilyExportShape) {
		return nil
	}

	var (
		pattern *regexp.Regexp
		rule    string
		message string
	)
	switch fc.coord.Layer {
	case model.LayerEntryPoint:
		pattern, rule = handlerName, "export-shape/action-handle"
		message = "exported functions in actions must start with 'handle' (e.g., handleGetComics), got %q"
	case model.LayerPresentationBinding:
		pattern, rule = hookExport, "export-shape/hook-use"
		message = "exported functions in hooks must start with 'use' (e.g., useAuth), got %q"
	default:
		return nil
	}

	var out []model.Violation
	for _, fn := range fc.file.ExportedFuncs() {
		if !pattern.MatchString(fn.Name) {
			out = append(out, fc.violation(model.FamilyExportShape, rule, fn.At.Line, message, fn.Name))
		}
	}
	return out
}

// checkStructuralContract requires handleXxx to call *.xxx().
func checkStructuralContract(fc *fileContext) []model.Violation {
	if fc.coord.Layer != model.LayerEntryPoint || !fc.policy.Enabled(model.FamilyStructuralContract) {
		return nil
	}
	var out []model.Violation
	for _, f := range contracts.Validate(fc.file) {
		out = append(out, fc.violation(model.FamilyStructuralContract, "structural-contract/handle-calls-service", f.At.Line,
			"%s must call the corresponding service method '*.%s()'", f.Function, f.Expected))
	}
	return out
}

// checkLayerSyntax forbids statements that belong to another layer.
func checkLayerSyntax(fc *fileContext) []model.Violation {
	if !fc.policy.Enabled(model.FamilyLayerSyntax) {
		return nil
	}
	coord := fc.coord
	noTry := coord.Layer == model.LayerResourceAccess || coord.Layer == model.LayerBusinessLogic
	noIf := coord.Layer == model.LayerResourceAccess
	noLogging := coord.Layer != model.LayerEntryPoint

	var out []model.Violation
	ast.Inspect(fc.file, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.TryStmt:
			if noTry {
				out = append(out, fc.violation(model.FamilyLayerSyntax, "layer-syntax/no-try", s.At.Line,
					"try-catch is not allowed in %s. Error handling belongs in actions.", coord.LayerDir))
			}
		case *ast.IfStmt:
			if noIf {
				out = append(out, fc.violation(model.FamilyLayerSyntax, "layer-syntax/no-if", s.At.Line,
					"if statements are not allowed in %s. Conditional logic belongs in services.", coord.LayerDir))
			}
		case *ast.CallExpr:
			if !noLogging {
				break
			}
			if recv := loggingReceiver(s); recv != "" {
				out = append(out, fc.violation(model.FamilyLayerSyntax, "layer-syntax/no-logging", s.At.Line,
					"%s is not allowed outside actions. Logging belongs in actions.", recv))
			}
		}
		return true
	})
	return out
}

func loggingReceiver(call *ast.CallExpr) string {
	member, ok := call.Fun.(*ast.MemberExpr)
	if !ok {
		return ""
	}
	ident, ok := member.X.(*ast.Ident)
	if !ok {
		return ""
	}
	if ident.Name == "console" || ident.Name == "logger" {
		return ident.Name
	}
	return ""
}

// checkDirectives enforces the "use server" / "use client" prologues.
func checkDirectives(fc *fileContext) []model.Violation {
	if !fc.policy.Enabled(model.FamilyDirectives) {
		return nil
	}
	coord := fc.coord
	file := fc.file

	first := ""
	if len(file.Directives) > 0 {
		first = file.Directives[0].Value
	}

	switch coord.Layer {
	case model.LayerEntryPoint:
		switch {
		case containsString(fc.cfg.ServerPrefixes, coord.Prefix):
			if first != "use server" {
				return []model.Violation{fc.violation(model.FamilyDirectives, "directives/use-server-required", 1,
					`%s must start with "use server" directive.`, coord.Base)}
			}
		case containsString(fc.cfg.ClientPrefixes, coord.Prefix):
			for _, d := range file.Directives {
				if d.Value == "use server" {
					return []model.Violation{fc.violation(model.FamilyDirectives, "directives/use-server-forbidden", d.At.Line,
						`%s must NOT have "use server" directive.`, coord.Base)}
				}
			}
		}

	case model.LayerPresentationBinding:
		if first != "use client" {
			return []model.Violation{fc.violation(model.FamilyDirectives, "directives/use-client-required", 1,
				`hooks must start with "use client" directive.`)}
		}
	}
	return nil
}

// checkJSDoc requires a described doc comment on exported functions of the
// lower layers and utilities.
func checkJSDoc(fc *fileContext) []model.Violation {
	if !fc.policy.Enabled(model.FamilyJSDoc) {
		return nil
	}
	switch fc.coord.Layer {
	case model.LayerResourceAccess, model.LayerBusinessLogic, model.LayerUtility:
	default:
		return nil
	}

	var out []model.Violation
	for _, fn := range fc.file.ExportedFuncs() {
		switch {
		case fn.Doc == "":
			out = append(out, fc.violation(model.FamilyJSDoc, "jsdoc/require-jsdoc", fn.At.Line,
				"missing JSDoc comment on exported function %s", fn.Name))
		case docDescription(fn.Doc) == "":
			out = append(out, fc.violation(model.FamilyJSDoc, "jsdoc/require-description", fn.At.Line,
				"JSDoc comment on %s has no description", fn.Name))
		}
	}
	return out
}

// docDescription extracts the description of a /** */ comment: the text
// before the first block tag, or the body of an @description tag.
func docDescription(doc string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(doc, "/**"), "*/")

	var desc []string
	inTags := false
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if rest, ok := strings.CutPrefix(line, "@description"); ok {
			if d := strings.TrimSpace(rest); d != "" {
				return d
			}
			continue
		}
		if strings.HasPrefix(line, "@") {
			inTags = true
		}
		if !inTags && line != "" {
			desc = append(desc, line)
		}
	}
	return strings.Join(desc, " ")
}
