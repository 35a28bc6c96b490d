package model

import (
	"fmt"
	"sort"
	"time"
)

// Severity is how a violation affects the run's outcome.
type Severity string

const (
	SeverityOff     Severity = "off"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity converts a config string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityOff, SeverityWarning, SeverityError:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q (want off, warning or error)", s)
}

// Family groups rules that share a scope and a severity setting.
// The composer resolves enablement and severity per file and per family.
type Family string

const (
	FamilyNaming             Family = "naming"
	FamilyExtension          Family = "extension"
	FamilyExportShape        Family = "export-shape"
	FamilyLayerOrder         Family = "layer-order"
	FamilyCrossFeature       Family = "cross-feature"
	FamilyCardinality        Family = "cardinality"
	FamilyResourceBoundary   Family = "resource-boundary"
	FamilyStructuralContract Family = "structural-contract"
	FamilyLayerSyntax        Family = "layer-syntax"
	FamilyDirectives         Family = "directives"
	FamilyJSDoc              Family = "jsdoc"
	FamilyParse              Family = "parse"
)

// AllFamilies returns every rule family in evaluation order.
func AllFamilies() []Family {
	return []Family{
		FamilyParse,
		FamilyExtension,
		FamilyNaming,
		FamilyExportShape,
		FamilyLayerOrder,
		FamilyCrossFeature,
		FamilyCardinality,
		FamilyResourceBoundary,
		FamilyStructuralContract,
		FamilyLayerSyntax,
		FamilyDirectives,
		FamilyJSDoc,
	}
}

// ImportBoundaryFamilies returns the four import-boundary families that a
// feature root may individually toggle.
func ImportBoundaryFamilies() []Family {
	return []Family{FamilyLayerOrder, FamilyCrossFeature, FamilyCardinality, FamilyResourceBoundary}
}

// IsValid checks if a family string is a known family.
func (f Family) IsValid() bool {
	for _, known := range AllFamilies() {
		if f == known {
			return true
		}
	}
	return false
}

// Violation is a single rule failure. Violations are produced once and never mutated
// after the composer has assigned their severity.
type Violation struct {
	Rule     string   `json:"rule"`
	Family   Family   `json:"family"`
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// String renders the violation as "file:line: [rule] message".
func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("%s:%d: [%s] %s", v.File, v.Line, v.Rule, v.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", v.File, v.Rule, v.Message)
}

// SortViolations orders violations by file, line and rule name.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].File != vs[j].File {
			return vs[i].File < vs[j].File
		}
		if vs[i].Line != vs[j].Line {
			return vs[i].Line < vs[j].Line
		}
		return vs[i].Rule < vs[j].Rule
	})
}

// Report is the outcome of one analysis run.
type Report struct {
	RunID      string        `json:"run_id"`
	Project    string        `json:"project"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Files      int           `json:"files"`
	Violations []Violation   `json:"violations"`
	Passed     bool          `json:"passed"`
}

// Finalize sorts the violations and computes Passed.
// A run fails iff any violation has error severity.
func (r *Report) Finalize() {
	SortViolations(r.Violations)
	r.Passed = true
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			r.Passed = false
			return
		}
	}
}

// Count returns the number of violations with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}
